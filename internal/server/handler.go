package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"jobmatcher/internal/extract"
	"jobmatcher/internal/observability"
	"jobmatcher/internal/types"

	"go.opentelemetry.io/otel/attribute"
)

// createMatchHandler wraps the match handler with observability
func (s *Server) createMatchHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobmatcher.api")
		ctx, span := tracer.Start(ctx, "api.match")
		defer span.End()

		// Parse request: JSON body or multipart form with document uploads
		req, err := s.parseMatchRequest(r)
		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		// Validation
		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}
		if len(req.Jobs) == 0 {
			err := fmt.Errorf("missing job descriptions")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing job descriptions", "jobs field must contain at least one job description", http.StatusBadRequest)
			return
		}

		// Size validation
		maxJobs := s.AppConfig.App.MaxJobCount
		if maxJobs > 0 && len(req.Jobs) > maxJobs {
			err := fmt.Errorf("too many job descriptions: %d", len(req.Jobs))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Too many job descriptions", fmt.Sprintf("jobs exceeds limit of %d entries", maxJobs), http.StatusBadRequest)
			return
		}
		if len(req.ResumeText) > int(s.MaxRequestSize/2) {
			err := fmt.Errorf("resume too large: %d chars", len(req.ResumeText))
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Resume too large", fmt.Sprintf("resumeText exceeds recommended size limit of %d characters", s.MaxRequestSize/2), http.StatusBadRequest)
			return
		}

		// Add request attributes to span
		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.Int("request.job_count", len(req.Jobs)),
			attribute.String("operation", "match"),
		)

		// Track pipeline operation with observability
		metrics := om.GetMetrics()
		var report *types.MatchReport
		err = metrics.TrackPipelineOperation(ctx, "match", func(ctx context.Context) error {
			var runErr error
			report, runErr = s.Pipeline.Run(ctx, req.ResumeText, req.Jobs)
			return runErr
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "pipeline"))
			metrics.RecordBusinessMetric(ctx, "match_computed", false, om,
				attribute.String("error", err.Error()))
			writeErrorResponse(w, "Failed to match resume against jobs", err.Error(), http.StatusUnprocessableEntity)
			return
		}

		// Record success metrics
		metrics.RecordBusinessMetric(ctx, "match_computed", true, om,
			attribute.Int("jobs_considered", len(report.Results)),
			attribute.Bool("best_fit_found", report.BestFit != nil))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.result_count", len(report.Results)),
			attribute.Bool("response.best_fit_found", report.BestFit != nil),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(report); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// createParseHandler wraps the resume parse handler with observability
func (s *Server) createParseHandler(om *observability.ObservabilityManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		tracer := om.Tracer("jobmatcher.api")
		ctx, span := tracer.Start(ctx, "api.parse")
		defer span.End()

		var req ParseRequest
		if isMultipartRequest(r) {
			text, err := s.readDocumentPart(r, "resume")
			if err != nil {
				span.RecordError(err)
				span.SetAttributes(attribute.String("error.type", "validation"))
				writeErrorResponse(w, "Invalid multipart request", err.Error(), http.StatusBadRequest)
				return
			}
			req.ResumeText = text
		} else if err := parseJSONRequest(r, &req); err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Invalid request body", err.Error(), http.StatusBadRequest)
			return
		}

		if strings.TrimSpace(req.ResumeText) == "" {
			err := fmt.Errorf("missing resume text")
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "validation"))
			writeErrorResponse(w, "Missing resume text", "resumeText field is required", http.StatusBadRequest)
			return
		}

		span.SetAttributes(
			attribute.Int("request.resume_length", len(req.ResumeText)),
			attribute.String("operation", "parse"),
		)

		metrics := om.GetMetrics()
		var facts types.ResumeFacts
		err := metrics.TrackPipelineOperation(ctx, "parse_resume", func(ctx context.Context) error {
			var parseErr error
			facts, parseErr = s.Pipeline.ParseResume(ctx, req.ResumeText)
			return parseErr
		}, om)

		if err != nil {
			span.RecordError(err)
			span.SetAttributes(attribute.String("error.type", "pipeline"))
			metrics.RecordBusinessMetric(ctx, "resume_parsed", false, om)
			writeErrorResponse(w, "Failed to parse resume", err.Error(), http.StatusUnprocessableEntity)
			return
		}

		metrics.RecordBusinessMetric(ctx, "resume_parsed", true, om,
			attribute.Int("skills_count", len(facts.Skills)),
			attribute.Int("education_count", len(facts.Education)))

		span.SetAttributes(
			attribute.Bool("success", true),
			attribute.Int("response.skills_count", len(facts.Skills)),
		)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(facts); err != nil {
			span.RecordError(err)
			http.Error(w, "Failed to encode response", http.StatusInternalServerError)
		}
	}
}

// parseMatchRequest decodes a match request from either a JSON body or a
// multipart form carrying resume and job documents (PDF, DOCX or plain text).
func (s *Server) parseMatchRequest(r *http.Request) (*MatchRequest, error) {
	if !isMultipartRequest(r) {
		var req MatchRequest
		if err := parseJSONRequest(r, &req); err != nil {
			return nil, err
		}
		return &req, nil
	}

	if err := r.ParseMultipartForm(s.MaxRequestSize); err != nil {
		return nil, fmt.Errorf("failed to parse multipart form: %w", err)
	}

	resumeText, err := s.readDocumentPart(r, "resume")
	if err != nil {
		return nil, err
	}

	var jobs []string
	if r.MultipartForm != nil {
		for _, header := range r.MultipartForm.File["jobs"] {
			text, err := s.extractDocument(header.Filename, header.Header.Get("Content-Type"), header.Open)
			if err != nil {
				return nil, err
			}
			jobs = append(jobs, text)
		}
		// Plain-text job blobs can also arrive as form values
		jobs = append(jobs, r.MultipartForm.Value["jobs"]...)
	}

	return &MatchRequest{ResumeText: resumeText, Jobs: jobs}, nil
}

// readDocumentPart reads a single uploaded document from a multipart form
// field and extracts its text content
func (s *Server) readDocumentPart(r *http.Request, field string) (string, error) {
	if r.MultipartForm == nil {
		if err := r.ParseMultipartForm(s.MaxRequestSize); err != nil {
			return "", fmt.Errorf("failed to parse multipart form: %w", err)
		}
	}

	files := r.MultipartForm.File[field]
	if len(files) == 0 {
		// Fall back to a plain form value
		if values := r.MultipartForm.Value[field]; len(values) > 0 {
			return values[0], nil
		}
		return "", fmt.Errorf("missing %q file in multipart form", field)
	}

	header := files[0]
	return s.extractDocument(header.Filename, header.Header.Get("Content-Type"), header.Open)
}

// extractDocument opens an uploaded file and converts it to plain text.
// Unknown formats are treated as plain text.
func (s *Server) extractDocument(filename, contentType string, open func() (multipart.File, error)) (string, error) {
	file, err := open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file %s: %w", filename, err)
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(file)
	if err != nil {
		return "", fmt.Errorf("failed to read uploaded file %s: %w", filename, err)
	}

	format, err := extract.DetectFormat(filename, contentType)
	if err != nil {
		format = extract.FormatText
	}

	extractor := extract.NewExtractor(s.Logger)
	text, err := extractor.Text(format, data)
	if err != nil {
		return "", fmt.Errorf("failed to extract text from %s: %w", filename, err)
	}
	return text, nil
}

// isMultipartRequest reports whether the request carries a multipart form
func isMultipartRequest(r *http.Request) bool {
	mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if err != nil {
		return false
	}
	return mediaType == "multipart/form-data"
}

// createRateLimitMiddleware adds observability to rate limiting
func (s *Server) createRateLimitMiddleware(om *observability.ObservabilityManager) func(http.HandlerFunc) http.HandlerFunc {
	originalMiddleware := s.rateLimitMiddleware()

	return func(next http.HandlerFunc) http.HandlerFunc {
		return originalMiddleware(func(w http.ResponseWriter, r *http.Request) {
			// Check if this request was rate limited by examining the response
			// We'll wrap the ResponseWriter to detect rate limit responses
			wrapper := &responseWrapper{ResponseWriter: w, statusCode: 200}

			next(wrapper, r)

			// If rate limited, record metric
			if wrapper.statusCode == http.StatusTooManyRequests {
				metrics := om.GetMetrics()
				metrics.RecordBusinessMetric(r.Context(), "rate_limit_hit", true, om,
					attribute.String("endpoint", r.URL.Path),
					attribute.String("method", r.Method))
			}
		})
	}
}

// responseWrapper wraps http.ResponseWriter to capture status code
type responseWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWrapper) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
