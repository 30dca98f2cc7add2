package pipeline

import (
	"context"

	"jobmatcher/internal/errors"
	"jobmatcher/internal/job"
	"jobmatcher/internal/match"
	"jobmatcher/internal/nlp"
	"jobmatcher/internal/resume"
	"jobmatcher/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Pipeline wires the extraction and matching stages together: resume text
// in, match report out. One invocation is a single synchronous pass with no
// state shared across calls beyond the injected read-only tagger model.
type Pipeline struct {
	resumeExtractor *resume.Extractor
	logger          *errors.Logger
}

// New builds a pipeline around the given tagger. A nil classifier selects
// the default noun heuristic.
func New(tagger nlp.Tagger, classifier resume.Classifier, logger *errors.Logger) *Pipeline {
	return &Pipeline{
		resumeExtractor: resume.NewExtractor(tagger, classifier),
		logger:          logger,
	}
}

// ParseResume extracts structured facts from resume text.
func (p *Pipeline) ParseResume(ctx context.Context, resumeText string) (types.ResumeFacts, error) {
	tracer := otel.Tracer("jobmatcher.pipeline")
	_, span := tracer.Start(ctx, "pipeline.parse_resume")
	defer span.End()

	facts, err := p.resumeExtractor.Extract(resumeText)
	if err != nil {
		span.RecordError(err)
		return types.ResumeFacts{}, err
	}

	span.SetAttributes(
		attribute.Int("resume.skills", len(facts.Skills)),
		attribute.Int("resume.education", len(facts.Education)),
		attribute.Float64("resume.experience_years", facts.TotalExperienceYears),
	)
	return facts, nil
}

// Run executes the full pipeline against already-extracted text inputs.
// Failures propagate as-is; no blob is partially processed.
func (p *Pipeline) Run(ctx context.Context, resumeText string, jobBlobs []string) (*types.MatchReport, error) {
	tracer := otel.Tracer("jobmatcher.pipeline")
	ctx, span := tracer.Start(ctx, "pipeline.run")
	defer span.End()

	facts, err := p.ParseResume(ctx, resumeText)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	records, err := job.Parse(jobBlobs)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	results := match.Match(facts, records)

	report := &types.MatchReport{
		Resume:  facts,
		Results: results,
	}
	if best, ok := match.BestFit(results); ok {
		report.BestFit = &best
	}

	span.SetAttributes(
		attribute.Int("jobs.count", len(records)),
		attribute.Bool("best_fit.found", report.BestFit != nil),
	)

	if p.logger != nil {
		p.logger.Debug("Pipeline run completed",
			"jobs", len(records),
			"skills", len(facts.Skills),
			"best_fit_found", report.BestFit != nil)
	}

	return report, nil
}
