package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"
)

// Certificate expiry thresholds for health reporting.
const (
	certCriticalWindow = 24 * time.Hour
	certWarningWindow  = 7 * 24 * time.Hour
)

// healthHandler reports service health: the part-of-speech tagger must be
// able to tag text, and any loaded TLS certificate must not be expired or
// about to expire. A degraded service answers 503 so load balancers drain
// it.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	tagger := s.checkTaggerHealth()
	certs := s.checkCertificateHealth()

	response := map[string]any{
		"status":  "healthy",
		"service": "jobmatcher",
		"version": s.Version,
		"tagger":  tagger,
	}
	if certs != nil {
		response["certificates"] = certs
	}

	healthy := tagger["available"] == true
	if certs != nil && certs["healthy"] == false {
		healthy = false
	}

	w.Header().Set("Content-Type", "application/json")
	if !healthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkTaggerHealth runs the tagger on a short sentence under the
// configured timeout. The tagger loads a statistical model lazily, so the
// first check also proves the model is usable.
func (s *Server) checkTaggerHealth() map[string]any {
	if s.Tagger == nil {
		return map[string]any{
			"available": false,
			"error":     "tagger not initialized",
		}
	}

	timeout := s.AppConfig.Observability.HealthCheck.TaggerCheckTimeout
	if timeout <= 0 {
		timeout = s.AppConfig.Observability.HealthCheck.Timeout
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	start := time.Now()
	done := make(chan error, 1)
	go func() {
		_, err := s.Tagger.Tag("health check sentence")
		done <- err
	}()

	select {
	case err := <-done:
		if err != nil {
			return map[string]any{
				"available": false,
				"error":     fmt.Sprintf("tagger failed: %v", err),
			}
		}
		return map[string]any{
			"available":  true,
			"latency_ms": time.Since(start).Milliseconds(),
		}
	case <-ctx.Done():
		return map[string]any{
			"available": false,
			"error":     fmt.Sprintf("tagger health check timed out after %s", timeout),
		}
	}
}

// checkCertificateHealth summarizes certificate state, or nil when no
// certificate manager is running.
func (s *Server) checkCertificateHealth() map[string]any {
	if s.CertificateManager == nil {
		return nil
	}

	timeToExpiry, err := s.CertificateManager.CheckExpiry()
	if err != nil {
		return map[string]any{
			"healthy": false,
			"error":   fmt.Sprintf("Failed to check certificate expiry: %v", err),
		}
	}

	status := map[string]any{
		"time_to_expiry_hours": int(timeToExpiry.Hours()),
		"time_to_expiry":       timeToExpiry.String(),
	}

	switch {
	case timeToExpiry <= 0:
		status["healthy"] = false
		status["status"] = "expired"
		status["message"] = "Certificate has expired"
	case timeToExpiry <= certCriticalWindow:
		status["healthy"] = false
		status["status"] = "critical"
		status["message"] = "Certificate expires within 24 hours"
	case timeToExpiry <= certWarningWindow:
		status["healthy"] = true
		status["status"] = "warning"
		status["message"] = "Certificate expires within 7 days"
	default:
		status["healthy"] = true
		status["status"] = "ok"
		status["message"] = "Certificate is valid"
	}

	status["auto_reload"] = s.autoReloadStatus()

	if metrics := s.CertificateManager.GetMetrics(); metrics != nil {
		status["metrics"] = map[string]any{
			"reload_count":         metrics.ReloadCount,
			"reload_success_count": metrics.ReloadSuccessCount,
			"reload_failure_count": metrics.ReloadFailureCount,
			"last_reload_time":     metrics.LastReloadTime,
			"last_reload_success":  metrics.LastReloadSuccess,
			"last_reload_error":    metrics.LastReloadError,
		}
	}
	return status
}

func (s *Server) autoReloadStatus() map[string]any {
	if !s.TLSConfig.AutoReload.Enabled {
		return map[string]any{"enabled": false}
	}

	status := map[string]any{
		"enabled":              true,
		"file_watcher_enabled": s.TLSConfig.AutoReload.FileWatcher.Enabled,
	}
	if watcher := s.CertificateManager.fileWatcher; watcher != nil {
		status["file_watcher_running"] = watcher.IsRunning()
		status["watched_files"] = watcher.GetWatchedFiles()
	}
	return status
}

// statsHandler exposes operational limits and rate limiter state.
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "jobmatcher",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
			"max_job_count":          s.AppConfig.App.MaxJobCount,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	writeJSON(w, response)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to encode response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest decodes a JSON body into v, surfacing the server's body
// size limit as a client-readable message.
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// writeErrorResponse writes the standard error envelope.
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: error, Message: message}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
