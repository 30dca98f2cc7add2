package server

import (
	"time"

	"jobmatcher/internal/config"
	jobmatcherErrors "jobmatcher/internal/errors"
	"jobmatcher/internal/nlp"
	"jobmatcher/internal/pipeline"
)

// MatchRequest is the body of POST /match. Each entry in Jobs is one job
// description blob, plain text or a JSON object with title/description
// fields.
type MatchRequest struct {
	ResumeText string   `json:"resumeText"`
	Jobs       []string `json:"jobs"`
}

// ParseRequest is the body of POST /parse.
type ParseRequest struct {
	ResumeText string `json:"resumeText"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server is the HTTP front end over the matching pipeline.
type Server struct {
	Host    string
	Port    string
	Version string

	AppConfig *config.Config

	Pipeline *pipeline.Pipeline
	Tagger   nlp.Tagger

	TLSConfig          config.TLSConfig
	CertificateManager *CertificateManager

	// Accepted API keys; empty means authentication is off.
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Logger *jobmatcherErrors.Logger
}

// ServerConfig carries the listener settings for NewServer.
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer builds a Server with its pipeline and, when enabled, its rate
// limiter. The certificate manager is attached later during TLS setup.
func NewServer(appCfg *config.Config, cfg ServerConfig, tagger nlp.Tagger, logger *jobmatcherErrors.Logger) *Server {
	apiKeyMap := make(map[string]bool, len(cfg.APIKeys))
	for _, key := range cfg.APIKeys {
		if key != "" {
			apiKeyMap[key] = true
		}
	}

	server := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		Pipeline:       pipeline.New(tagger, nil, logger),
		Tagger:         tagger,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        apiKeyMap,
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		Logger:         logger,
	}
	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		server.RateLimiter = NewRateLimiter(cfg.RateLimit.RequestsPerMin, cfg.RateLimit.BurstCapacity, logger)
	}
	return server
}
