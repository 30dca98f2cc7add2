package cli

import (
	"fmt"

	"jobmatcher/internal/config"
	"jobmatcher/internal/nlp"
	"jobmatcher/internal/server"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP server for resume parsing and job matching",
	Long: `Start an HTTP server exposing the matching pipeline as a REST API.

Endpoints:
- POST /match: Match a resume against one or more job descriptions
- POST /parse: Parse a resume into structured facts
- GET /health: Health check endpoint
- GET /stats: Server statistics and rate limiting info

TLS flags override the corresponding config file settings:
--tls-mode (disabled, server, mutual), --cert-file, --key-file,
and --ca-file for mutual TLS client verification.`,
	RunE: runServe,
}

func init() {
	flags := serveCmd.Flags()
	flags.StringP("port", "p", "", "Port to listen on (default from config)")
	flags.String("host", "", "Host to bind to (default from config)")
	flags.String("tls-mode", "", "TLS mode: disabled, server, mutual (overrides config)")
	flags.String("cert-file", "", "Server certificate file (PEM, overrides config)")
	flags.String("key-file", "", "Server private key file (PEM, overrides config)")
	flags.String("ca-file", "", "CA certificate file for client cert verification (PEM, overrides config)")

	for key, flagName := range map[string]string{
		"server.port":         "port",
		"server.host":         "host",
		"server.tls.mode":     "tls-mode",
		"server.tls.certfile": "cert-file",
		"server.tls.keyfile":  "key-file",
		"server.tls.cafile":   "ca-file",
	} {
		if err := viper.BindPFlag(key, flags.Lookup(flagName)); err != nil {
			panic(err)
		}
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg := getConfigFromContext(cmd.Context())
	logger := getLoggerFromContext(cmd.Context())

	// Flag overrides can produce a TLS combination that the config file
	// validation never saw, so validate again.
	overridden := &config.Config{Server: cfg.Server}
	if err := overridden.ValidateTLSConfig(); err != nil {
		return fmt.Errorf("invalid TLS configuration: %w", err)
	}

	srv := server.NewServer(cfg, server.ServerConfig{
		Host:           cfg.Server.Host,
		Port:           cfg.Server.Port,
		Version:        Version,
		TLSConfig:      cfg.Server.TLS,
		APIKeys:        cfg.Server.APIKeys,
		ReadTimeout:    cfg.Server.ReadTimeout,
		WriteTimeout:   cfg.Server.WriteTimeout,
		IdleTimeout:    cfg.Server.IdleTimeout,
		MaxRequestSize: int64(cfg.App.MaxFileSize),
		RateLimit:      &cfg.Server.RateLimit,
	}, nlp.NewProseTagger(), logger)
	return srv.Start()
}
