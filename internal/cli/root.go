package cli

import (
	"context"

	"jobmatcher/internal/config"
	"jobmatcher/internal/errors"

	"github.com/spf13/cobra"
)

// Unexported context key types so no other package can collide.
type (
	configKeyType struct{}
	loggerKeyType struct{}
)

var (
	configKey = configKeyType{}
	loggerKey = loggerKeyType{}
)

var rootCmd = &cobra.Command{
	Use:   "jobmatcher",
	Short: "A CLI tool for matching resumes against job descriptions",
	Long: `Jobmatcher is a command-line tool that extracts structured facts
(skills, education, experience) from resumes in PDF, DOCX or plain text form
and scores them against one or more job descriptions to find the best fit.`,
}

func init() {
	rootCmd.AddCommand(matchCmd, parseCmd, versionCmd, serveCmd)
}

// Execute runs the CLI with the config and logger reachable from every
// subcommand via the command context.
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, configKey, cfg)
	ctx = context.WithValue(ctx, loggerKey, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(configKey).(*config.Config)
	if !ok {
		panic("config not found in context")
	}
	return cfg
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	logger, ok := ctx.Value(loggerKey).(*errors.Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}
