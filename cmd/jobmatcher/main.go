package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"jobmatcher/internal/cli"
	"jobmatcher/internal/config"
	"jobmatcher/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fatal("Failed to load configuration: %v\n", err)
	}
	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fatal("Failed to initialize logger: %v\n", err)
	}

	logger.Info("Starting jobmatcher application",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel)

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Application execution failed")
		os.Exit(1)
	}
}

func fatal(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
