package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"careercatalyst/internal/cli"
	"careercatalyst/internal/config"
	"careercatalyst/internal/errors"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig()
	if err != nil {
		fatalf("Failed to load configuration: %v\n", err)
	}

	logger, err := errors.New(cfg.App.LogLevel)
	if err != nil {
		fatalf("Failed to initialize logger: %v\n", err)
	}

	logger.Info("Starting careercatalyst application",
		"version", cli.Version,
		"log_level", cfg.App.LogLevel,
		"ai_provider", cfg.AI.Provider)

	if err := cli.Execute(ctx, cfg, logger); err != nil {
		logger.LogError(err, "Application execution failed")
		os.Exit(1)
	}
}

func fatalf(format string, args ...any) {
	fmt.Fprintf(os.Stderr, format, args...)
	os.Exit(1)
}
