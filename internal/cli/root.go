package cli

import (
	"context"

	"careercatalyst/internal/config"
	"careercatalyst/internal/errors"

	"github.com/spf13/cobra"
)

// ctxKey keys the values Execute attaches for subcommands
type ctxKey int

const (
	ctxKeyConfig ctxKey = iota
	ctxKeyLogger
)

var rootCmd = &cobra.Command{
	Use:   "careercatalyst",
	Short: "A CLI tool for AI-assisted resume analysis and job discovery",
	Long: `CareerCatalyst is a command-line tool that scores resumes for ATS
compatibility using AI, suggests concrete improvements, and aggregates
internship listings. It can also run as an HTTP server exposing the same
functionality as a REST API.`,
}

func init() {
	rootCmd.AddCommand(analyzeCmd, jobsCmd, versionCmd, serveCmd)
}

// Execute runs the CLI with the loaded configuration and logger available
// to every subcommand through the context
func Execute(ctx context.Context, cfg *config.Config, logger *errors.Logger) error {
	ctx = context.WithValue(ctx, ctxKeyConfig, cfg)
	ctx = context.WithValue(ctx, ctxKeyLogger, logger)
	rootCmd.SetContext(ctx)
	return rootCmd.Execute()
}

func getConfigFromContext(ctx context.Context) *config.Config {
	cfg, ok := ctx.Value(ctxKeyConfig).(*config.Config)
	if !ok {
		panic("config not found in context")
	}
	return cfg
}

func getLoggerFromContext(ctx context.Context) *errors.Logger {
	logger, ok := ctx.Value(ctxKeyLogger).(*errors.Logger)
	if !ok {
		panic("logger not found in context")
	}
	return logger
}
