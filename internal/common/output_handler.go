package common

import (
	"fmt"

	"careercatalyst/internal/errors"
	"careercatalyst/internal/formatters"
)

// CommandConfig carries the output options shared by the CLI commands
type CommandConfig struct {
	OutputFile   string
	OutputFormat string
}

// OutputHandler renders command results and delivers them to stdout or a file
type OutputHandler struct {
	files    *FileProcessor
	registry *formatters.FormatterRegistry
	logger   *errors.Logger
}

func NewOutputHandler(logger *errors.Logger) *OutputHandler {
	return &OutputHandler{
		files:    NewFileProcessor(logger),
		registry: formatters.GlobalRegistry,
		logger:   logger,
	}
}

// HandleOutput formats data in the requested format and writes it to the
// configured destination. An empty OutputFile writes to stdout.
func (oh *OutputHandler) HandleOutput(data any, config CommandConfig) error {
	if err := oh.files.ValidateOutputFile(config.OutputFile); err != nil {
		return err
	}

	rendered, err := oh.registry.Format(data, config.OutputFormat)
	if err != nil {
		return errors.NewValidationError(errors.ErrCodeInvalidFormat,
			fmt.Sprintf("Failed to format output as %s", config.OutputFormat), err)
	}

	if config.OutputFile == "" {
		fmt.Print(rendered)
		return nil
	}

	if err := oh.files.WriteFile(config.OutputFile, rendered); err != nil {
		return err
	}
	oh.logger.Info("Output written successfully",
		"file", config.OutputFile, "format", config.OutputFormat)
	return nil
}
