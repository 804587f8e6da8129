package ai

import (
	"context"
	stderrors "errors"
	"fmt"
	"time"

	"careercatalyst/internal/config"
	"careercatalyst/internal/errors"
	"careercatalyst/internal/types"
)

// Service is the external analysis boundary used by the pipeline. It
// enforces the result-or-fallback contract: analysis calls always return
// a record, with failures described inside it. An unconfigured service
// (no API key) is valid and serves fallback records only.
type Service struct {
	Provider Provider // nil when no API key is configured
	config   *config.OperationAIConfig
	logger   *errors.Logger
	sink     TokenSink
}

// NewService creates an AI service for a specific operation. A missing
// API key is not an error; the service degrades to fallback records.
func NewService(cfg *config.OperationAIConfig, operationType string, logger *errors.Logger) (*Service, error) {
	if cfg.APIKey == "" {
		logger.Warn("No AI API key configured, serving fallback analysis",
			"operation_type", operationType)
		return &Service{config: cfg, logger: logger}, nil
	}

	logger.Debug("Initializing AI service",
		"provider", cfg.Provider,
		"operation_type", operationType,
		"model", cfg.Model,
		"timeout", *cfg.Timeout,
		"max_retries", *cfg.MaxRetries)

	var provider Provider
	var err error
	switch cfg.Provider {
	case "gemini":
		provider, err = NewGeminiProvider(cfg, operationType, logger)
	default:
		return nil, errors.NewConfigError(errors.ErrCodeInvalidConfig,
			fmt.Sprintf("Unsupported AI provider: %s", cfg.Provider), nil)
	}
	if err != nil {
		return nil, errors.NewAIError(errors.ErrCodeAIServiceFailed,
			"Failed to create AI provider", err)
	}

	return &Service{Provider: provider, config: cfg, logger: logger}, nil
}

// SetTokenSink attaches a sink that receives token usage after successful calls
func (s *Service) SetTokenSink(sink TokenSink) {
	s.sink = sink
}

// Configured reports whether a real AI backend is attached
func (s *Service) Configured() bool {
	return s.Provider != nil
}

// AnalyzeResume runs the AI analysis and converts any failure into the
// matching fallback record. It never returns an error.
func (s *Service) AnalyzeResume(ctx context.Context, resumeText, jobDescription string) *types.AIAnalysis {
	if s.Provider == nil {
		analysis := fallbackNoAPIKey()
		return &analysis
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	analysis, usage, err := s.Provider.AnalyzeResume(ctx, types.AnalyzeResumeInput{
		ResumeText:     resumeText,
		JobDescription: jobDescription,
	})
	if err != nil {
		fallback := s.fallbackFor(err)
		return &fallback
	}

	s.recordTokens(ctx, "analyze_resume", usage)
	return &analysis
}

// Chat answers an assistant message, falling back to canned guidance when
// no backend is configured or the call fails.
func (s *Service) Chat(ctx context.Context, input types.AssistantInput) types.AssistantOutput {
	if s.Provider == nil {
		return types.AssistantOutput{Response: fallbackAssistantReply(input.Message)}
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	output, usage, err := s.Provider.Chat(ctx, input)
	if err != nil {
		s.logger.LogError(err, "Assistant chat failed, using fallback reply")
		return types.AssistantOutput{Response: fallbackAssistantReply(input.Message)}
	}

	s.recordTokens(ctx, "assistant_chat", usage)
	return output
}

// GetModelInfo returns information about the AI model for health checks
func (s *Service) GetModelInfo(ctx context.Context) *ModelInfo {
	if s.Provider == nil {
		return &ModelInfo{Name: s.config.Model, Available: false, Error: "API key not configured"}
	}
	return s.Provider.GetModelInfo(ctx)
}

// Close releases provider resources
func (s *Service) Close() error {
	if s.Provider == nil {
		return nil
	}
	return s.Provider.Close()
}

func (s *Service) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout != nil && *s.config.Timeout > 0 {
		return context.WithTimeout(ctx, *s.config.Timeout)
	}
	return context.WithTimeout(ctx, 30*time.Second)
}

// fallbackFor maps an AI error onto the matching fallback record
func (s *Service) fallbackFor(err error) types.AIAnalysis {
	var appErr *errors.AppError
	if stderrors.As(err, &appErr) && appErr.Code == ErrCodeResponseParse {
		s.logger.Warn("AI response had no usable payload", "error", err.Error())
		return fallbackUnparsable()
	}

	s.logger.LogError(err, "AI analysis failed, using fallback record")
	return fallbackAPIError(err)
}

func (s *Service) recordTokens(ctx context.Context, operation string, usage *TokenUsage) {
	if s.sink == nil || usage == nil {
		return
	}
	s.sink.RecordTokens(ctx, operation, s.config.Model, usage)
}
