package ai

import (
	"context"

	"careercatalyst/internal/types"
)

// Provider is the raw AI backend. Methods return errors; the Service
// wrapper converts them into fallback records.
// All methods return token usage information - callers can ignore it if not needed
type Provider interface {
	AnalyzeResume(ctx context.Context, input types.AnalyzeResumeInput) (types.AIAnalysis, *TokenUsage, error)
	Chat(ctx context.Context, input types.AssistantInput) (types.AssistantOutput, *TokenUsage, error)
	GetModelInfo(ctx context.Context) *ModelInfo
	Close() error
}

// TokenSink receives token usage after successful AI calls. The
// observability layer implements it; a nil sink disables recording.
type TokenSink interface {
	RecordTokens(ctx context.Context, operation, model string, usage *TokenUsage)
}
