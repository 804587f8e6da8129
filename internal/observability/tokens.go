package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"careercatalyst/internal/ai"
)

// TokenRecorder feeds AI token usage into the token usage histogram.
// It satisfies the AI service's token sink interface.
type TokenRecorder struct {
	om *ObservabilityManager
}

// NewTokenRecorder creates a token recorder bound to the manager's metrics
func NewTokenRecorder(om *ObservabilityManager) *TokenRecorder {
	return &TokenRecorder{om: om}
}

// RecordTokens records input, output and total token counts for one AI call
func (r *TokenRecorder) RecordTokens(ctx context.Context, operation, model string, usage *ai.TokenUsage) {
	if r == nil || r.om == nil || usage == nil {
		return
	}

	m := r.om.GetMetrics()
	if m.AITokenUsage == nil {
		return
	}

	if r.om.fullConfig != nil && !r.om.fullConfig.Observability.CustomMetrics.AIOperations.TrackTokenUsage {
		return
	}

	tokenTypes := []struct {
		tokenType string
		value     int64
	}{
		{"input", usage.InputTokens},
		{"output", usage.OutputTokens},
		{"total", usage.TotalTokens},
	}

	for _, tt := range tokenTypes {
		m.AITokenUsage.Record(ctx, tt.value, metric.WithAttributes(
			attribute.String("operation", operation),
			attribute.String("model", model),
			attribute.String("token_type", tt.tokenType),
		))
	}
}
