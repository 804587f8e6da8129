package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func durationPtr(d time.Duration) *time.Duration { return &d }
func intPtr(i int) *int                          { return &i }

func newDerivationConfig() *Config {
	return &Config{
		AI: AIConfig{
			Provider:    "gemini",
			Model:       "global-model",
			Timeout:     60 * time.Second,
			APIKey:      "global-api-key",
			MaxRetries:  5,
			Temperature: 0.9,

			Analyze: OperationAIConfig{
				Model:   "analyze-specific-model",
				Timeout: durationPtr(90 * time.Second),
				// APIKey and MaxRetries fall back to global values
			},

			Assistant: OperationAIConfig{
				MaxRetries: intPtr(1),
				// Everything else falls back
			},
		},
	}
}

func TestGetAnalyzeConfigDerivation(t *testing.T) {
	cfg := newDerivationConfig().GetAnalyzeConfig()

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "analyze-specific-model", cfg.Model)
	assert.Equal(t, "global-api-key", cfg.APIKey)

	require.NotNil(t, cfg.Timeout)
	assert.Equal(t, 90*time.Second, *cfg.Timeout)

	require.NotNil(t, cfg.MaxRetries)
	assert.Equal(t, 5, *cfg.MaxRetries)

	require.NotNil(t, cfg.Temperature)
	assert.Equal(t, float32(0.9), *cfg.Temperature)
}

func TestGetAssistantConfigDerivation(t *testing.T) {
	cfg := newDerivationConfig().GetAssistantConfig()

	assert.Equal(t, "gemini", cfg.Provider)
	assert.Equal(t, "global-model", cfg.Model)
	assert.Equal(t, "global-api-key", cfg.APIKey)

	require.NotNil(t, cfg.MaxRetries)
	assert.Equal(t, 1, *cfg.MaxRetries)

	require.NotNil(t, cfg.Timeout)
	assert.Equal(t, 60*time.Second, *cfg.Timeout)
}

func TestOperationConfigsAreIndependent(t *testing.T) {
	base := newDerivationConfig()

	analyze := base.GetAnalyzeConfig()
	assistant := base.GetAssistantConfig()

	// Mutating one derived config must not leak into the other
	analyze.Model = "changed"
	assert.Equal(t, "global-model", assistant.Model)
	assert.Equal(t, "analyze-specific-model", base.AI.Analyze.Model)
}

func TestGetAnalyzeConfigCopiesGlobalPrompts(t *testing.T) {
	cfg := newDerivationConfig()
	cfg.AI.CustomPrompts.SystemPrompts.AnalyzeResume = "global system prompt"
	cfg.AI.Analyze.CustomPrompts.UserPrompts.AnalyzeGeneral = "operation user prompt"

	derived := cfg.GetAnalyzeConfig()

	assert.Equal(t, "global system prompt", derived.CustomPrompts.SystemPrompts.AnalyzeResume)
	assert.Equal(t, "operation user prompt", derived.CustomPrompts.UserPrompts.AnalyzeGeneral)
}
