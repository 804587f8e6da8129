package ai

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"careercatalyst/internal/config"
	"careercatalyst/internal/errors"
	"careercatalyst/internal/types"
)

func newServiceTestLogger(t *testing.T) *errors.Logger {
	t.Helper()
	logger, err := errors.New("error")
	if err != nil {
		t.Fatalf("Failed to create logger: %v", err)
	}
	return logger
}

func TestUnconfiguredServiceServesFallback(t *testing.T) {
	cfg := &config.OperationAIConfig{
		Provider: "gemini",
		Model:    "gemini-2.0-flash",
		// No API key configured
	}

	service, err := NewService(cfg, "analyze", newServiceTestLogger(t))
	if err != nil {
		t.Fatalf("Missing API key must not be an error: %v", err)
	}
	if service.Configured() {
		t.Error("Service without API key should report unconfigured")
	}

	analysis := service.AnalyzeResume(context.Background(), "Some resume text", "")
	if analysis == nil {
		t.Fatal("AnalyzeResume must always return a record")
	}
	if analysis.ATSScore != 70 {
		t.Errorf("Expected fallback ATS score 70, got %d", analysis.ATSScore)
	}
	if analysis.Error == "" {
		t.Error("Fallback record should describe the failure")
	}
	if len(analysis.ImprovementSuggestions) == 0 {
		t.Error("Fallback record should carry improvement suggestions")
	}

	info := service.GetModelInfo(context.Background())
	if info.Available {
		t.Error("Model should be unavailable without an API key")
	}
	if info.Error == "" {
		t.Error("Model info should explain why the model is unavailable")
	}

	if err := service.Close(); err != nil {
		t.Errorf("Close on unconfigured service should be a no-op, got %v", err)
	}
}

func TestUnsupportedProviderRejected(t *testing.T) {
	cfg := &config.OperationAIConfig{
		Provider: "openai",
		Model:    "gpt-4",
		APIKey:   "test-key",
	}

	_, err := NewService(cfg, "analyze", newServiceTestLogger(t))
	if err == nil {
		t.Fatal("Expected error for unsupported provider")
	}
}

func TestChatFallbackReplies(t *testing.T) {
	cfg := &config.OperationAIConfig{Provider: "gemini", Model: "gemini-2.0-flash"}
	service, err := NewService(cfg, "assistant", newServiceTestLogger(t))
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	tests := []struct {
		name     string
		message  string
		contains string
	}{
		{"summary advice", "How do I write my professional summary?", "professional summary"},
		{"skills advice", "What skills should I list?", "skills section"},
		{"ats advice", "How can I optimize for ATS?", "ATS Optimization"},
		{"default reply", "Hello there", "What specific section"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			output := service.Chat(context.Background(), types.AssistantInput{Message: tt.message})
			if output.Response == "" {
				t.Fatal("Chat must always return a reply")
			}
			if !strings.Contains(output.Response, tt.contains) {
				t.Errorf("Expected reply containing %q, got %q", tt.contains, output.Response)
			}
		})
	}
}

func TestFallbackForMapsErrorKinds(t *testing.T) {
	cfg := &config.OperationAIConfig{Provider: "gemini", Model: "gemini-2.0-flash"}
	service, err := NewService(cfg, "analyze", newServiceTestLogger(t))
	if err != nil {
		t.Fatalf("Failed to create service: %v", err)
	}

	parseErr := errors.NewAIError(ErrCodeResponseParse, "No JSON payload in reply", nil)
	record := service.fallbackFor(parseErr)
	if record.ATSScore != 70 {
		t.Errorf("Parse failures should score 70, got %d", record.ATSScore)
	}
	if record.Error != "Could not parse AI response" {
		t.Errorf("Unexpected parse fallback error: %q", record.Error)
	}

	apiErr := fmt.Errorf("connection refused")
	record = service.fallbackFor(apiErr)
	if record.ATSScore != 60 {
		t.Errorf("API failures should score 60, got %d", record.ATSScore)
	}
	if !strings.Contains(record.Error, "connection refused") {
		t.Errorf("API fallback should carry the original error, got %q", record.Error)
	}
}
