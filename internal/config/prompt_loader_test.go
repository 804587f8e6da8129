package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePromptFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoadPromptFromFile(t *testing.T) {
	path := writePromptFile(t, "scoring.md", "You score resumes against ATS criteria.")

	content, err := loadPromptFromFile(path, "system", "analyzeResume")
	require.NoError(t, err)
	assert.Equal(t, "You score resumes against ATS criteria.", content)

	t.Run("empty file", func(t *testing.T) {
		empty := writePromptFile(t, "empty.md", "")
		_, err := loadPromptFromFile(empty, "system", "analyzeResume")
		assert.Error(t, err)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadPromptFromFile(filepath.Join(t.TempDir(), "missing.md"), "system", "analyzeResume")
		assert.Error(t, err)
	})
}

func TestLoadPromptsFromFiles(t *testing.T) {
	systemPath := writePromptFile(t, "system.analyze.md", "Score the resume on five dimensions.")
	userPath := writePromptFile(t, "user.analyze.md", "Resume:\n%s\nJob description:\n%s")

	cfg := &Config{
		AI: AIConfig{
			Analyze: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPrompts: SystemPrompts{AnalyzeResumeFile: systemPath},
					UserPrompts:   UserPrompts{AnalyzeMatchedFile: userPath},
				},
			},
		},
	}

	require.NoError(t, cfg.loadPromptsFromFiles())

	loaded := GetLoadedPrompts()
	assert.Equal(t, "Score the resume on five dimensions.", loaded.SystemPrompts.AnalyzeResume)
	assert.Equal(t, "Resume:\n%s\nJob description:\n%s", loaded.UserPrompts.AnalyzeMatched)

	// File paths stay in the config so reloads keep working
	assert.Equal(t, systemPath, cfg.AI.Analyze.CustomPrompts.SystemPrompts.AnalyzeResumeFile)
	assert.Equal(t, userPath, cfg.AI.Analyze.CustomPrompts.UserPrompts.AnalyzeMatchedFile)
}

func TestValidatePromptFiles(t *testing.T) {
	valid := writePromptFile(t, "valid.md", "Some prompt text")

	cfg := &Config{
		AI: AIConfig{
			Analyze: OperationAIConfig{
				CustomPrompts: PromptConfig{
					SystemPrompts: SystemPrompts{AnalyzeResumeFile: valid},
				},
			},
		},
	}
	assert.NoError(t, cfg.validatePromptFiles())

	cfg.AI.Analyze.CustomPrompts.SystemPrompts.AnalyzeResumeFile = filepath.Join(t.TempDir(), "gone.md")
	assert.Error(t, cfg.validatePromptFiles())
}
