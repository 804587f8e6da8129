package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// loadPromptsFromFiles loads custom prompts from external files if file
// paths are specified. Operation-level file paths win over global ones
// because the Get*Config methods copy them down before this runs.
func (c *Config) loadPromptsFromFiles() error {
	log.Println("[CONFIG] Starting custom prompt loading from files")

	loadedPromptsOnce.Do(func() {
		loadedPrompts = LoadedPrompts{}
	})

	analyze := c.GetAnalyzeConfig()
	assistant := c.GetAssistantConfig()

	loaders := []struct {
		filePath string
		typ      string
		slot     string
		target   *string
	}{
		{analyze.CustomPrompts.SystemPrompts.AnalyzeResumeFile, "system", "analyzeResume", &loadedPrompts.SystemPrompts.AnalyzeResume},
		{analyze.CustomPrompts.UserPrompts.AnalyzeMatchedFile, "user", "analyzeMatched", &loadedPrompts.UserPrompts.AnalyzeMatched},
		{analyze.CustomPrompts.UserPrompts.AnalyzeGeneralFile, "user", "analyzeGeneral", &loadedPrompts.UserPrompts.AnalyzeGeneral},
		{assistant.CustomPrompts.SystemPrompts.AssistantFile, "system", "assistant", &loadedPrompts.SystemPrompts.Assistant},
		{assistant.CustomPrompts.UserPrompts.AssistantFile, "user", "assistant", &loadedPrompts.UserPrompts.Assistant},
	}

	count := 0
	for _, l := range loaders {
		if l.filePath == "" {
			continue
		}
		content, err := loadPromptFromFile(l.filePath, l.typ, l.slot)
		if err != nil {
			return err
		}
		*l.target = content
		count++
	}

	if count == 0 {
		log.Println("[CONFIG] No custom prompts loaded - using built-in defaults")
	} else {
		log.Printf("[CONFIG] Total custom prompts loaded: %d", count)
	}

	return nil
}

// loadPromptFromFile loads a prompt from a file with proper error handling and logging
func loadPromptFromFile(filePath, promptType, slot string) (string, error) {
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve absolute path for %s %s prompt file '%s': %w", promptType, slot, filePath, err)
	}

	if _, err := os.Stat(absPath); os.IsNotExist(err) {
		return "", fmt.Errorf("%s %s prompt file not found: %s", promptType, slot, absPath)
	}

	content, err := os.ReadFile(absPath)
	if err != nil {
		return "", fmt.Errorf("failed to read %s %s prompt file '%s': %w", promptType, slot, absPath, err)
	}

	trimmedContent := strings.TrimSpace(string(content))
	if trimmedContent == "" {
		return "", fmt.Errorf("%s %s prompt file '%s' is empty", promptType, slot, absPath)
	}

	log.Printf("[CONFIG] Successfully loaded %s %s prompt from file: %s (%d characters)",
		promptType, slot, absPath, len(trimmedContent))

	return trimmedContent, nil
}

// validatePromptFiles validates that prompt files exist before loading
func (c *Config) validatePromptFiles() error {
	var validationErrors []string

	validateFile := func(filePath, promptType, slot string) {
		if filePath == "" {
			return
		}

		absPath, err := filepath.Abs(filePath)
		if err != nil {
			validationErrors = append(validationErrors, fmt.Sprintf("invalid path for %s %s prompt: %s", promptType, slot, filePath))
			return
		}

		if _, err := os.Stat(absPath); os.IsNotExist(err) {
			validationErrors = append(validationErrors, fmt.Sprintf("%s %s prompt file not found: %s", promptType, slot, absPath))
		}
	}

	validateFile(c.AI.CustomPrompts.SystemPrompts.AnalyzeResumeFile, "system", "analyzeResume")
	validateFile(c.AI.CustomPrompts.SystemPrompts.AssistantFile, "system", "assistant")
	validateFile(c.AI.CustomPrompts.UserPrompts.AnalyzeMatchedFile, "user", "analyzeMatched")
	validateFile(c.AI.CustomPrompts.UserPrompts.AnalyzeGeneralFile, "user", "analyzeGeneral")
	validateFile(c.AI.CustomPrompts.UserPrompts.AssistantFile, "user", "assistant")

	validateFile(c.AI.Analyze.CustomPrompts.SystemPrompts.AnalyzeResumeFile, "analyze system", "analyzeResume")
	validateFile(c.AI.Analyze.CustomPrompts.UserPrompts.AnalyzeMatchedFile, "analyze user", "analyzeMatched")
	validateFile(c.AI.Analyze.CustomPrompts.UserPrompts.AnalyzeGeneralFile, "analyze user", "analyzeGeneral")
	validateFile(c.AI.Assistant.CustomPrompts.SystemPrompts.AssistantFile, "assistant system", "assistant")
	validateFile(c.AI.Assistant.CustomPrompts.UserPrompts.AssistantFile, "assistant user", "assistant")

	if len(validationErrors) > 0 {
		return fmt.Errorf("prompt file validation failed:\n%s", strings.Join(validationErrors, "\n"))
	}

	return nil
}
