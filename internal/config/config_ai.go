package config

// fallbackString fills dst from src when dst is unset
func fallbackString(dst *string, src string) {
	if *dst == "" {
		*dst = src
	}
}

// applyOperationDefaults fills unset operation fields from the global AI
// configuration. Pointer fields keep an explicit zero distinct from unset.
func (c *Config) applyOperationDefaults(op *OperationAIConfig) {
	fallbackString(&op.Provider, c.AI.Provider)
	fallbackString(&op.Model, c.AI.Model)
	fallbackString(&op.APIKey, c.AI.APIKey)
	if op.Timeout == nil {
		op.Timeout = &c.AI.Timeout
	}
	if op.MaxRetries == nil {
		op.MaxRetries = &c.AI.MaxRetries
	}
	if op.Temperature == nil {
		op.Temperature = &c.AI.Temperature
	}
	if op.UseSystemPrompts == nil {
		op.UseSystemPrompts = &c.AI.UseSystemPrompts
	}
}

// GetAnalyzeConfig resolves the effective AI configuration for resume
// analysis, inheriting global prompts and prompt file paths
func (c *Config) GetAnalyzeConfig() OperationAIConfig {
	op := c.AI.Analyze
	c.applyOperationDefaults(&op)

	global := c.AI.CustomPrompts
	fallbackString(&op.CustomPrompts.SystemPrompts.AnalyzeResume, global.SystemPrompts.AnalyzeResume)
	fallbackString(&op.CustomPrompts.UserPrompts.AnalyzeMatched, global.UserPrompts.AnalyzeMatched)
	fallbackString(&op.CustomPrompts.UserPrompts.AnalyzeGeneral, global.UserPrompts.AnalyzeGeneral)
	fallbackString(&op.CustomPrompts.SystemPrompts.AnalyzeResumeFile, global.SystemPrompts.AnalyzeResumeFile)
	fallbackString(&op.CustomPrompts.UserPrompts.AnalyzeMatchedFile, global.UserPrompts.AnalyzeMatchedFile)
	fallbackString(&op.CustomPrompts.UserPrompts.AnalyzeGeneralFile, global.UserPrompts.AnalyzeGeneralFile)

	return op
}

// GetAssistantConfig resolves the effective AI configuration for the
// career assistant chat
func (c *Config) GetAssistantConfig() OperationAIConfig {
	op := c.AI.Assistant
	c.applyOperationDefaults(&op)

	global := c.AI.CustomPrompts
	fallbackString(&op.CustomPrompts.SystemPrompts.Assistant, global.SystemPrompts.Assistant)
	fallbackString(&op.CustomPrompts.UserPrompts.Assistant, global.UserPrompts.Assistant)
	fallbackString(&op.CustomPrompts.SystemPrompts.AssistantFile, global.SystemPrompts.AssistantFile)
	fallbackString(&op.CustomPrompts.UserPrompts.AssistantFile, global.UserPrompts.AssistantFile)

	return op
}
