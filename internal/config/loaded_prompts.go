package config

import (
	"sync"
)

var (
	loadedPrompts     LoadedPrompts
	loadedPromptsOnce sync.Once
)

// LoadedPrompts holds the content of prompts loaded from files
type LoadedPrompts struct {
	SystemPrompts LoadedSystemPrompts
	UserPrompts   LoadedUserPrompts
}

// LoadedSystemPrompts contains loaded system-level instructions
type LoadedSystemPrompts struct {
	AnalyzeResume string
	Assistant     string
}

// LoadedUserPrompts contains loaded user-level prompt templates
type LoadedUserPrompts struct {
	AnalyzeMatched string
	AnalyzeGeneral string
	Assistant      string
}

// GetLoadedPrompts returns a copy of the prompts loaded from files
func GetLoadedPrompts() LoadedPrompts {
	return loadedPrompts
}
