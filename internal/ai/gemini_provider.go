package ai

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/http"
	"strings"
	"time"

	"careercatalyst/internal/config"
	ccErrors "careercatalyst/internal/errors"
	"careercatalyst/internal/types"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"google.golang.org/api/googleapi"
	"google.golang.org/genai"
)

const (
	modelCheckTimeout = 10 * time.Second
	maxRetryBackoff   = 30 * time.Second
)

// ErrCodeResponseParse marks replies that carried no decodable payload
const ErrCodeResponseParse = "AI_RESPONSE_PARSE_FAILED"

// GeminiProvider implements Provider for Google Gemini
type GeminiProvider struct {
	client       *genai.Client
	config       *config.OperationAIConfig
	breaker      *Breaker[*genai.GenerateContentResponse]
	modelBreaker *Breaker[*genai.Model]
	logger       *ccErrors.Logger
}

var _ Provider = (*GeminiProvider)(nil)

// NewGeminiProvider creates a new Gemini provider instance for a specific operation
func NewGeminiProvider(cfg *config.OperationAIConfig, operationType string, logger *ccErrors.Logger) (*GeminiProvider, error) {
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, ccErrors.NewAIError(ccErrors.ErrCodeAIServiceFailed,
			"Failed to create Gemini client", err)
	}

	return &GeminiProvider{
		client:       client,
		config:       cfg,
		breaker:      NewBreaker[*genai.GenerateContentResponse](operationType, cfg, logger),
		modelBreaker: NewBreaker[*genai.Model]("model-"+operationType, cfg, logger),
		logger:       logger,
	}, nil
}

// ModelInfo represents information about the AI model
type ModelInfo struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Version     string `json:"version,omitempty"`
	Available   bool   `json:"available"`
	Error       string `json:"error,omitempty"`
}

// GetModelInfo checks the readiness and availability of the configured model
func (g *GeminiProvider) GetModelInfo(ctx context.Context) *ModelInfo {
	checkCtx, cancel := context.WithTimeout(ctx, modelCheckTimeout)
	defer cancel()

	model, err := g.modelBreaker.Execute(func() (*genai.Model, error) {
		return g.client.Models.Get(checkCtx, g.config.Model, &genai.GetModelConfig{})
	})
	if err != nil {
		g.logger.Warn("Model availability check failed",
			"model", g.config.Model,
			"provider", g.config.Provider,
			"error", err.Error())
		return &ModelInfo{
			Name:  g.config.Model,
			Error: fmt.Sprintf("Failed to get model info: %v", err),
		}
	}

	info := &ModelInfo{
		Name:        g.config.Model,
		DisplayName: model.DisplayName,
		Version:     model.Version,
		Available:   true,
	}
	g.logger.Debug("Model availability check successful",
		"model", info.Name, "display_name", info.DisplayName, "version", info.Version)
	return info
}

// retryBackoff computes the exponential delay before the given retry
// attempt, with up to 10% jitter so concurrent clients spread out
func retryBackoff(attempt int) time.Duration {
	base := time.Second << (attempt - 1)
	if base > maxRetryBackoff {
		return maxRetryBackoff
	}
	jitter, _ := rand.Int(rand.Reader, big.NewInt(int64(base/10)+1))
	delay := base + time.Duration(jitter.Int64())
	if delay > maxRetryBackoff {
		delay = maxRetryBackoff
	}
	return delay
}

// executeWithRetry retries transient Gemini failures with exponential backoff
func (g *GeminiProvider) executeWithRetry(ctx context.Context, operation string, fn func() (*genai.GenerateContentResponse, error)) (*genai.GenerateContentResponse, error) {
	retries := *g.config.MaxRetries
	var lastErr error

	for attempt := 0; ; attempt++ {
		result, err := fn()
		if err == nil {
			if attempt > 0 {
				g.logger.Info("AI operation succeeded after retry",
					"operation", operation, "successful_attempt", attempt+1)
			}
			return result, nil
		}
		lastErr = err

		if attempt >= retries || !isRetryableError(err) {
			break
		}

		g.logger.Warn("Retrying AI operation",
			"operation", operation,
			"attempt", attempt+1,
			"max_retries", retries,
			"error", err.Error())

		select {
		case <-time.After(retryBackoff(attempt + 1)):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	g.logger.LogError(lastErr, "AI operation failed after all retry attempts",
		"operation", operation, "total_attempts", retries+1)
	return nil, fmt.Errorf("operation '%s' failed after %d retries: %w", operation, retries, lastErr)
}

// isRetryableError reports whether an error is transient: network failures
// and the usual throttling or upstream 5xx statuses
func isRetryableError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}

	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Code {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	}
	return false
}

// generate runs a Gemini call with tracing, circuit breaker and retry
func (g *GeminiProvider) generate(ctx context.Context, operationName, userPrompt, systemPrompt string, genaiConfig *genai.GenerateContentConfig, spanAttributes ...attribute.KeyValue) (*genai.GenerateContentResponse, *TokenUsage, error) {
	tracer := otel.Tracer("careercatalyst.ai.gemini")
	ctx, span := tracer.Start(ctx, "gemini."+operationName)
	defer span.End()

	span.SetAttributes(
		attribute.String("ai.provider", "gemini"),
		attribute.String("ai.model", g.config.Model),
		attribute.Float64("ai.temperature", float64(*g.config.Temperature)),
	)
	span.SetAttributes(spanAttributes...)

	if *g.config.UseSystemPrompts && systemPrompt != "" {
		genaiConfig.SystemInstruction = genai.NewContentFromText(systemPrompt, genai.RoleUser)
	}

	result, err := g.breaker.Execute(func() (*genai.GenerateContentResponse, error) {
		return g.executeWithRetry(ctx, operationName, func() (*genai.GenerateContentResponse, error) {
			return g.client.Models.GenerateContent(ctx, g.config.Model, genai.Text(userPrompt), genaiConfig)
		})
	})
	if err != nil {
		span.RecordError(err)
		span.SetAttributes(attribute.Bool("success", false))
		return nil, nil, ccErrors.NewAIError(ccErrors.ErrCodeAIServiceFailed, "Failed to generate content for "+operationName, err)
	}

	tokenUsage := extractTokenUsage(result)
	if tokenUsage != nil {
		span.SetAttributes(
			attribute.Int64("ai.tokens.input", tokenUsage.InputTokens),
			attribute.Int64("ai.tokens.output", tokenUsage.OutputTokens),
			attribute.Int64("ai.tokens.total", tokenUsage.TotalTokens),
		)
	}

	span.SetAttributes(attribute.Bool("success", true))
	return result, tokenUsage, nil
}

// analysisWire is the superset of both JSON response shapes
type analysisWire struct {
	ATSScore        int    `json:"ats_score"`
	InferredRole    string `json:"inferred_role"`
	KeywordAnalysis struct {
		MatchedKeywords        []string `json:"matched_keywords"`
		MissingKeywords        []string `json:"missing_keywords"`
		KeywordMatchPercentage int      `json:"keyword_match_percentage"`
		TechnicalKeywords      []string `json:"technical_keywords"`
		SoftSkills             []string `json:"soft_skills"`
		IndustryTerms          []string `json:"industry_terms"`
	} `json:"keyword_analysis"`
	ContentStrength        *types.ContentStrength `json:"content_strength"`
	ImprovementSuggestions []string               `json:"improvement_suggestions"`
	RoleFitAnalysis        string                 `json:"role_fit_analysis"`
	CriticalGaps           []string               `json:"critical_gaps"`
	GeneralFeedback        string                 `json:"general_feedback"`
}

// AnalyzeResume implements Provider for the resume analysis operation
func (g *GeminiProvider) AnalyzeResume(ctx context.Context, input types.AnalyzeResumeInput) (types.AIAnalysis, *TokenUsage, error) {
	hasJob := input.JobDescription != ""

	var userPrompt string
	var genaiConfig *genai.GenerateContentConfig
	if hasJob {
		userPrompt = fmt.Sprintf(g.userPrompt("analyze_matched"), input.ResumeText, input.JobDescription)
		genaiConfig = g.buildMatchedSchema()
	} else {
		userPrompt = fmt.Sprintf(g.userPrompt("analyze_general"), input.ResumeText)
		genaiConfig = g.buildGeneralSchema()
	}
	systemPrompt := g.systemPrompt("analyze")

	result, tokenUsage, err := g.generate(ctx, "analyze_resume", userPrompt, systemPrompt, genaiConfig,
		attribute.Int("input.resume_length", len(input.ResumeText)),
		attribute.Int("input.job_length", len(input.JobDescription)),
		attribute.Bool("input.has_job_description", hasJob),
	)
	if err != nil {
		return types.AIAnalysis{}, nil, err
	}

	payload, ok := extractJSONPayload(result.Text())
	if !ok {
		return types.AIAnalysis{}, nil, ccErrors.NewAIError(ErrCodeResponseParse,
			"No JSON payload in AI response", nil)
	}

	var wire analysisWire
	if err := json.Unmarshal([]byte(payload), &wire); err != nil {
		return types.AIAnalysis{}, nil, ccErrors.NewAIError(ErrCodeResponseParse,
			"Failed to parse AI response", err)
	}

	return wire.toAnalysis(hasJob), tokenUsage, nil
}

// Chat implements Provider for the resume assistant operation
func (g *GeminiProvider) Chat(ctx context.Context, input types.AssistantInput) (types.AssistantOutput, *TokenUsage, error) {
	contextInfo := ""
	if input.ResumeText != "" {
		contextInfo = "Current resume:\n" + input.ResumeText
	}
	userPrompt := fmt.Sprintf(g.userPrompt("assistant"), contextInfo, input.Message)

	genaiConfig := &genai.GenerateContentConfig{}
	g.applyTemperature(genaiConfig)

	result, tokenUsage, err := g.generate(ctx, "assistant_chat", userPrompt, g.systemPrompt("assistant"), genaiConfig,
		attribute.Int("input.message_length", len(input.Message)),
		attribute.Bool("input.has_resume", input.ResumeText != ""),
	)
	if err != nil {
		return types.AssistantOutput{}, nil, err
	}

	return types.AssistantOutput{Response: strings.TrimSpace(result.Text())}, tokenUsage, nil
}

// GetCircuitBreakerStats returns circuit breaker statistics
func (g *GeminiProvider) GetCircuitBreakerStats() map[string]any {
	return map[string]any{
		"ai_operations":    g.breaker.Stats(),
		"model_operations": g.modelBreaker.Stats(),
		"overall_healthy":  g.breaker.IsHealthy() && g.modelBreaker.IsHealthy(),
	}
}

// Close implements Provider
func (g *GeminiProvider) Close() error {
	// Gemini client doesn't have a Close method in current single-shot usage
	return nil
}

// toAnalysis maps the wire shape onto the mode-tagged record
func (w *analysisWire) toAnalysis(hasJob bool) types.AIAnalysis {
	analysis := types.AIAnalysis{
		ATSScore:               w.ATSScore,
		ImprovementSuggestions: w.ImprovementSuggestions,
		ContentStrength:        w.ContentStrength,
	}
	if analysis.ImprovementSuggestions == nil {
		analysis.ImprovementSuggestions = []string{}
	}

	if hasJob {
		analysis.JobMatch = &types.JobMatchAnalysis{
			MatchedKeywords:        w.KeywordAnalysis.MatchedKeywords,
			MissingKeywords:        w.KeywordAnalysis.MissingKeywords,
			KeywordMatchPercentage: w.KeywordAnalysis.KeywordMatchPercentage,
			RoleFitAnalysis:        w.RoleFitAnalysis,
			CriticalGaps:           w.CriticalGaps,
		}
	} else {
		analysis.General = &types.GeneralAnalysis{
			InferredRole:      w.InferredRole,
			TechnicalKeywords: w.KeywordAnalysis.TechnicalKeywords,
			SoftSkills:        w.KeywordAnalysis.SoftSkills,
			IndustryTerms:     w.KeywordAnalysis.IndustryTerms,
			GeneralFeedback:   w.GeneralFeedback,
		}
	}

	return analysis
}

// extractJSONPayload returns the substring from the first '{' through the
// last '}', tolerating prose or code fences around the JSON body.
func extractJSONPayload(text string) (string, bool) {
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end == -1 || end < start {
		return "", false
	}
	return text[start : end+1], true
}

// Schema fragments shared by both analysis response schemas
func stringList() *genai.Schema {
	return &genai.Schema{Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}}
}

func intField() *genai.Schema {
	return &genai.Schema{Type: genai.TypeInteger}
}

func objectSchema(props map[string]*genai.Schema, required ...string) *genai.Schema {
	return &genai.Schema{Type: genai.TypeObject, Properties: props, Required: required}
}

func (g *GeminiProvider) applyTemperature(cfg *genai.GenerateContentConfig) {
	if *g.config.Temperature > 0 {
		cfg.Temperature = g.config.Temperature
	}
}

// buildMatchedSchema creates the structured-output schema for job-matched analysis
func (g *GeminiProvider) buildMatchedSchema() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: objectSchema(map[string]*genai.Schema{
			"ats_score": intField(),
			"keyword_analysis": objectSchema(map[string]*genai.Schema{
				"matched_keywords":         stringList(),
				"missing_keywords":         stringList(),
				"keyword_match_percentage": intField(),
			}, "matched_keywords", "missing_keywords", "keyword_match_percentage"),
			"content_strength": objectSchema(map[string]*genai.Schema{
				"action_verbs_score":      intField(),
				"quantified_achievements": intField(),
				"relevance_score":         intField(),
			}, "action_verbs_score", "quantified_achievements", "relevance_score"),
			"improvement_suggestions": stringList(),
			"role_fit_analysis":       {Type: genai.TypeString},
			"critical_gaps":           stringList(),
		}, "ats_score", "keyword_analysis", "content_strength", "improvement_suggestions", "role_fit_analysis", "critical_gaps"),
	}
	g.applyTemperature(cfg)
	return cfg
}

// buildGeneralSchema creates the structured-output schema for general analysis
func (g *GeminiProvider) buildGeneralSchema() *genai.GenerateContentConfig {
	cfg := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		ResponseSchema: objectSchema(map[string]*genai.Schema{
			"ats_score":     intField(),
			"inferred_role": {Type: genai.TypeString},
			"keyword_analysis": objectSchema(map[string]*genai.Schema{
				"technical_keywords": stringList(),
				"soft_skills":        stringList(),
				"industry_terms":     stringList(),
			}, "technical_keywords", "soft_skills", "industry_terms"),
			"content_strength": objectSchema(map[string]*genai.Schema{
				"action_verbs_score":          intField(),
				"quantified_achievements":     intField(),
				"professional_language_score": intField(),
			}, "action_verbs_score", "quantified_achievements", "professional_language_score"),
			"improvement_suggestions": stringList(),
			"general_feedback":        {Type: genai.TypeString},
		}, "ats_score", "inferred_role", "keyword_analysis", "content_strength", "improvement_suggestions", "general_feedback"),
	}
	g.applyTemperature(cfg)
	return cfg
}

// TokenUsage represents token usage information from AI responses
type TokenUsage struct {
	InputTokens  int64
	OutputTokens int64
	TotalTokens  int64
}

// extractTokenUsage extracts token usage information from Gemini API response
func extractTokenUsage(result *genai.GenerateContentResponse) *TokenUsage {
	if result == nil || result.UsageMetadata == nil {
		return nil
	}

	usage := result.UsageMetadata
	return &TokenUsage{
		InputTokens:  int64(usage.PromptTokenCount),
		OutputTokens: int64(usage.CandidatesTokenCount),
		TotalTokens:  int64(usage.TotalTokenCount),
	}
}

// systemPrompt resolves the system prompt for a prompt slot, preferring a
// file-loaded prompt, then config, then the built-in default.
func (g *GeminiProvider) systemPrompt(slot string) string {
	loaded := config.GetLoadedPrompts()
	switch slot {
	case "analyze":
		return resolvePrompt(loaded.SystemPrompts.AnalyzeResume, g.config.CustomPrompts.SystemPrompts.AnalyzeResume, DefaultSystemPrompts.AnalyzeResume)
	case "assistant":
		return resolvePrompt(loaded.SystemPrompts.Assistant, g.config.CustomPrompts.SystemPrompts.Assistant, DefaultSystemPrompts.Assistant)
	default:
		return ""
	}
}

// userPrompt resolves the user prompt template for a prompt slot
func (g *GeminiProvider) userPrompt(slot string) string {
	loaded := config.GetLoadedPrompts()
	switch slot {
	case "analyze_matched":
		return resolvePrompt(loaded.UserPrompts.AnalyzeMatched, g.config.CustomPrompts.UserPrompts.AnalyzeMatched, DefaultUserPrompts.AnalyzeMatched)
	case "analyze_general":
		return resolvePrompt(loaded.UserPrompts.AnalyzeGeneral, g.config.CustomPrompts.UserPrompts.AnalyzeGeneral, DefaultUserPrompts.AnalyzeGeneral)
	case "assistant":
		return resolvePrompt(loaded.UserPrompts.Assistant, g.config.CustomPrompts.UserPrompts.Assistant, DefaultUserPrompts.Assistant)
	default:
		return ""
	}
}

// resolvePrompt selects the prompt by priority: file, config, default
func resolvePrompt(loadedFromFile, fromConfig, fromDefault string) string {
	if loadedFromFile != "" {
		return loadedFromFile
	}
	if fromConfig != "" {
		return fromConfig
	}
	return fromDefault
}
