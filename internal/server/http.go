package server

import (
	"time"

	"careercatalyst/internal/ai"
	"careercatalyst/internal/config"
	ccErrors "careercatalyst/internal/errors"
	"careercatalyst/internal/jobs"
)

// AnalyzeResumeRequest represents the request body for the analyze-resume endpoint
type AnalyzeResumeRequest struct {
	ResumeText     string `json:"resume_text"`
	JobDescription string `json:"job_description"`
}

// QuickAnalyzeRequest represents the request body for the analyze-resume-quick endpoint
type QuickAnalyzeRequest struct {
	ResumeText string `json:"resume_text"`
}

// AssistantRequest represents the request body for the ai-assistant endpoint
type AssistantRequest struct {
	Message    string `json:"message"`
	ResumeText string `json:"resume_text"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// Server carries everything the HTTP surface needs: listener settings,
// TLS state, auth keys, the rate limiter, the job listings aggregator and
// the token usage sink shared by per-request AI services.
type Server struct {
	Host    string
	Port    string
	Version string

	AppConfig *config.Config

	TLSConfig config.TLSConfig
	Certs     *certStore

	// Valid API keys; empty means authentication is off
	APIKeys map[string]bool

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration

	MaxRequestSize int64

	RateLimit   *config.RateLimitConfig
	RateLimiter *RateLimiter

	Jobs *jobs.Aggregator

	TokenSink ai.TokenSink

	Logger *ccErrors.Logger
}

// ServerConfig bundles the construction parameters for NewServer
type ServerConfig struct {
	Host           string
	Port           string
	Version        string
	TLSConfig      config.TLSConfig
	APIKeys        []string
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxRequestSize int64
	RateLimit      *config.RateLimitConfig
}

// NewServer creates a new Server instance from a ServerConfig struct
func NewServer(appCfg *config.Config, cfg ServerConfig, logger *ccErrors.Logger) *Server {
	s := &Server{
		Host:           cfg.Host,
		Port:           cfg.Port,
		Version:        cfg.Version,
		AppConfig:      appCfg,
		TLSConfig:      cfg.TLSConfig,
		APIKeys:        keySet(cfg.APIKeys),
		ReadTimeout:    cfg.ReadTimeout,
		WriteTimeout:   cfg.WriteTimeout,
		IdleTimeout:    cfg.IdleTimeout,
		MaxRequestSize: cfg.MaxRequestSize,
		RateLimit:      cfg.RateLimit,
		Jobs:           jobs.NewAggregator(appCfg.Jobs, logger),
		Logger:         logger,
	}

	if cfg.RateLimit != nil && cfg.RateLimit.Enabled {
		s.RateLimiter = NewRateLimiter(
			cfg.RateLimit.RequestsPerMin,
			cfg.RateLimit.Window,
			cfg.RateLimit.BurstCapacity,
			logger,
		)
	}

	return s
}

// keySet converts the configured key list to a lookup map, skipping blanks
func keySet(keys []string) map[string]bool {
	set := make(map[string]bool, len(keys))
	for _, key := range keys {
		if key != "" {
			set[key] = true
		}
	}
	return set
}
