package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"careercatalyst/internal/ai"
	"careercatalyst/internal/config"
)

// Certificate expiry thresholds for the health report
const (
	certCriticalWindow = 24 * time.Hour
	certWarningWindow  = 7 * 24 * time.Hour
)

// aiOperationConfigs returns the per-operation AI configs keyed by the
// operation name used in health output
func (s *Server) aiOperationConfigs() map[string]config.OperationAIConfig {
	return map[string]config.OperationAIConfig{
		"analyze":   s.AppConfig.GetAnalyzeConfig(),
		"assistant": s.AppConfig.GetAssistantConfig(),
	}
}

// healthHandler reports service health: per-operation AI model
// availability, circuit breaker integration and certificate expiry. Any
// unavailable model or unhealthy certificate degrades the overall status.
func (s *Server) healthHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	aiStatus, aiHealthy := s.checkAIModelsHealth()
	response := map[string]any{
		"status":           "healthy",
		"service":          "careercatalyst",
		"version":          s.Version,
		"ai_models":        aiStatus,
		"circuit_breakers": s.checkCircuitBreakerHealth(),
	}

	healthy := aiHealthy
	if certStatus := s.checkCertificateHealth(); certStatus != nil {
		response["certificates"] = certStatus
		if certHealthy, ok := certStatus["healthy"].(bool); ok && !certHealthy {
			healthy = false
		}
	}

	if !healthy {
		response["status"] = "degraded"
		w.WriteHeader(http.StatusServiceUnavailable)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode health response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// checkAIModelsHealth queries the configured model for every AI operation
func (s *Server) checkAIModelsHealth() (map[string]any, bool) {
	timeout := s.AppConfig.Observability.HealthCheck.Timeout
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	aiStatus := make(map[string]any)
	healthy := true

	for name, cfg := range s.aiOperationConfigs() {
		service, err := ai.NewService(&cfg, name, s.Logger)
		if err != nil {
			aiStatus[name] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s service: %v", name, err),
			}
			healthy = false
			continue
		}

		modelInfo := service.GetModelInfo(ctx)
		aiStatus[name] = map[string]any{
			"available": modelInfo.Available,
			"model":     modelInfo.Name,
			"error":     modelInfo.Error,
		}
		if !modelInfo.Available {
			healthy = false
		}
	}

	return aiStatus, healthy
}

// checkCircuitBreakerHealth verifies each AI operation can stand up its
// breaker-wrapped service
func (s *Server) checkCircuitBreakerHealth() map[string]any {
	status := make(map[string]any)

	for name, cfg := range s.aiOperationConfigs() {
		if _, err := ai.NewService(&cfg, name, s.Logger); err != nil {
			status[name] = map[string]any{
				"available": false,
				"error":     fmt.Sprintf("Failed to create %s service: %v", name, err),
			}
			continue
		}
		status[name] = map[string]any{
			"available": true,
			"message":   fmt.Sprintf("Circuit breaker integrated with %s service", name),
		}
	}

	return status
}

// checkCertificateHealth reports certificate expiry, watcher state and
// reload counters; nil when TLS is not active
func (s *Server) checkCertificateHealth() map[string]any {
	if s.Certs == nil {
		return nil
	}

	timeToExpiry, err := s.Certs.CheckExpiry()
	if err != nil {
		return map[string]any{
			"healthy": false,
			"error":   fmt.Sprintf("Failed to check certificate expiry: %v", err),
		}
	}

	certStatus := map[string]any{
		"time_to_expiry_hours": int(timeToExpiry.Hours()),
		"time_to_expiry":       timeToExpiry.String(),
	}

	switch {
	case timeToExpiry <= 0:
		certStatus["healthy"] = false
		certStatus["status"] = "expired"
		certStatus["message"] = "Certificate has expired"
	case timeToExpiry <= certCriticalWindow:
		certStatus["healthy"] = false
		certStatus["status"] = "critical"
		certStatus["message"] = "Certificate expires within 24 hours"
	case timeToExpiry <= certWarningWindow:
		certStatus["healthy"] = true
		certStatus["status"] = "warning"
		certStatus["message"] = "Certificate expires within 7 days"
	default:
		certStatus["healthy"] = true
		certStatus["status"] = "ok"
		certStatus["message"] = "Certificate is valid"
	}

	autoReload := map[string]any{"enabled": s.TLSConfig.AutoReload.Enabled}
	if s.TLSConfig.AutoReload.Enabled {
		if watcher := s.Certs.Watcher(); watcher != nil {
			autoReload["watcher_running"] = watcher.IsRunning()
			autoReload["watched_files"] = watcher.GetWatchedFiles()
		}
	}
	certStatus["auto_reload"] = autoReload

	metrics := s.Certs.Metrics()
	certStatus["metrics"] = map[string]any{
		"reload_count":         metrics.ReloadCount,
		"reload_success_count": metrics.ReloadSuccessCount,
		"reload_failure_count": metrics.ReloadFailureCount,
		"last_reload_time":     metrics.LastReloadTime,
		"last_reload_success":  metrics.LastReloadSuccess,
		"last_reload_error":    metrics.LastReloadError,
	}

	return certStatus
}

// statsHandler reports rate limiter state and server limits
func (s *Server) statsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	response := map[string]any{
		"service": "careercatalyst",
		"version": s.Version,
		"server": map[string]any{
			"max_request_size_bytes": s.MaxRequestSize,
		},
		"jobs": map[string]any{
			"base_url":  s.AppConfig.Jobs.BaseURL,
			"max_pages": s.AppConfig.Jobs.MaxPages,
		},
	}

	if s.RateLimiter != nil {
		response["rate_limiting"] = s.RateLimiter.GetStats()
	} else {
		response["rate_limiting"] = map[string]any{"enabled": false}
	}

	if s.RateLimit != nil {
		response["rate_limit_config"] = map[string]any{
			"enabled":          s.RateLimit.Enabled,
			"requests_per_min": s.RateLimit.RequestsPerMin,
			"burst_capacity":   s.RateLimit.BurstCapacity,
			"by_ip":            s.RateLimit.ByIP,
			"by_api_key":       s.RateLimit.ByAPIKey,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		log.Printf("Failed to encode stats response: %v", err)
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// parseJSONRequest decodes a JSON request body into v
func parseJSONRequest(r *http.Request, v any) error {
	if r.Header.Get("Content-Type") != "application/json" {
		return fmt.Errorf("content-type must be application/json")
	}
	defer func() {
		if err := r.Body.Close(); err != nil {
			log.Printf("Failed to close request body: %v", err)
		}
	}()

	body, err := io.ReadAll(r.Body)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return fmt.Errorf("request body too large (limit is %d bytes)", maxBytesErr.Limit)
		}
		return fmt.Errorf("failed to read request body: %w", err)
	}

	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("failed to parse JSON: %w", err)
	}
	return nil
}

// writeErrorResponse writes a standardized error response
func writeErrorResponse(w http.ResponseWriter, error, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(ErrorResponse{Error: error, Message: message}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
		http.Error(w, "Failed to encode error response", http.StatusInternalServerError)
	}
}
