package server

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"careercatalyst/internal/config"
	"careercatalyst/internal/errors"
)

func newTestLimiter(t *testing.T, requestsPerMin, burst int) *RateLimiter {
	t.Helper()

	logger, err := errors.New("error")
	require.NoError(t, err)

	limiter := NewRateLimiter(requestsPerMin, time.Minute, burst, logger)
	t.Cleanup(limiter.Close)
	return limiter
}

func TestLimiterAllowsBurst(t *testing.T) {
	limiter := newTestLimiter(t, 60, 3)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.Allow("ip:10.0.0.1"), "request %d within burst should pass", i+1)
	}
	assert.False(t, limiter.Allow("ip:10.0.0.1"), "request beyond burst should be rejected")
}

func TestLimiterIsolatesKeys(t *testing.T) {
	limiter := newTestLimiter(t, 60, 1)

	assert.True(t, limiter.Allow("ip:10.0.0.1"))
	assert.False(t, limiter.Allow("ip:10.0.0.1"))

	// A different key has its own bucket
	assert.True(t, limiter.Allow("ip:10.0.0.2"))
}

func TestLimiterStats(t *testing.T) {
	limiter := newTestLimiter(t, 120, 5)

	limiter.Allow("ip:10.0.0.1")
	limiter.Allow("api:some-key")

	stats := limiter.GetStats()
	assert.Equal(t, 2, stats["active_limiters"])
	assert.InDelta(t, 2.0, stats["rate_per_second"], 0.001)
	assert.InDelta(t, 120.0, stats["rate_per_minute"], 0.001)
	assert.Equal(t, 5, stats["burst_capacity"])
}

func TestLimiterEvictsIdleEntries(t *testing.T) {
	limiter := newTestLimiter(t, 60, 1)

	limiter.Allow("ip:10.0.0.1")
	limiter.Allow("ip:10.0.0.2")

	limiter.mu.Lock()
	limiter.entries["ip:10.0.0.1"].lastSeen = time.Now().Add(-time.Hour)
	limiter.mu.Unlock()

	limiter.evictIdle()

	stats := limiter.GetStats()
	assert.Equal(t, 1, stats["active_limiters"])
}

func TestGetRateLimitKey(t *testing.T) {
	tests := []struct {
		name     string
		byAPIKey bool
		byIP     bool
		headers  map[string]string
		expected string
	}{
		{
			name:     "api key header",
			byAPIKey: true,
			headers:  map[string]string{"X-API-Key": "abc123"},
			expected: "api:abc123",
		},
		{
			name:     "bearer token",
			byAPIKey: true,
			headers:  map[string]string{"Authorization": "Bearer token456"},
			expected: "api:token456",
		},
		{
			name:     "falls back to ip",
			byAPIKey: true,
			byIP:     true,
			expected: "ip:192.0.2.1",
		},
		{
			name:     "ip only",
			byIP:     true,
			expected: "ip:192.0.2.1",
		},
		{
			name:     "nothing enabled",
			expected: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}
			assert.Equal(t, tt.expected, getRateLimitKey(req, tt.byAPIKey, tt.byIP))
		})
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name     string
		headers  map[string]string
		expected string
	}{
		{
			name:     "x-forwarded-for single",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.5"},
			expected: "203.0.113.5",
		},
		{
			name:     "x-forwarded-for list takes first",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.5, 10.0.0.1"},
			expected: "203.0.113.5",
		},
		{
			name:     "x-real-ip",
			headers:  map[string]string{"X-Real-IP": "198.51.100.9"},
			expected: "198.51.100.9",
		},
		{
			name:     "invalid forwarded falls through to remote addr",
			headers:  map[string]string{"X-Forwarded-For": "not-an-ip"},
			expected: "192.0.2.1",
		},
		{
			name:     "remote addr",
			expected: "192.0.2.1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			for key, value := range tt.headers {
				req.Header.Set(key, value)
			}
			assert.Equal(t, tt.expected, getClientIP(req))
		})
	}
}

func TestRateLimitMiddlewareRejectsOverLimit(t *testing.T) {
	listings := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body></body></html>"))
	}))
	defer listings.Close()

	cfg := newTestConfig()
	cfg.Jobs.BaseURL = listings.URL

	_, mux := newTestServer(t, cfg, ServerConfig{
		MaxRequestSize: 1 << 20,
		RateLimit: &config.RateLimitConfig{
			Enabled:        true,
			RequestsPerMin: 60,
			BurstCapacity:  1,
			ByIP:           true,
			Window:         time.Minute,
		},
	})

	req := httptest.NewRequest(http.MethodGet, "/jobs", nil)
	req.RemoteAddr = "10.1.2.3:4567"

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	// First request is within the burst
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
