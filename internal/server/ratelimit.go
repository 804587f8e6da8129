package server

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"careercatalyst/internal/errors"

	"golang.org/x/time/rate"
)

// limiterEntry pairs a token bucket with its last activity time so idle
// clients can be evicted.
type limiterEntry struct {
	bucket   *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per client key ("api:<key>" or
// "ip:<addr>") and evicts buckets that have gone idle.
type RateLimiter struct {
	mu      sync.Mutex
	entries map[string]*limiterEntry

	limit rate.Limit
	burst int

	evictAfter time.Duration
	done       chan struct{}
	logger     *errors.Logger
}

// NewRateLimiter builds a limiter allowing requestsPerMin sustained
// requests with the given burst. Buckets idle for longer than the window
// (at least ten minutes) are evicted by a background sweep.
func NewRateLimiter(requestsPerMin int, window time.Duration, burstCapacity int, logger *errors.Logger) *RateLimiter {
	evictAfter := 10 * time.Minute
	if window > evictAfter {
		evictAfter = window
	}

	rl := &RateLimiter{
		entries:    make(map[string]*limiterEntry),
		limit:      rate.Limit(float64(requestsPerMin) / 60.0),
		burst:      burstCapacity,
		evictAfter: evictAfter,
		done:       make(chan struct{}),
		logger:     logger,
	}
	go rl.sweepLoop()
	return rl
}

// Allow reports whether the request identified by key may proceed now
func (rl *RateLimiter) Allow(key string) bool {
	rl.mu.Lock()
	entry, ok := rl.entries[key]
	if !ok {
		entry = &limiterEntry{bucket: rate.NewLimiter(rl.limit, rl.burst)}
		rl.entries[key] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.bucket.Allow()
}

// GetStats returns a snapshot of the limiter state for the stats endpoint
func (rl *RateLimiter) GetStats() map[string]any {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	return map[string]any{
		"active_limiters": len(rl.entries),
		"rate_per_second": float64(rl.limit),
		"rate_per_minute": float64(rl.limit) * 60.0,
		"burst_capacity":  rl.burst,
	}
}

func (rl *RateLimiter) sweepLoop() {
	ticker := time.NewTicker(rl.evictAfter)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			rl.evictIdle()
		case <-rl.done:
			return
		}
	}
}

func (rl *RateLimiter) evictIdle() {
	cutoff := time.Now().Add(-rl.evictAfter)

	rl.mu.Lock()
	for key, entry := range rl.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.entries, key)
		}
	}
	remaining := len(rl.entries)
	rl.mu.Unlock()

	if rl.logger != nil {
		rl.logger.Debug("Rate limiter sweep completed", "remaining_limiters", remaining)
	}
}

// Close stops the background sweep goroutine
func (rl *RateLimiter) Close() {
	close(rl.done)
}

// rateLimitMiddleware rejects requests whose client key has exhausted its
// token bucket. Requests without a derivable key pass through.
func (s *Server) rateLimitMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	if s.RateLimit == nil || !s.RateLimit.Enabled {
		return func(next http.HandlerFunc) http.HandlerFunc { return next }
	}

	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			key := getRateLimitKey(r, s.RateLimit.ByAPIKey, s.RateLimit.ByIP)
			if key != "" && !s.RateLimiter.Allow(key) {
				s.Logger.Info("Rate limit exceeded",
					"key", key,
					"endpoint", r.URL.Path,
					"client_ip", getClientIP(r))
				writeErrorResponse(w, "Rate limit exceeded", "Too many requests", http.StatusTooManyRequests)
				return
			}
			next(w, r)
		}
	}
}

// getRateLimitKey derives the bucket key: API key when enabled and
// present, client IP otherwise
func getRateLimitKey(r *http.Request, byAPIKey, byIP bool) string {
	if byAPIKey {
		apiKey := r.Header.Get("X-API-Key")
		if apiKey == "" {
			if after, ok := strings.CutPrefix(r.Header.Get("Authorization"), "Bearer "); ok {
				apiKey = after
			}
		}
		if apiKey != "" {
			return "api:" + apiKey
		}
	}
	if byIP {
		return "ip:" + getClientIP(r)
	}
	return ""
}

// getClientIP resolves the client address, honoring proxy headers
func getClientIP(r *http.Request) string {
	for ip := range strings.SplitSeq(r.Header.Get("X-Forwarded-For"), ",") {
		ip = strings.TrimSpace(ip)
		if net.ParseIP(ip) != nil {
			return ip
		}
	}

	if xri := r.Header.Get("X-Real-IP"); net.ParseIP(xri) != nil {
		return xri
	}

	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
