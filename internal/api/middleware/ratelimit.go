package middleware

import (
	"net/http"
	"strconv"

	"github.com/locateflow/locateflow/internal/repository/redis"
)

// RateLimitMiddleware provides rate limiting functionality
type RateLimitMiddleware struct {
	cache   *redis.Cache
	limit   int
	enabled bool
}

// NewRateLimitMiddleware creates a new rate limit middleware
func NewRateLimitMiddleware(cache *redis.Cache, limit int, enabled bool) *RateLimitMiddleware {
	return &RateLimitMiddleware{
		cache:   cache,
		limit:   limit,
		enabled: enabled,
	}
}

// Handler returns the middleware handler
func (m *RateLimitMiddleware) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Skip if rate limiting is disabled
		if !m.enabled || m.cache == nil {
			next.ServeHTTP(w, r)
			return
		}

		// Skip for health checks
		if r.URL.Path == "/health" || r.URL.Path == "/ready" {
			next.ServeHTTP(w, r)
			return
		}

		key := m.getRateLimitKey(r)

		// Check rate limit
		allowed, count, err := m.cache.CheckRateLimit(r.Context(), key, m.limit)
		if err != nil {
			// On Redis error, allow the request
			next.ServeHTTP(w, r)
			return
		}

		// Set rate limit headers
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(m.limit))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(m.limit-count))

		if !allowed {
			w.Header().Set("Retry-After", "60")
			http.Error(w, "Rate limit exceeded", http.StatusTooManyRequests)
			return
		}

		next.ServeHTTP(w, r)
	})
}

// getRateLimitKey derives the rate limit key from the client address
func (m *RateLimitMiddleware) getRateLimitKey(r *http.Request) string {
	ip := r.Header.Get("X-Forwarded-For")
	if ip == "" {
		ip = r.Header.Get("X-Real-IP")
	}
	if ip == "" {
		ip = r.RemoteAddr
	}

	return "ip:" + ip
}
