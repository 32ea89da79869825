package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// RateLimiter provides per-key token bucket rate limiting.
// TOKEN BUCKET ALGORITHM:
//   - Tokens refill at a fixed rate up to the burst size
//   - Each request consumes one token
//   - Requests are rejected when the bucket is empty
type RateLimiter struct {
	rate  float64
	burst float64

	mu      sync.Mutex
	buckets map[string]*bucket
}

type bucket struct {
	tokens float64
	last   time.Time
}

// RateLimitConfig holds configuration for rate limiting.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// DefaultRateLimitConfig returns default rate limit configuration.
func DefaultRateLimitConfig() *RateLimitConfig {
	return &RateLimitConfig{
		RequestsPerSecond: 50.0,
		Burst:             100,
	}
}

// NewRateLimiter creates a new in-memory rate limiter.
func NewRateLimiter(config *RateLimitConfig) *RateLimiter {
	if config == nil {
		config = DefaultRateLimitConfig()
	}
	return &RateLimiter{
		rate:    config.RequestsPerSecond,
		burst:   float64(config.Burst),
		buckets: make(map[string]*bucket),
	}
}

// Allow consumes one token for key, reporting whether the request may pass.
func (r *RateLimiter) Allow(key string) bool {
	now := time.Now()

	r.mu.Lock()
	defer r.mu.Unlock()

	b, ok := r.buckets[key]
	if !ok {
		b = &bucket{tokens: r.burst, last: now}
		r.buckets[key] = b
	}

	b.tokens += now.Sub(b.last).Seconds() * r.rate
	if b.tokens > r.burst {
		b.tokens = r.burst
	}
	b.last = now

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

// GinMiddleware returns the Gin middleware for rate limiting, keyed by the
// authenticated client id when present, else the remote address.
func (r *RateLimiter) GinMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetString(ContextKeyClientID)
		if key == "" {
			key = c.ClientIP()
		}

		if !r.Allow(key) {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
				"error":   "rate_limited",
				"message": "too many requests",
				"code":    "RATE_LIMITED",
			})
			return
		}
		c.Next()
	}
}
