package middleware

import (
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/dmitrymomot/routekit"
)

// RateLimitConfig configures the rate limiting middleware.
type RateLimitConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *routekit.Context) bool
	// Limit is the number of requests allowed per Window (default: 100)
	Limit int
	// Window is the refill period (default: 1 minute)
	Window time.Duration
	// KeyExtractor derives the limiting key from a request (default: ClientIP)
	KeyExtractor func(ctx *routekit.Context) string
	// SetHeaders includes X-RateLimit-* information in responses
	SetHeaders bool
}

// RateLimit creates a rate limiting middleware allowing limit requests per
// window per client key. Exhausted keys receive 429 with a Retry-After.
func RateLimit(limit int, window time.Duration) routekit.Handler {
	return RateLimitWithConfig(RateLimitConfig{Limit: limit, Window: window, SetHeaders: true})
}

// RateLimitWithConfig creates a rate limiting middleware with custom
// configuration. State is a per-middleware in-memory token bucket set; use
// one shared instance per policy.
func RateLimitWithConfig(cfg RateLimitConfig) routekit.Handler {
	if cfg.Limit <= 0 {
		cfg.Limit = 100
	}
	if cfg.Window <= 0 {
		cfg.Window = time.Minute
	}
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = ClientIP
	}

	store := newBucketStore(cfg.Limit, cfg.Window)

	return func(ctx *routekit.Context, next routekit.Next) (*routekit.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		remaining, retryAfter, allowed := store.take(cfg.KeyExtractor(ctx))

		if cfg.SetHeaders {
			h := ctx.Header()
			h.Set("X-RateLimit-Limit", strconv.Itoa(cfg.Limit))
			h.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		}

		if !allowed {
			ctx.Header().Set("Retry-After", strconv.Itoa(int(retryAfter.Seconds()+1)))
			return ctx.TextWithStatus("429 Too Many Requests", http.StatusTooManyRequests)
		}

		return next()
	}
}

// bucket is one key's token bucket state.
type bucket struct {
	tokens     float64
	lastRefill time.Time
}

// bucketStore is an in-memory token bucket set with lazy refill and
// opportunistic cleanup of idle buckets.
type bucketStore struct {
	mu        sync.Mutex
	buckets   map[string]*bucket
	limit     float64
	window    time.Duration
	lastSweep time.Time
}

func newBucketStore(limit int, window time.Duration) *bucketStore {
	return &bucketStore{
		buckets:   make(map[string]*bucket),
		limit:     float64(limit),
		window:    window,
		lastSweep: time.Now(),
	}
}

// take consumes one token for the key, reporting the remaining allowance and
// how long until a token becomes available when exhausted.
func (s *bucketStore) take(key string) (remaining int, retryAfter time.Duration, allowed bool) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.sweep(now)

	b, ok := s.buckets[key]
	if !ok {
		b = &bucket{tokens: s.limit, lastRefill: now}
		s.buckets[key] = b
	} else {
		refill := s.limit * float64(now.Sub(b.lastRefill)) / float64(s.window)
		b.tokens = min(s.limit, b.tokens+refill)
		b.lastRefill = now
	}

	if b.tokens < 1 {
		deficit := 1 - b.tokens
		retryAfter = time.Duration(deficit / s.limit * float64(s.window))
		return 0, retryAfter, false
	}

	b.tokens--
	return int(b.tokens), 0, true
}

// sweep drops buckets idle long enough to be full again. Runs at most once
// per window.
func (s *bucketStore) sweep(now time.Time) {
	if now.Sub(s.lastSweep) < s.window {
		return
	}
	s.lastSweep = now
	for key, b := range s.buckets {
		if now.Sub(b.lastRefill) >= s.window {
			delete(s.buckets, key)
		}
	}
}
