package middleware

import (
	"net/http"
	"time"

	"github.com/dmitrymomot/routekit"
	"github.com/dmitrymomot/routekit/cache"
)

// CachedResponse is the stored form of a cached response.
type CachedResponse struct {
	Status int         `json:"status"`
	Header http.Header `json:"header"`
	Body   []byte      `json:"body"`
}

// ResponseCacheConfig configures the response caching middleware.
type ResponseCacheConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *routekit.Context) bool
	// Cache is the storage backend (required)
	Cache cache.Cache[CachedResponse]
	// TTL for cached entries; zero uses the cache's default
	TTL time.Duration
	// KeyFunc derives the cache key (default: method + " " + URL)
	KeyFunc func(ctx *routekit.Context) string
	// Cacheable decides whether a produced response may be stored
	// (default: GET requests with status 200)
	Cacheable func(ctx *routekit.Context, resp *routekit.Response) bool
}

// ResponseCache creates a response caching middleware over the given
// backend. Hits are served without running the rest of the chain; misses run
// it and store successful GET responses.
func ResponseCache(c cache.Cache[CachedResponse], ttl time.Duration) routekit.Handler {
	return ResponseCacheWithConfig(ResponseCacheConfig{Cache: c, TTL: ttl})
}

// ResponseCacheWithConfig creates a response caching middleware with custom
// configuration. Panics if no cache backend is provided.
func ResponseCacheWithConfig(cfg ResponseCacheConfig) routekit.Handler {
	if cfg.Cache == nil {
		panic("responsecache middleware: cache backend is required")
	}
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = func(ctx *routekit.Context) string {
			return ctx.Request().Method() + " " + ctx.Request().URL()
		}
	}
	if cfg.Cacheable == nil {
		cfg.Cacheable = func(ctx *routekit.Context, resp *routekit.Response) bool {
			return ctx.Request().Method() == http.MethodGet && resp.Status == http.StatusOK
		}
	}

	return func(ctx *routekit.Context, next routekit.Next) (*routekit.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		key := cfg.KeyFunc(ctx)
		if hit, err := cfg.Cache.Get(ctx, key); err == nil {
			// Serve a private copy: the stored entry is shared between
			// concurrent hits and must never be mutated.
			resp := &routekit.Response{
				Status: hit.Status,
				Header: cloneHeader(hit.Header),
				Body:   cloneBytes(hit.Body),
			}
			resp.Header.Set("X-Cache", "HIT")
			return resp, nil
		}

		resp, err := next()
		if err != nil || resp == nil {
			return resp, err
		}

		if cfg.Cacheable(ctx, resp) {
			// Best-effort store of a detached copy; a failing backend never
			// fails the request, and later mutation of the live response
			// cannot corrupt the cached entry.
			_ = cfg.Cache.Set(ctx, key, CachedResponse{
				Status: resp.Status,
				Header: cloneHeader(resp.Header),
				Body:   cloneBytes(resp.Body),
			}, cfg.TTL)
		}

		return resp, nil
	}
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vv := range h {
		out[k] = append([]string(nil), vv...)
	}
	return out
}

func cloneBytes(b []byte) []byte {
	if b == nil {
		return nil
	}
	return append([]byte(nil), b...)
}
