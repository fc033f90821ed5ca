package middleware

import (
	"github.com/google/uuid"

	"github.com/dmitrymomot/routekit"
)

// RequestIDStateKey is the state bag key the request ID is stored under.
const RequestIDStateKey = "request_id"

// RequestIDConfig configures the request ID middleware.
type RequestIDConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *routekit.Context) bool
	// Generator creates new request IDs (default: UUID v4)
	Generator func() string
	// HeaderName specifies the header name for the request ID (default: "X-Request-ID")
	HeaderName string
	// UseExisting determines whether to reuse a request ID supplied by the client
	UseExisting bool
}

// RequestID creates a request ID middleware with default configuration.
// It assigns a UUID to each request, stores it in the state bag, and sets it
// on the response headers.
func RequestID() routekit.Handler {
	return RequestIDWithConfig(RequestIDConfig{})
}

// RequestIDWithConfig creates a request ID middleware with custom
// configuration.
func RequestIDWithConfig(cfg RequestIDConfig) routekit.Handler {
	if cfg.HeaderName == "" {
		cfg.HeaderName = "X-Request-ID"
	}
	if cfg.Generator == nil {
		cfg.Generator = func() string {
			return uuid.New().String()
		}
	}

	return func(ctx *routekit.Context, next routekit.Next) (*routekit.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		var id string
		if cfg.UseExisting {
			id = ctx.Request().Header(cfg.HeaderName)
		}
		if id == "" {
			id = cfg.Generator()
		}

		ctx.Set(RequestIDStateKey, id)
		ctx.Header().Set(cfg.HeaderName, id)
		return next()
	}
}
