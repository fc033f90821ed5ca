package middleware

import (
	"log/slog"
	"time"

	"github.com/dmitrymomot/routekit"
)

// LoggingConfig configures the request logging middleware.
type LoggingConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *routekit.Context) bool
	// Logger is the slog logger to use (default: slog.Default())
	Logger *slog.Logger
	// Level for request log lines (default: slog.LevelInfo)
	Level slog.Level
	// SlowRequestThreshold logs a warning for requests slower than this.
	// Zero disables the check.
	SlowRequestThreshold time.Duration
}

// Logging creates a request logging middleware with default configuration.
// It logs one line per request: method, path, status, and duration.
func Logging() routekit.Handler {
	return LoggingWithConfig(LoggingConfig{})
}

// LoggingWithConfig creates a request logging middleware with custom
// configuration.
func LoggingWithConfig(cfg LoggingConfig) routekit.Handler {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}

	return func(ctx *routekit.Context, next routekit.Next) (*routekit.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		start := time.Now()
		resp, err := next()
		elapsed := time.Since(start)

		attrs := []any{
			"method", ctx.Request().Method(),
			"path", ctx.Path(),
			"duration", elapsed,
		}
		if resp != nil {
			attrs = append(attrs, "status", resp.Status)
		}

		switch {
		case err != nil:
			cfg.Logger.Error("request failed", append(attrs, "error", err)...)
		case cfg.SlowRequestThreshold > 0 && elapsed > cfg.SlowRequestThreshold:
			cfg.Logger.Warn("slow request", attrs...)
		default:
			cfg.Logger.Log(ctx, cfg.Level, "request", attrs...)
		}

		return resp, err
	}
}
