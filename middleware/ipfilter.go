package middleware

import (
	"net/http"
	"net/netip"
	"strings"

	"github.com/dmitrymomot/routekit"
)

// IPFilterConfig configures the IP filtering middleware.
type IPFilterConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *routekit.Context) bool
	// Allow lists networks that may pass. Empty means allow all except Deny.
	Allow []netip.Prefix
	// Deny lists networks that are rejected. Checked before Allow.
	Deny []netip.Prefix
	// KeyExtractor resolves the client IP (default: ClientIP)
	KeyExtractor func(ctx *routekit.Context) string
	// TrustUnknown admits requests whose client IP cannot be parsed.
	TrustUnknown bool
}

// IPFilter creates an IP filtering middleware with the given allow and deny
// lists. Requests from denied networks, or outside a non-empty allow list,
// receive 403.
func IPFilter(allow, deny []netip.Prefix) routekit.Handler {
	return IPFilterWithConfig(IPFilterConfig{Allow: allow, Deny: deny})
}

// IPFilterWithConfig creates an IP filtering middleware with custom
// configuration.
func IPFilterWithConfig(cfg IPFilterConfig) routekit.Handler {
	if cfg.KeyExtractor == nil {
		cfg.KeyExtractor = ClientIP
	}

	return func(ctx *routekit.Context, next routekit.Next) (*routekit.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		addr, err := netip.ParseAddr(cfg.KeyExtractor(ctx))
		if err != nil {
			if cfg.TrustUnknown {
				return next()
			}
			return ctx.TextWithStatus("403 Forbidden", http.StatusForbidden)
		}

		for _, p := range cfg.Deny {
			if p.Contains(addr) {
				return ctx.TextWithStatus("403 Forbidden", http.StatusForbidden)
			}
		}
		if len(cfg.Allow) > 0 {
			for _, p := range cfg.Allow {
				if p.Contains(addr) {
					return next()
				}
			}
			return ctx.TextWithStatus("403 Forbidden", http.StatusForbidden)
		}

		return next()
	}
}

// ClientIP resolves the client address from proxy headers: the first
// X-Forwarded-For hop, then X-Real-IP.
func ClientIP(ctx *routekit.Context) string {
	if xff := ctx.Request().Header("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	return strings.TrimSpace(ctx.Request().Header("X-Real-IP"))
}
