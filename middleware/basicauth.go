package middleware

import (
	"crypto/sha256"
	"crypto/subtle"
	"encoding/base64"
	"net/http"
	"strings"

	"github.com/dmitrymomot/routekit"
)

// BasicAuthUserStateKey is the state bag key the authenticated username is
// stored under.
const BasicAuthUserStateKey = "basic_auth_user"

// BasicAuthConfig configures the basic authentication middleware.
type BasicAuthConfig struct {
	// Skip defines a function to skip middleware execution for specific requests
	Skip func(ctx *routekit.Context) bool
	// Users maps usernames to passwords. Ignored when Validator is set.
	Users map[string]string
	// Validator checks a credential pair. Overrides Users when set.
	Validator func(ctx *routekit.Context, username, password string) bool
	// Realm is advertised in the WWW-Authenticate challenge (default: "Restricted")
	Realm string
}

// BasicAuth creates a basic authentication middleware guarding with the
// given user set. Credentials are compared in constant time.
func BasicAuth(users map[string]string) routekit.Handler {
	return BasicAuthWithConfig(BasicAuthConfig{Users: users})
}

// BasicAuthWithConfig creates a basic authentication middleware with custom
// configuration. Panics if neither Users nor Validator is provided.
func BasicAuthWithConfig(cfg BasicAuthConfig) routekit.Handler {
	if cfg.Users == nil && cfg.Validator == nil {
		panic("basicauth middleware: users or validator is required")
	}
	if cfg.Realm == "" {
		cfg.Realm = "Restricted"
	}
	if cfg.Validator == nil {
		cfg.Validator = func(_ *routekit.Context, username, password string) bool {
			expected, ok := cfg.Users[username]
			return constantTimeEquals(password, expected) && ok
		}
	}

	challenge := `Basic realm="` + strings.ReplaceAll(cfg.Realm, `"`, "") + `"`

	return func(ctx *routekit.Context, next routekit.Next) (*routekit.Response, error) {
		if cfg.Skip != nil && cfg.Skip(ctx) {
			return next()
		}

		username, password, ok := parseBasicAuth(ctx.Request().Header("Authorization"))
		if !ok || !cfg.Validator(ctx, username, password) {
			ctx.Header().Set("WWW-Authenticate", challenge)
			return ctx.TextWithStatus("401 Unauthorized", http.StatusUnauthorized)
		}

		ctx.Set(BasicAuthUserStateKey, username)
		return next()
	}
}

func parseBasicAuth(header string) (username, password string, ok bool) {
	const prefix = "Basic "
	if len(header) < len(prefix) || !strings.EqualFold(header[:len(prefix)], prefix) {
		return "", "", false
	}
	decoded, err := base64.StdEncoding.DecodeString(header[len(prefix):])
	if err != nil {
		return "", "", false
	}
	username, password, ok = strings.Cut(string(decoded), ":")
	return username, password, ok
}

// constantTimeEquals compares hashed forms so the comparison time does not
// depend on either length or content.
func constantTimeEquals(a, b string) bool {
	ha := sha256.Sum256([]byte(a))
	hb := sha256.Sum256([]byte(b))
	return subtle.ConstantTimeCompare(ha[:], hb[:]) == 1
}
