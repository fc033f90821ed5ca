package middleware_test

import (
	"net/http"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/routekit"
	"github.com/dmitrymomot/routekit/middleware"
)

func TestIPFilter(t *testing.T) {
	t.Parallel()

	fromIP := func(ip string) testRequest {
		return testRequest{
			method: http.MethodGet,
			url:    "/test",
			header: map[string]string{"X-Real-IP": ip},
		}
	}

	t.Run("empty lists allow everyone", func(t *testing.T) {
		t.Parallel()

		r := newRouter(middleware.IPFilter(nil, nil), nil)

		assert.Equal(t, http.StatusOK, processReq(r, fromIP("203.0.113.10")).Status)
	})

	t.Run("allow list admits members only", func(t *testing.T) {
		t.Parallel()

		allow := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
		r := newRouter(middleware.IPFilter(allow, nil), nil)

		assert.Equal(t, http.StatusOK, processReq(r, fromIP("10.1.2.3")).Status)
		assert.Equal(t, http.StatusForbidden, processReq(r, fromIP("192.168.1.1")).Status)
	})

	t.Run("deny list rejects members", func(t *testing.T) {
		t.Parallel()

		deny := []netip.Prefix{netip.MustParsePrefix("203.0.113.0/24")}
		r := newRouter(middleware.IPFilter(nil, deny), nil)

		assert.Equal(t, http.StatusForbidden, processReq(r, fromIP("203.0.113.99")).Status)
		assert.Equal(t, http.StatusOK, processReq(r, fromIP("198.51.100.1")).Status)
	})

	t.Run("deny wins over allow", func(t *testing.T) {
		t.Parallel()

		allow := []netip.Prefix{netip.MustParsePrefix("10.0.0.0/8")}
		deny := []netip.Prefix{netip.MustParsePrefix("10.9.0.0/16")}
		r := newRouter(middleware.IPFilter(allow, deny), nil)

		assert.Equal(t, http.StatusForbidden, processReq(r, fromIP("10.9.1.1")).Status)
		assert.Equal(t, http.StatusOK, processReq(r, fromIP("10.1.1.1")).Status)
	})

	t.Run("unparsable address is rejected by default", func(t *testing.T) {
		t.Parallel()

		r := newRouter(middleware.IPFilter(nil, nil), nil)

		assert.Equal(t, http.StatusForbidden, processReq(r, fromIP("not-an-ip")).Status)
	})

	t.Run("trust unknown admits unparsable addresses", func(t *testing.T) {
		t.Parallel()

		r := newRouter(middleware.IPFilterWithConfig(middleware.IPFilterConfig{
			TrustUnknown: true,
		}), nil)

		assert.Equal(t, http.StatusOK, processReq(r, fromIP("")).Status)
	})

	t.Run("ipv6 prefixes", func(t *testing.T) {
		t.Parallel()

		allow := []netip.Prefix{netip.MustParsePrefix("2001:db8::/32")}
		r := newRouter(middleware.IPFilter(allow, nil), nil)

		assert.Equal(t, http.StatusOK, processReq(r, fromIP("2001:db8::1")).Status)
		assert.Equal(t, http.StatusForbidden, processReq(r, fromIP("2001:dead::1")).Status)
	})

	t.Run("skip bypasses filtering", func(t *testing.T) {
		t.Parallel()

		deny := []netip.Prefix{netip.MustParsePrefix("0.0.0.0/0")}
		r := newRouter(middleware.IPFilterWithConfig(middleware.IPFilterConfig{
			Deny: deny,
			Skip: func(ctx *routekit.Context) bool { return true },
		}), nil)

		assert.Equal(t, http.StatusOK, processReq(r, fromIP("1.2.3.4")).Status)
	})
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	t.Run("first forwarded hop wins", func(t *testing.T) {
		t.Parallel()

		var got string
		r := newRouter(func(ctx *routekit.Context, next routekit.Next) (*routekit.Response, error) {
			got = middleware.ClientIP(ctx)
			return next()
		}, nil)

		processReq(r, testRequest{
			method: http.MethodGet,
			url:    "/test",
			header: map[string]string{
				"X-Forwarded-For": " 203.0.113.7 , 10.0.0.1, 10.0.0.2",
				"X-Real-IP":       "198.51.100.1",
			},
		})

		assert.Equal(t, "203.0.113.7", got)
	})

	t.Run("falls back to real ip", func(t *testing.T) {
		t.Parallel()

		var got string
		r := newRouter(func(ctx *routekit.Context, next routekit.Next) (*routekit.Response, error) {
			got = middleware.ClientIP(ctx)
			return next()
		}, nil)

		processReq(r, testRequest{
			method: http.MethodGet,
			url:    "/test",
			header: map[string]string{"X-Real-IP": "198.51.100.1"},
		})

		assert.Equal(t, "198.51.100.1", got)
	})
}
