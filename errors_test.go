package routekit_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/routekit"
)

func TestRouterErrorHandling(t *testing.T) {
	t.Parallel()

	t.Run("handler error yields 500 by default", func(t *testing.T) {
		t.Parallel()

		r := routekit.New()
		r.Get("/fail", func(ctx *routekit.Context, _ routekit.Next) (*routekit.Response, error) {
			return nil, errors.New("database down")
		})

		resp := process(r, http.MethodGet, "/fail")

		assert.Equal(t, http.StatusInternalServerError, resp.Status)
		assert.Equal(t, "500 Internal Server Error", string(resp.Body))
	})

	t.Run("custom error handler receives the error", func(t *testing.T) {
		t.Parallel()

		r := routekit.New()
		boom := errors.New("boom")
		var seen error
		r.OnError(func(ctx *routekit.Context, err error) *routekit.Response {
			seen = err
			resp, _ := ctx.TextWithStatus("custom error", http.StatusBadGateway)
			return resp
		})
		r.Get("/fail", func(ctx *routekit.Context, _ routekit.Next) (*routekit.Response, error) {
			return nil, boom
		})

		resp := process(r, http.MethodGet, "/fail")

		assert.ErrorIs(t, seen, boom)
		assert.Equal(t, http.StatusBadGateway, resp.Status)
		assert.Equal(t, "custom error", string(resp.Body))
	})

	t.Run("nil from custom error handler falls back to default", func(t *testing.T) {
		t.Parallel()

		r := routekit.New()
		r.OnError(func(ctx *routekit.Context, err error) *routekit.Response {
			return nil
		})
		r.Get("/fail", func(ctx *routekit.Context, _ routekit.Next) (*routekit.Response, error) {
			return nil, errors.New("boom")
		})

		resp := process(r, http.MethodGet, "/fail")

		assert.Equal(t, http.StatusInternalServerError, resp.Status)
	})

	t.Run("exhausted chain reports no response", func(t *testing.T) {
		t.Parallel()

		r := routekit.New()
		var seen error
		r.OnError(func(ctx *routekit.Context, err error) *routekit.Response {
			seen = err
			return nil
		})
		r.Get("/empty", func(ctx *routekit.Context, next routekit.Next) (*routekit.Response, error) {
			return next()
		})

		resp := process(r, http.MethodGet, "/empty")

		assert.ErrorIs(t, seen, routekit.ErrNoResponse)
		assert.Equal(t, http.StatusInternalServerError, resp.Status)
	})

	t.Run("missing route goes to the not found handler", func(t *testing.T) {
		t.Parallel()

		r := routekit.New()
		var errorHandlerRan bool
		r.OnError(func(ctx *routekit.Context, err error) *routekit.Response {
			errorHandlerRan = true
			return nil
		})
		r.OnNotFound(func(ctx *routekit.Context) *routekit.Response {
			resp, _ := ctx.TextWithStatus("nothing at "+ctx.Path(), http.StatusNotFound)
			return resp
		})

		resp := process(r, http.MethodGet, "/missing")

		assert.False(t, errorHandlerRan, "a miss is not an error")
		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "nothing at /missing", string(resp.Body))
	})

	t.Run("nil from custom not found handler falls back to default", func(t *testing.T) {
		t.Parallel()

		r := routekit.New()
		r.OnNotFound(func(ctx *routekit.Context) *routekit.Response {
			return nil
		})

		resp := process(r, http.MethodGet, "/missing")

		assert.Equal(t, http.StatusNotFound, resp.Status)
		assert.Equal(t, "404 Not Found", string(resp.Body))
	})

	t.Run("middleware error aborts the chain", func(t *testing.T) {
		t.Parallel()

		r := routekit.New()
		var handlerRan bool
		r.Use(func(ctx *routekit.Context, _ routekit.Next) (*routekit.Response, error) {
			return nil, errors.New("auth backend unavailable")
		})
		r.Get("/page", func(ctx *routekit.Context, _ routekit.Next) (*routekit.Response, error) {
			handlerRan = true
			return ctx.Text("ok")
		})

		resp := process(r, http.MethodGet, "/page")

		assert.False(t, handlerRan)
		assert.Equal(t, http.StatusInternalServerError, resp.Status)
	})
}

func TestRouterPanicRecovery(t *testing.T) {
	t.Parallel()

	t.Run("panicking handler becomes an error response", func(t *testing.T) {
		t.Parallel()

		r := routekit.New()
		boom := errors.New("boom")
		var seen error
		r.OnError(func(ctx *routekit.Context, err error) *routekit.Response {
			seen = err
			return nil
		})
		r.Get("/panic", func(ctx *routekit.Context, _ routekit.Next) (*routekit.Response, error) {
			panic(boom)
		})

		resp := process(r, http.MethodGet, "/panic")

		require.NotNil(t, resp)
		assert.ErrorIs(t, seen, boom)
		assert.Equal(t, http.StatusInternalServerError, resp.Status)
	})

	t.Run("non error panic values are wrapped", func(t *testing.T) {
		t.Parallel()

		r := routekit.New()
		var seen error
		r.OnError(func(ctx *routekit.Context, err error) *routekit.Response {
			seen = err
			return nil
		})
		r.Get("/panic", func(ctx *routekit.Context, _ routekit.Next) (*routekit.Response, error) {
			panic("string panic")
		})

		resp := process(r, http.MethodGet, "/panic")

		require.NotNil(t, resp)
		require.Error(t, seen)
		assert.Contains(t, seen.Error(), "string panic")
		assert.Equal(t, http.StatusInternalServerError, resp.Status)
	})

	t.Run("panicking middleware is recovered too", func(t *testing.T) {
		t.Parallel()

		r := routekit.New()
		r.Use(func(ctx *routekit.Context, _ routekit.Next) (*routekit.Response, error) {
			panic("middleware exploded")
		})
		r.Get("/page", textHandler("ok"))

		resp := process(r, http.MethodGet, "/page")

		require.NotNil(t, resp)
		assert.Equal(t, http.StatusInternalServerError, resp.Status)
	})
}

func TestRouterJSONEncodingFailure(t *testing.T) {
	t.Parallel()

	r := routekit.New()
	var seen error
	r.OnError(func(ctx *routekit.Context, err error) *routekit.Response {
		seen = err
		return nil
	})
	r.Get("/bad", func(ctx *routekit.Context, _ routekit.Next) (*routekit.Response, error) {
		return ctx.JSON(make(chan int))
	})

	resp := process(r, http.MethodGet, "/bad")

	require.Error(t, seen)
	assert.Equal(t, http.StatusInternalServerError, resp.Status)
}
