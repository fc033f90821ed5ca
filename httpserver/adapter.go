package httpserver

import (
	"io"
	"net/http"

	"github.com/dmitrymomot/routekit"
)

// request adapts *http.Request to the engine's Request abstraction.
type request struct {
	r *http.Request
}

func (r request) Method() string { return r.r.Method }

func (r request) URL() string { return r.r.URL.RequestURI() }

func (r request) Header(key string) string { return r.r.Header.Get(key) }

func (r request) Body() io.Reader {
	if r.r.Body == nil || r.r.Body == http.NoBody {
		return nil
	}
	return r.r.Body
}

// NewRequest wraps an *http.Request for the engine.
func NewRequest(r *http.Request) routekit.Request {
	return request{r: r}
}

// Handler exposes a routekit router as an http.Handler. Each request is
// processed under its own context; the produced response's status, headers
// and body are written back out.
func Handler(router *routekit.Router) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := router.Process(r.Context(), NewRequest(r))

		header := w.Header()
		for key, values := range resp.Header {
			header[key] = values
		}
		w.WriteHeader(resp.Status)
		if len(resp.Body) > 0 {
			_, _ = w.Write(resp.Body)
		}
	})
}
