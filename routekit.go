// Package routekit provides a trie-based HTTP routing and dispatch engine.
// It matches an incoming method and path against a registered route set,
// extracts path captures, selects applicable middleware, and executes a
// composed handler chain to produce a response.
//
// The engine performs no socket I/O. A host adapter (see the httpserver
// package) translates transport-level requests into the Request abstraction
// and writes the resulting Response back out.
package routekit

import (
	"io"
	"net/http"
)

// Request is the normalized inbound request consumed by the engine.
// Host adapters implement it over their native request type.
type Request interface {
	// Method returns the HTTP method, e.g. "GET".
	Method() string
	// URL returns the full request URL string.
	URL() string
	// Header returns the first value of the named header, or "".
	Header(key string) string
	// Body returns the request body source. May be nil.
	Body() io.Reader
}

// Next invokes the remaining stages of the dispatch chain and reports the
// response produced downstream, if any. A stage may inspect or replace it.
type Next func() (*Response, error)

// Handler is one stage of a dispatch chain: a middleware or a route handler.
//
// A stage may produce a response, which terminates the chain; it may call
// next and optionally still return its own response to wrap or replace the
// downstream result; or it may return (nil, nil) without calling next, in
// which case the chain ends silently. A returned error aborts the chain and
// is delivered to the router's error handler.
type Handler func(ctx *Context, next Next) (*Response, error)

// ErrorHandler turns a request-time failure into a response.
// Returning nil falls back to the default error response.
type ErrorHandler func(ctx *Context, err error) *Response

// NotFoundHandler produces the response for requests no route matched.
// Returning nil falls back to the default not-found response.
type NotFoundHandler func(ctx *Context) *Response

// RouteInfo describes a registered route.
type RouteInfo struct {
	ID      int64
	Method  string
	Pattern string
}

// RouteFilter selects routes for bulk removal.
// Zero-valued fields match any route.
type RouteFilter struct {
	Method  string
	Pattern string
}

// MiddlewareFilter selects middleware entries for bulk removal.
// Zero-valued fields match any entry.
type MiddlewareFilter struct {
	Method  string
	Pattern string
}

// methodMap lists the HTTP methods accepted at registration time.
var methodMap = map[string]struct{}{
	http.MethodConnect: {},
	http.MethodDelete:  {},
	http.MethodGet:     {},
	http.MethodHead:    {},
	http.MethodOptions: {},
	http.MethodPatch:   {},
	http.MethodPost:    {},
	http.MethodPut:     {},
	http.MethodTrace:   {},
}
