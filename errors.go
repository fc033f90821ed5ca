package routekit

import (
	"errors"
	"fmt"
	"net/http"
)

// Request-time errors.
var (
	// ErrNotFound reports that no route matched the request, or that only
	// middleware ran and no route handlers existed for it.
	ErrNotFound = errors.New("no route matched the request")

	// ErrNoResponse reports that a route handler chain ran to completion
	// without any stage producing a response. This is a contract violation
	// by the handlers, never retried.
	ErrNoResponse = errors.New("handler chain completed without a response")
)

// Configuration errors. Registration-time misuse panics with one of these
// wrapped, so malformed patterns surface immediately rather than at request
// handling.
var (
	ErrInvalidMethod    = errors.New("invalid http method")
	ErrInvalidPattern   = errors.New("routing pattern must begin with '/'")
	ErrEmptyParamName   = errors.New("route param must have a name")
	ErrWildcardPosition = errors.New("wildcard '*' must be the final pattern segment")
	ErrNoHandlers       = errors.New("at least one handler is required")
	ErrNilHandler       = errors.New("handler cannot be nil")
	ErrNilRouter        = errors.New("cannot mount nil router")
	ErrNilScopeBuilder  = errors.New("scope builder cannot be nil")
)

// defaultErrorResponse maps an error to a minimal plain-text response.
func defaultErrorResponse(err error) *Response {
	switch {
	case errors.Is(err, ErrNotFound):
		return plainResponse(http.StatusNotFound, "404 Not Found")
	default:
		return plainResponse(http.StatusInternalServerError, "500 Internal Server Error")
	}
}

// defaultNotFoundResponse is returned when no not-found handler is registered.
func defaultNotFoundResponse() *Response {
	return plainResponse(http.StatusNotFound, "404 Not Found")
}

func plainResponse(status int, body string) *Response {
	h := make(http.Header, 1)
	h.Set("Content-Type", "text/plain; charset=utf-8")
	return &Response{Status: status, Header: h, Body: []byte(body)}
}

// toError converts a recovered panic value to an error.
func toError(v any) error {
	switch e := v.(type) {
	case error:
		return e
	case string:
		return errors.New(e)
	default:
		return fmt.Errorf("panic: %v", e)
	}
}
