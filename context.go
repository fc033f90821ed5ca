package routekit

import (
	"context"
	"encoding/json"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"
)

// Context is the per-request object handed to every stage of a dispatch
// chain. It carries the inbound request, the merged capture map, a mutable
// state bag for inter-stage communication, and an accumulating header set
// that the response builders write into. A Context is exclusively owned by
// one request and never shared.
//
// It implements context.Context by delegating to the context the request was
// processed under.
type Context struct {
	parent  context.Context
	req     Request
	params  map[string]string
	state   map[string]any
	header  http.Header
	url     parsedURL
	minimal bool

	queryOnce sync.Once
	query     url.Values
}

func newContext(parent context.Context, req Request, params map[string]string, u parsedURL) *Context {
	return &Context{
		parent: parent,
		req:    req,
		params: params,
		state:  make(map[string]any),
		header: make(http.Header),
		url:    u,
	}
}

// newMinimalContext builds the best-effort context delivered to the error
// handler when a fault occurred before full context construction completed.
// Captures are unavailable and the state bag is a no-op.
func newMinimalContext(parent context.Context, req Request) *Context {
	return &Context{
		parent:  parent,
		req:     req,
		header:  make(http.Header),
		minimal: true,
	}
}

// Deadline delegates to the processing context.
func (c *Context) Deadline() (time.Time, bool) { return c.parent.Deadline() }

// Done delegates to the processing context.
func (c *Context) Done() <-chan struct{} { return c.parent.Done() }

// Err delegates to the processing context.
func (c *Context) Err() error { return c.parent.Err() }

// Value delegates to the processing context.
func (c *Context) Value(key any) any { return c.parent.Value(key) }

// Request returns the inbound request.
func (c *Context) Request() Request { return c.req }

// Path returns the parsed request pathname.
func (c *Context) Path() string { return c.url.pathname }

// Param returns the merged capture value for the name, or "".
func (c *Context) Param(name string) string {
	if c.params == nil {
		return ""
	}
	return c.params[name]
}

// Params returns the merged capture map for this request.
func (c *Context) Params() map[string]string { return c.params }

// Set stores a value in the request's state bag. On a minimal fault context
// it is a no-op.
func (c *Context) Set(key string, value any) {
	if c.minimal {
		return
	}
	c.state[key] = value
}

// Get returns a value from the request's state bag, or nil.
func (c *Context) Get(key string) any {
	if c.state == nil {
		return nil
	}
	return c.state[key]
}

// Header returns the accumulating response header set. Values set here are
// carried into every response built through the context.
func (c *Context) Header() http.Header { return c.header }

// Query returns the first query parameter value for the key, or "".
func (c *Context) Query(key string) string {
	return c.QueryValues().Get(key)
}

// QueryValues returns the parsed query parameters. Parsing is lazy and
// memoized for the lifetime of the context.
func (c *Context) QueryValues() url.Values {
	c.queryOnce.Do(func() {
		if c.url.rawQuery == "" {
			c.query = url.Values{}
			return
		}
		q, err := url.ParseQuery(c.url.rawQuery)
		if err != nil {
			q = url.Values{}
		}
		c.query = q
	})
	return c.query
}

// ParseBody reads and decodes the request body according to its
// content type. Form-encoded bodies decode to a flat key/value map, JSON
// bodies decode as JSON objects, and anything else yields an empty map
// rather than an error.
func (c *Context) ParseBody() (map[string]any, error) {
	body := c.req.Body()
	if body == nil {
		return map[string]any{}, nil
	}

	mediaType := c.req.Header("Content-Type")
	if mediaType != "" {
		if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
			mediaType = mt
		}
	}

	switch {
	case mediaType == "application/x-www-form-urlencoded":
		raw, err := io.ReadAll(body)
		if err != nil {
			return nil, err
		}
		values, err := url.ParseQuery(string(raw))
		if err != nil {
			return nil, err
		}
		out := make(map[string]any, len(values))
		for key := range values {
			out[key] = values.Get(key)
		}
		return out, nil

	case mediaType == "application/json" || strings.HasSuffix(mediaType, "+json"):
		out := make(map[string]any)
		if err := json.NewDecoder(body).Decode(&out); err != nil {
			if err == io.EOF {
				return map[string]any{}, nil
			}
			return nil, err
		}
		return out, nil

	default:
		return map[string]any{}, nil
	}
}

// Text builds a text/plain 200 response.
func (c *Context) Text(body string, headers ...http.Header) (*Response, error) {
	return c.TextWithStatus(body, http.StatusOK, headers...)
}

// TextWithStatus builds a text/plain response with the given status.
// A zero status defaults to 200.
func (c *Context) TextWithStatus(body string, status int, headers ...http.Header) (*Response, error) {
	return c.build(status, "text/plain; charset=utf-8", []byte(body), headers), nil
}

// HTML builds a text/html 200 response.
func (c *Context) HTML(body string, headers ...http.Header) (*Response, error) {
	return c.HTMLWithStatus(body, http.StatusOK, headers...)
}

// HTMLWithStatus builds a text/html response with the given status.
func (c *Context) HTMLWithStatus(body string, status int, headers ...http.Header) (*Response, error) {
	return c.build(status, "text/html; charset=utf-8", []byte(body), headers), nil
}

// JSON builds an application/json 200 response from the encoded value.
func (c *Context) JSON(v any, headers ...http.Header) (*Response, error) {
	return c.JSONWithStatus(v, http.StatusOK, headers...)
}

// JSONWithStatus builds an application/json response with the given status.
// Encoding failures are returned to the caller and flow to the error
// handler when propagated from a stage.
func (c *Context) JSONWithStatus(v any, status int, headers ...http.Header) (*Response, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return c.build(status, "application/json; charset=utf-8", body, headers), nil
}

// Bytes builds a response with an explicit content type.
func (c *Context) Bytes(body []byte, contentType string, headers ...http.Header) (*Response, error) {
	return c.BytesWithStatus(body, contentType, http.StatusOK, headers...)
}

// BytesWithStatus builds a response with an explicit content type and status.
func (c *Context) BytesWithStatus(body []byte, contentType string, status int, headers ...http.Header) (*Response, error) {
	return c.build(status, contentType, body, headers), nil
}

// NoContent builds an empty 204 response carrying the accumulated headers.
func (c *Context) NoContent(headers ...http.Header) (*Response, error) {
	return c.build(http.StatusNoContent, "", nil, headers), nil
}

// Redirect builds a 302 response with the Location header set.
func (c *Context) Redirect(location string, headers ...http.Header) (*Response, error) {
	return c.RedirectWithStatus(location, http.StatusFound, headers...)
}

// RedirectWithStatus builds a redirect with the given status.
// A zero status defaults to 302.
func (c *Context) RedirectWithStatus(location string, status int, headers ...http.Header) (*Response, error) {
	if status == 0 {
		status = http.StatusFound
	}
	resp := c.build(status, "", nil, headers)
	resp.Header.Set("Location", location)
	return resp, nil
}

// build assembles a response: the accumulated header set first, the builder
// content type on top, then any explicitly passed headers over both.
func (c *Context) build(status int, contentType string, body []byte, headers []http.Header) *Response {
	h := cloneHeader(c.header)
	if contentType != "" {
		h.Set("Content-Type", contentType)
	}
	for _, extra := range headers {
		for key, values := range extra {
			h[http.CanonicalHeaderKey(key)] = values
		}
	}
	if status == 0 {
		status = http.StatusOK
	}
	return &Response{Status: status, Header: h, Body: body}
}
