package routekit

import "net/http"

// Response is the normalized outbound response produced by a dispatch chain.
// Host adapters translate it back to their native response type.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// NewResponse creates a response with the given status, headers and body.
// A zero status defaults to 200 OK; a nil header is replaced by an empty one.
func NewResponse(status int, header http.Header, body []byte) *Response {
	if status == 0 {
		status = http.StatusOK
	}
	if header == nil {
		header = make(http.Header)
	}
	return &Response{Status: status, Header: header, Body: body}
}

// WithoutBody returns a copy of the response with identical status and
// headers and an empty body. Used for HEAD handling.
func (r *Response) WithoutBody() *Response {
	return &Response{Status: r.Status, Header: r.Header, Body: nil}
}

func cloneHeader(h http.Header) http.Header {
	out := make(http.Header, len(h))
	for k, vv := range h {
		cp := make([]string, len(vv))
		copy(cp, vv)
		out[k] = cp
	}
	return out
}
