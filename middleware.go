package routekit

import "strings"

// middlewareEntry is one registered middleware: an ordered registry entry
// with an optional method filter, an optional compiled matcher, and a
// precomputed static prefix for cheap rejection before full matching.
type middlewareEntry struct {
	id           int64
	method       string // "" matches any method
	pattern      string // raw pattern text, "" for global entries
	staticPrefix string // "" for global entries
	matcher      matcher
	handler      Handler
}

// matchedMiddleware pairs an entry that matched the request with the
// captures its own pattern produced.
type matchedMiddleware struct {
	entry    *middlewareEntry
	captures map[string]string
}

// middlewareFor returns the registry entries applicable to the method, in
// registration order. The filtered list is cached per method, but only for
// known HTTP methods: the method token is client-supplied, and arbitrary
// tokens must not grow the cache.
func (r *Router) middlewareFor(gen uint64, method string) []*middlewareEntry {
	if cached, ok := r.mwCache.get(gen, method); ok {
		return cached
	}
	all := r.middlewares
	filtered := make([]*middlewareEntry, 0, len(all))
	for _, e := range all {
		if e.method == "" || e.method == method {
			filtered = append(filtered, e)
		}
	}
	if _, ok := methodMap[method]; ok {
		r.mwCache.put(gen, method, filtered)
	}
	return filtered
}

// selectMiddleware runs the candidate entries against the request path.
// Entries declaring a static prefix the path does not start with are skipped
// without evaluating their matcher.
func selectMiddleware(candidates []*middlewareEntry, path string, segs []string) []matchedMiddleware {
	var matched []matchedMiddleware
	for _, e := range candidates {
		if e.staticPrefix != "" && !strings.HasPrefix(path, e.staticPrefix) {
			continue
		}
		if e.matcher == nil {
			matched = append(matched, matchedMiddleware{entry: e})
			continue
		}
		captures, ok := e.matcher.match(segs)
		if !ok {
			continue
		}
		matched = append(matched, matchedMiddleware{entry: e, captures: captures})
	}
	return matched
}
