package routekit

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"sync/atomic"
)

// Default capacity bounds for the per-router request caches.
const (
	defaultSegmentCacheSize = 1024
	defaultURLCacheSize     = 512
	defaultMatchCacheSize   = 1024
)

// route is one registered route: unique monotonic id, method, original
// pattern text, and the ordered handler list.
type route struct {
	id       int64
	method   string
	pattern  string
	handlers []Handler
}

// Router is the trie-based routing and dispatch engine. Register routes and
// middleware during a setup phase, then serve a high volume of requests
// through Process.
//
// Registration methods panic on malformed input (configuration faults
// surface immediately, not at request time). Mutating routes or middleware
// while requests are in flight is the caller's responsibility to avoid; the
// request caches themselves are safe for concurrent use.
type Router struct {
	mu          sync.Mutex
	nextID      atomic.Int64
	gen         atomic.Uint64
	routes      []*route
	trees       map[string]*node
	middlewares []*middlewareEntry

	errorHandler    ErrorHandler
	notFoundHandler NotFoundHandler

	patterns   *genMap[*pattern]
	segCache   *genMap[[]string]
	urlCache   *genList[parsedURL]
	matchCache *genMap[matchEntry]
	mwCache    *genMap[[]*middlewareEntry]
}

// matchEntry is a memoized route lookup: the landed endpoint (nil for "no
// route") and the captures its match produced. Captures are cloned on every
// cache hit; the stored map is never handed to a request.
type matchEntry struct {
	ep       *endpoint
	captures map[string]string
}

// New creates an empty router.
func New(opts ...Option) *Router {
	r := &Router{
		trees:      make(map[string]*node),
		patterns:   newGenMap[*pattern](0),
		segCache:   newGenMap[[]string](defaultSegmentCacheSize),
		urlCache:   newGenList[parsedURL](defaultURLCacheSize),
		matchCache: newGenMap[matchEntry](defaultMatchCacheSize),
		mwCache:    newGenMap[[]*middlewareEntry](0),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// invalidate bumps the generation counter, atomically retiring every request
// cache. Called on any route or middleware mutation.
func (r *Router) invalidate() {
	r.gen.Add(1)
}

func (r *Router) generation() uint64 {
	return r.gen.Load()
}

func (r *Router) issueID() int64 {
	return r.nextID.Add(1)
}

// AddRoute registers handlers for the method and pattern and returns the
// route id. Registering the same method and pattern again replaces the
// earlier handler chain.
//
// Adding any non-OPTIONS route auto-registers a default OPTIONS route at the
// same exact pattern if none exists yet, answering preflight requests with
// an empty 204. HEAD routes have every handler wrapped so a produced
// response keeps its status and headers but loses its body.
func (r *Router) AddRoute(method, pattern string, handlers ...Handler) int64 {
	method = strings.ToUpper(method)
	if _, ok := methodMap[method]; !ok {
		panic(fmt.Errorf("%w: %q", ErrInvalidMethod, method))
	}
	if len(handlers) == 0 {
		panic(fmt.Errorf("%w: %s %s", ErrNoHandlers, method, pattern))
	}
	for _, h := range handlers {
		if h == nil {
			panic(fmt.Errorf("%w: %s %s", ErrNilHandler, method, pattern))
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	return r.addRouteLocked(method, pattern, handlers)
}

func (r *Router) addRouteLocked(method, pattern string, handlers []Handler) int64 {
	p := r.compile(pattern)

	if method == http.MethodHead {
		wrapped := make([]Handler, len(handlers))
		for i, h := range handlers {
			wrapped[i] = stripBody(h)
		}
		handlers = wrapped
	}

	rt := &route{
		id:       r.issueID(),
		method:   method,
		pattern:  pattern,
		handlers: handlers,
	}
	r.routes = append(r.routes, rt)
	r.insertRoute(rt, p)

	if method != http.MethodOptions && !r.hasRouteLocked(http.MethodOptions, pattern) {
		r.addRouteLocked(http.MethodOptions, pattern, []Handler{defaultOptionsHandler})
	}

	r.invalidate()
	return rt.id
}

func (r *Router) insertRoute(rt *route, p *pattern) {
	root, ok := r.trees[rt.method]
	if !ok {
		root = &node{}
		r.trees[rt.method] = root
	}
	root.insert(p.segs, &endpoint{
		routeID:  rt.id,
		pattern:  rt.pattern,
		handlers: rt.handlers,
	})
}

func (r *Router) hasRouteLocked(method, pattern string) bool {
	for _, rt := range r.routes {
		if rt.method == method && rt.pattern == pattern {
			return true
		}
	}
	return false
}

// Get registers handlers for GET requests.
func (r *Router) Get(pattern string, handlers ...Handler) int64 {
	return r.AddRoute(http.MethodGet, pattern, handlers...)
}

// Post registers handlers for POST requests.
func (r *Router) Post(pattern string, handlers ...Handler) int64 {
	return r.AddRoute(http.MethodPost, pattern, handlers...)
}

// Put registers handlers for PUT requests.
func (r *Router) Put(pattern string, handlers ...Handler) int64 {
	return r.AddRoute(http.MethodPut, pattern, handlers...)
}

// Delete registers handlers for DELETE requests.
func (r *Router) Delete(pattern string, handlers ...Handler) int64 {
	return r.AddRoute(http.MethodDelete, pattern, handlers...)
}

// Patch registers handlers for PATCH requests.
func (r *Router) Patch(pattern string, handlers ...Handler) int64 {
	return r.AddRoute(http.MethodPatch, pattern, handlers...)
}

// Head registers handlers for HEAD requests.
func (r *Router) Head(pattern string, handlers ...Handler) int64 {
	return r.AddRoute(http.MethodHead, pattern, handlers...)
}

// Options registers handlers for OPTIONS requests.
func (r *Router) Options(pattern string, handlers ...Handler) int64 {
	return r.AddRoute(http.MethodOptions, pattern, handlers...)
}

// RemoveRoute removes the route with the given id. The affected method's
// trie is rebuilt from scratch by re-inserting the remaining routes.
func (r *Router) RemoveRoute(id int64) bool {
	return r.RemoveRoutesBy(RouteFilter{}, id) > 0
}

// RemoveRoutesBy removes every route matching the filter and reports how
// many were removed. Zero-valued filter fields match any route; explicit ids
// narrow the filter further.
func (r *Router) RemoveRoutesBy(f RouteFilter, ids ...int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	idSet := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	kept := r.routes[:0]
	affected := make(map[string]struct{})
	removed := 0
	for _, rt := range r.routes {
		if routeMatchesFilter(rt, f, idSet) {
			affected[rt.method] = struct{}{}
			removed++
			continue
		}
		kept = append(kept, rt)
	}
	if removed == 0 {
		return 0
	}
	r.routes = kept

	for method := range affected {
		r.rebuildTree(method)
	}
	r.invalidate()
	return removed
}

func routeMatchesFilter(rt *route, f RouteFilter, ids map[int64]struct{}) bool {
	if len(ids) > 0 {
		if _, ok := ids[rt.id]; !ok {
			return false
		}
	}
	if f.Method != "" && rt.method != strings.ToUpper(f.Method) {
		return false
	}
	if f.Pattern != "" && rt.pattern != f.Pattern {
		return false
	}
	return true
}

// rebuildTree reconstructs one method's trie from the surviving route list.
// There is no incremental deletion; re-inserting in registration order
// preserves last-registration-wins for duplicate patterns.
func (r *Router) rebuildTree(method string) {
	r.trees[method] = &node{}
	for _, rt := range r.routes {
		if rt.method == method {
			r.insertRoute(rt, r.compile(rt.pattern))
		}
	}
}

// Use registers a global middleware that runs for every request.
// It returns the middleware id.
func (r *Router) Use(h Handler) int64 {
	return r.addMiddleware("", "", h)
}

// UseOn registers a path-scoped middleware that runs for any method on
// paths matching the pattern.
func (r *Router) UseOn(pattern string, h Handler) int64 {
	return r.addMiddleware("", pattern, h)
}

// UseMethod registers a middleware scoped to one method and pattern.
func (r *Router) UseMethod(method, pattern string, h Handler) int64 {
	method = strings.ToUpper(method)
	if _, ok := methodMap[method]; !ok {
		panic(fmt.Errorf("%w: %q", ErrInvalidMethod, method))
	}
	return r.addMiddleware(method, pattern, h)
}

func (r *Router) addMiddleware(method, pattern string, h Handler) int64 {
	if h == nil {
		panic(fmt.Errorf("%w: middleware %s %s", ErrNilHandler, method, pattern))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e := &middlewareEntry{
		id:      r.issueID(),
		method:  method,
		pattern: pattern,
		handler: h,
	}
	if pattern != "" {
		p := r.compile(pattern)
		e.matcher = p
		e.staticPrefix = p.staticPrefix
	}
	r.middlewares = append(r.middlewares, e)
	r.invalidate()
	return e.id
}

// RemoveMiddleware removes the middleware with the given id.
func (r *Router) RemoveMiddleware(id int64) bool {
	return r.RemoveMiddlewareBy(MiddlewareFilter{}, id) > 0
}

// RemoveMiddlewareBy removes every middleware entry matching the filter and
// reports how many were removed.
func (r *Router) RemoveMiddlewareBy(f MiddlewareFilter, ids ...int64) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	idSet := make(map[int64]struct{}, len(ids))
	for _, id := range ids {
		idSet[id] = struct{}{}
	}

	kept := r.middlewares[:0]
	removed := 0
	for _, e := range r.middlewares {
		if middlewareMatchesFilter(e, f, idSet) {
			removed++
			continue
		}
		kept = append(kept, e)
	}
	if removed == 0 {
		return 0
	}
	r.middlewares = kept
	r.invalidate()
	return removed
}

func middlewareMatchesFilter(e *middlewareEntry, f MiddlewareFilter, ids map[int64]struct{}) bool {
	if len(ids) > 0 {
		if _, ok := ids[e.id]; !ok {
			return false
		}
	}
	if f.Method != "" && e.method != strings.ToUpper(f.Method) {
		return false
	}
	if f.Pattern != "" && e.pattern != f.Pattern {
		return false
	}
	return true
}

// OnError registers the handler invoked when a stage returns an error or
// panics. Returning nil from it falls back to the default error response.
func (r *Router) OnError(h ErrorHandler) {
	r.errorHandler = h
}

// OnNotFound registers the handler invoked when no route matched and no
// stage produced a response.
func (r *Router) OnNotFound(h NotFoundHandler) {
	r.notFoundHandler = h
}

// Clear removes all routes, middleware, tries and cached state atomically.
func (r *Router) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = nil
	r.middlewares = nil
	r.trees = make(map[string]*node)
	r.invalidate()
}

// Routes returns a snapshot of the registered routes.
func (r *Router) Routes() []RouteInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]RouteInfo, len(r.routes))
	for i, rt := range r.routes {
		out[i] = RouteInfo{ID: rt.id, Method: rt.method, Pattern: rt.pattern}
	}
	return out
}

// Scope instantiates a fresh router, lets the builder populate it, and
// mounts the result under the prefix. Later mutation of the outer router
// does not retroactively change what was copied in.
func (r *Router) Scope(prefix string, builder func(*Router)) {
	if builder == nil {
		panic(fmt.Errorf("%w: scope %q", ErrNilScopeBuilder, prefix))
	}
	sub := New()
	builder(sub)
	r.Mount(prefix, sub)
}

// Mount copies the sub-router's middleware and routes into this router under
// the prefix. Middleware matchers are wrapped to require the prefix segments
// before re-invoking the original matcher against the remaining suffix;
// routes go through the normal registration path, so ids are re-issued,
// OPTIONS auto-registration applies, and caches invalidate. Mounting is a
// one-time copy: later mutation of the sub-router does not propagate.
func (r *Router) Mount(prefix string, sub *Router) {
	if sub == nil {
		panic(fmt.Errorf("%w: mount %q", ErrNilRouter, prefix))
	}

	prefixSegs := splitSegments(prefix)
	normalized := "/" + strings.Join(prefixSegs, "/")

	r.mu.Lock()
	for _, e := range sub.middlewares {
		wrapped := &middlewareEntry{
			id:           r.issueID(),
			method:       e.method,
			pattern:      joinPatterns(normalized, e.pattern),
			staticPrefix: joinPatterns(normalized, e.staticPrefix),
			matcher:      &prefixMatcher{prefix: prefixSegs, inner: e.matcher},
			handler:      e.handler,
		}
		r.middlewares = append(r.middlewares, wrapped)
	}
	r.invalidate()
	r.mu.Unlock()

	for _, rt := range sub.routes {
		handlers := make([]Handler, len(rt.handlers))
		copy(handlers, rt.handlers)
		r.mu.Lock()
		r.addRouteLocked(rt.method, joinPatterns(normalized, rt.pattern), handlers)
		r.mu.Unlock()
	}
}

// joinPatterns joins a normalized prefix and a pattern without doubling
// separators. An empty pattern yields the prefix itself.
func joinPatterns(prefix, pattern string) string {
	prefix = strings.TrimSuffix(prefix, "/")
	if pattern == "" || pattern == "/" {
		if prefix == "" {
			return "/"
		}
		return prefix
	}
	if !strings.HasPrefix(pattern, "/") {
		pattern = "/" + pattern
	}
	return prefix + pattern
}

// stripBody wraps a HEAD route handler: run it, and replace any produced
// response with one of identical status and headers and an empty body.
func stripBody(h Handler) Handler {
	return func(ctx *Context, next Next) (*Response, error) {
		resp, err := h(ctx, next)
		if err != nil || resp == nil {
			return resp, err
		}
		return resp.WithoutBody(), nil
	}
}

// defaultOptionsHandler answers auto-registered OPTIONS routes with an
// empty 204 (CORS preflight convenience).
func defaultOptionsHandler(ctx *Context, _ Next) (*Response, error) {
	return ctx.NoContent()
}

// matchRoute looks up the method and path in the trie, memoizing the result
// (including misses) in the route-match cache. Returned capture maps are
// fresh clones safe for per-request mutation.
func (r *Router) matchRoute(gen uint64, method, path string, segs []string) (*endpoint, map[string]string) {
	key := method + " " + path
	if e, ok := r.matchCache.get(gen, key); ok {
		return e.ep, cloneCaptures(e.captures)
	}

	var ep *endpoint
	var captures map[string]string
	if root, ok := r.trees[method]; ok {
		ep, captures = root.match(segs)
	}
	r.matchCache.put(gen, key, matchEntry{ep: ep, captures: captures})
	return ep, cloneCaptures(captures)
}

func cloneCaptures(m map[string]string) map[string]string {
	if m == nil {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Process is the single request-handling entry point. It parses the URL,
// matches the route trie, selects applicable middleware, builds the merged
// capture map and per-request context, executes the dispatch chain, and
// classifies the outcome. It always returns a response; faults are routed
// through the registered error handler.
func (r *Router) Process(ctx context.Context, req Request) (resp *Response) {
	var c *Context
	defer func() {
		if p := recover(); p != nil {
			if c == nil {
				// Fault before context construction completed: deliver a
				// best-effort minimal context to the error handler.
				c = newMinimalContext(ctx, req)
			}
			resp = r.handleError(c, toError(p))
		}
	}()

	gen := r.generation()
	u := r.parseURL(gen, req.URL())
	segs := r.segments(gen, u.pathname)
	method := strings.ToUpper(req.Method())

	ep, captures := r.matchRoute(gen, method, u.pathname, segs)

	candidates := r.middlewareFor(gen, method)
	matched := selectMiddleware(candidates, u.pathname, segs)

	// Overlay middleware captures in registration order: a later entry's
	// capture wins over an earlier one and over the route's own.
	for _, m := range matched {
		for k, v := range m.captures {
			if captures == nil {
				captures = make(map[string]string, len(m.captures))
			}
			captures[k] = v
		}
	}

	c = newContext(ctx, req, captures, u)

	// Zero-middleware, zero-capture, single-handler requests bypass the
	// generic chain machinery. Results are identical to the general path.
	if ep != nil && len(matched) == 0 && len(captures) == 0 && len(ep.handlers) == 1 {
		out, err := ep.handlers[0](c, noopNext)
		switch {
		case err != nil:
			return r.handleError(c, err)
		case out != nil:
			return out
		default:
			return r.handleError(c, ErrNoResponse)
		}
	}

	stages := make([]Handler, 0, len(matched)+len(epHandlers(ep)))
	for _, m := range matched {
		stages = append(stages, m.entry.handler)
	}
	stages = append(stages, epHandlers(ep)...)

	exec := &execution{ctx: c, stages: stages}
	if err := exec.run(); err != nil {
		return r.handleError(c, err)
	}

	switch {
	case exec.response != nil:
		return exec.response
	case ep == nil:
		// No terminal route handlers ran: not found, even when middleware
		// executed.
		return r.handleNotFound(c)
	default:
		return r.handleError(c, ErrNoResponse)
	}
}

func epHandlers(ep *endpoint) []Handler {
	if ep == nil {
		return nil
	}
	return ep.handlers
}

func (r *Router) handleError(c *Context, err error) *Response {
	if r.errorHandler != nil {
		if resp := r.errorHandler(c, err); resp != nil {
			return resp
		}
	}
	return defaultErrorResponse(err)
}

func (r *Router) handleNotFound(c *Context) *Response {
	if r.notFoundHandler != nil {
		if resp := r.notFoundHandler(c); resp != nil {
			return resp
		}
	}
	return defaultNotFoundResponse()
}
