package routekit

// Option configures a Router during creation.
type Option func(*Router)

// WithErrorHandler sets the error handler for the router.
func WithErrorHandler(h ErrorHandler) Option {
	return func(r *Router) {
		if h != nil {
			r.errorHandler = h
		}
	}
}

// WithNotFoundHandler sets the not-found handler for the router.
func WithNotFoundHandler(h NotFoundHandler) Option {
	return func(r *Router) {
		if h != nil {
			r.notFoundHandler = h
		}
	}
}

// WithSegmentCacheSize bounds the path segment cache. Once full, new paths
// are simply not cached.
func WithSegmentCacheSize(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.segCache = newGenMap[[]string](n)
		}
	}
}

// WithURLCacheSize bounds the URL parse cache. At capacity the oldest
// inserted entry is evicted.
func WithURLCacheSize(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.urlCache = newGenList[parsedURL](n)
		}
	}
}

// WithMatchCacheSize bounds the route-match cache.
func WithMatchCacheSize(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.matchCache = newGenMap[matchEntry](n)
		}
	}
}
