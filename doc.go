// Package routekit implements a segment-trie router and middleware dispatch
// engine for HTTP-shaped request handling.
//
// # Routing
//
// Patterns are '/'-delimited. A segment starting with ':' captures one
// non-empty, percent-decoded path segment under its name; a final '*'
// segment captures the raw remainder of the path under the key "*"; any
// other segment is a literal compared verbatim:
//
//	r := routekit.New()
//	r.Get("/users/:id", func(ctx *routekit.Context, next routekit.Next) (*routekit.Response, error) {
//		return ctx.Text("user " + ctx.Param("id"))
//	})
//	r.Get("/files/*", serveFile)
//
// Each HTTP method owns its own trie; literal branches win over param
// branches, which win over the wildcard branch.
//
// # Middleware
//
// Middleware are ordinary handlers registered globally, per path, or per
// method and path. A stage receives the shared context and a continuation:
//
//	r.Use(func(ctx *routekit.Context, next routekit.Next) (*routekit.Response, error) {
//		ctx.Header().Set("X-Frame-Options", "DENY")
//		return next()
//	})
//
// Returning a response terminates the chain; calling next and returning the
// result wraps the downstream stages; returning (nil, nil) ends the chain
// silently, which yields a not-found or no-response outcome depending on
// whether route handlers were part of the chain.
//
// # Lifecycle
//
// Routes and middleware are expected to be registered during a setup phase.
// Any mutation (add, remove, mount, clear) atomically invalidates the
// request caches via a generation counter. The engine itself performs no
// I/O; see the httpserver package for the net/http adapter.
package routekit
