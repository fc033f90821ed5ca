// Package middleware provides ready-made stages for the routekit dispatch
// chain: request identification, structured logging, basic authentication,
// IP filtering, rate limiting, and response caching.
//
// Every middleware is an ordinary routekit.Handler and follows the same
// shape: a zero-configuration constructor plus a WithConfig variant taking a
// Config struct with an optional Skip predicate.
package middleware
