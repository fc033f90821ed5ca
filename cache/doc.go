// Package cache provides a generic key-value cache with TTL support and
// interchangeable in-memory and Redis backends. The response-cache
// middleware stores rendered responses through it, but nothing in the
// package is specific to routing.
package cache
