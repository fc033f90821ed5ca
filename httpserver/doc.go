// Package httpserver binds the routekit engine to net/http. It translates
// *http.Request into the engine's Request abstraction, writes the engine's
// Response back to the wire, and provides a graceful Server with
// environment-driven configuration.
package httpserver
