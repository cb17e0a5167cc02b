// Package httpserver provides the HTTP server for tw5keep.
//
// It uses the standard library net/http. NewRouter wraps the method
// dispatcher from the handler package in the middleware chain; no routes
// are added, so the dispatcher sees every path.
package httpserver
