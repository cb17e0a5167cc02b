// Package handler implements the wiki's HTTP surface.
//
// Handler dispatches on the request method alone, the path is ignored:
//
//	GET      serve the document
//	PUT      snapshot the body, then promote it over the document
//	OPTIONS  advertise PUT support ("dav: tw5/put")
//	other    405 Method Not Allowed
//
// Every response is fully buffered before the status line is written.
package handler
