// Package connection talks to a running tw5keep-server over HTTP.
package connection
