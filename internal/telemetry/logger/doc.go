// Package logger provides structured logging for tw5keep.
//
// It wraps log/slog with a small Logger interface, a process-wide level
// that can change at runtime (config reload) and a handler that attaches
// the request ID to every record logged with a request context.
package logger
