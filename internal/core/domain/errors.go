// Package domain defines the core domain types for tw5keep.
package domain

import (
	"errors"
	"fmt"
)

// DomainError represents a domain error with a structured error code.
//
// Error() renders the code, the message and, when present, the details
// and the underlying cause. The rendered text is what a client sees in
// a 500 response body.
type DomainError struct {
	Code    string // Error code (e.g., "TW-WIKI-5003")
	Message string // Human-readable message
	Details string // Optional additional details
	Cause   error  // Underlying error (if any)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	msg := fmt.Sprintf("[%s] %s", e.Code, e.Message)
	if e.Details != "" {
		msg += ": " + e.Details
	}
	if e.Cause != nil {
		msg += ": " + e.Cause.Error()
	}
	return msg
}

// Unwrap returns the underlying error for errors.Unwrap() support.
func (e *DomainError) Unwrap() error {
	return e.Cause
}

// Is implements errors.Is() support for error comparison.
func (e *DomainError) Is(target error) bool {
	t, ok := target.(*DomainError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// NewDomainError creates a new DomainError with the given code and message.
func NewDomainError(code, message string) *DomainError {
	return &DomainError{
		Code:    code,
		Message: message,
	}
}

// WithDetails returns a copy of the error with additional details.
func (e *DomainError) WithDetails(details string) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		Cause:   e.Cause,
	}
}

// WithCause returns a copy of the error wrapping the given cause.
func (e *DomainError) WithCause(cause error) *DomainError {
	return &DomainError{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		Cause:   cause,
	}
}

// GetErrorCode extracts the error code from an error if it's a DomainError.
func GetErrorCode(err error) string {
	var de *DomainError
	if errors.As(err, &de) {
		return de.Code
	}
	return ""
}

// Wiki errors (WIKI). All of them are per-request recoverable and map
// to HTTP 500.
var (
	// ErrWikiRead indicates the document could not be read.
	ErrWikiRead = NewDomainError("TW-WIKI-5001", "couldn't read wiki file")

	// ErrRequestBody indicates the request body could not be buffered.
	ErrRequestBody = NewDomainError("TW-WIKI-5002", "failed to read request body")

	// ErrSnapshotWrite indicates the snapshot could not be written.
	// The document is left untouched.
	ErrSnapshotWrite = NewDomainError("TW-WIKI-5003", "failed to write backup wiki file")

	// ErrPromote indicates a written snapshot could not be copied over the
	// document. The snapshot stays on disk for manual recovery.
	ErrPromote = NewDomainError("TW-WIKI-5004", "failed to overwrite wiki file")
)

// Snapshot errors (SNAP), raised by offline maintenance commands.
var (
	// ErrSnapshotNotFound indicates the named snapshot does not exist.
	ErrSnapshotNotFound = NewDomainError("TW-SNAP-4040", "snapshot not found")

	// ErrSnapshotName indicates a name that is not a snapshot file name.
	ErrSnapshotName = NewDomainError("TW-SNAP-4001", "invalid snapshot name")
)
