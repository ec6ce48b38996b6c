package store

import (
	"fmt"
	"net/http"
)

// Error is a storage-layer error with the HTTP status it should surface
// as. Store methods return the sentinel values below directly, so callers
// match them with errors.Is by identity.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// HTTPCode returns the HTTP status for this error.
func (e *Error) HTTPCode() int { return e.Code }

var (
	// ErrNotFound is returned when the requested row does not exist.
	ErrNotFound = &Error{Code: http.StatusNotFound, Message: "resource not found"}

	// ErrAlreadyExists is returned on unique-constraint violations.
	ErrAlreadyExists = &Error{Code: http.StatusConflict, Message: "resource already exists"}

	// ErrInvalidInput is returned when a write violates a data rule the
	// schema enforces, like a self-follow.
	ErrInvalidInput = &Error{Code: http.StatusBadRequest, Message: "invalid input"}
)
