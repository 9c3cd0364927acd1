package store

import (
	"fmt"
	"net/http"
)

// Error is a store error with an HTTP status code.
type Error struct {
	Code    int    // HTTP status code
	Message string // User-facing message
	Err     error  // Underlying error (optional)

	// sentinel points back at the package-level value this error was
	// derived from, so errors.Is keeps matching after WithMessage or
	// WithCause.
	sentinel *Error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is this error's sentinel.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e == t || e.base() == t.base()
}

func (e *Error) base() *Error {
	if e.sentinel != nil {
		return e.sentinel
	}
	return e
}

// HTTPCode returns the HTTP status code associated with this error.
func (e *Error) HTTPCode() int { return e.Code }

// WithMessage returns a new error with a custom message.
func (e *Error) WithMessage(msg string) *Error {
	return &Error{
		Code:     e.Code,
		Message:  msg,
		Err:      e.Err,
		sentinel: e.base(),
	}
}

// WithCause wraps an underlying error.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:     e.Code,
		Message:  e.Message,
		Err:      err,
		sentinel: e.base(),
	}
}

// Sentinel errors.
var (
	ErrNotFound = &Error{
		Code:    http.StatusNotFound,
		Message: "resource not found",
	}

	// ErrDuplicateID means a record with the same ID is already stored.
	// The in-transaction re-check is the final authority on this, regardless
	// of what any pre-check concluded.
	ErrDuplicateID = &Error{
		Code:    http.StatusConflict,
		Message: "a photo with this id already exists",
	}

	// ErrDuplicateFingerprint means a photo with identical content is
	// already stored.
	ErrDuplicateFingerprint = &Error{
		Code:    http.StatusConflict,
		Message: "a photo with identical content already exists",
	}

	// ErrUnavailable means the store could not be opened, even after a
	// recovery attempt. Nothing can proceed without a usable store.
	ErrUnavailable = &Error{
		Code:    http.StatusServiceUnavailable,
		Message: "photo store unavailable",
	}

	// ErrIO is a read or write failure on an open store. Operations are
	// never retried automatically; the failure is reported as-is.
	ErrIO = &Error{
		Code:    http.StatusInternalServerError,
		Message: "photo store i/o failure",
	}

	ErrInvalidInput = &Error{
		Code:    http.StatusBadRequest,
		Message: "invalid input",
	}
)
