// Package errors provides standardized domain errors with codes for the PhotoKeep API.
//
// Usage:
//
//	// In services - return typed errors
//	if gateHeld {
//	    return errors.UploadInProgress("an upload batch is already running")
//	}
//
//	// In handlers - check with errors.Is
//	if errors.Is(err, errors.ErrDuplicateFingerprint) {
//	    // count the file as a duplicate, keep the batch going
//	}
//
//	// Or use the Code directly for switch statements
//	var domainErr *errors.Error
//	if errors.As(err, &domainErr) {
//	    switch domainErr.Code {
//	    case errors.CodeDuplicateFingerprint:
//	        ...
//	    case errors.CodeStoreUnavailable:
//	        ...
//	    }
//	}
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Re-export standard library functions for convenience.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	Join   = errors.Join
)

// Code represents a machine-readable error code.
type Code string

// Error codes used throughout the application.
const (
	CodeNotFound             Code = "NOT_FOUND"
	CodeValidation           Code = "VALIDATION"
	CodeDuplicateID          Code = "DUPLICATE_ID"
	CodeDuplicateFingerprint Code = "DUPLICATE_FINGERPRINT"
	CodeStoreUnavailable     Code = "STORE_UNAVAILABLE"
	CodeStoreIO              Code = "STORE_IO"
	CodeUploadInProgress     Code = "UPLOAD_IN_PROGRESS"
	CodeTelemetry            Code = "TELEMETRY"
	CodeTranscode            Code = "TRANSCODE"
	CodeInternal             Code = "INTERNAL"
)

// HTTPStatus returns the appropriate HTTP status code for an error code.
func (c Code) HTTPStatus() int {
	switch c {
	case CodeNotFound:
		return http.StatusNotFound
	case CodeValidation:
		return http.StatusBadRequest
	case CodeDuplicateID, CodeDuplicateFingerprint, CodeUploadInProgress:
		return http.StatusConflict
	case CodeStoreUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Error is a domain error with a code, message, and optional details.
type Error struct {
	Code    Code   `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
	cause   error
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.cause)
	}
	return e.Message
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.cause
}

// Is reports whether target matches this error. Two *Error values match
// when their codes are equal, so sentinels work with errors.Is even after
// wrapping a cause or attaching details.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Code == t.Code
	}
	return false
}

// HTTPStatus returns the HTTP status code for this error.
func (e *Error) HTTPStatus() int {
	return e.Code.HTTPStatus()
}

// WithDetails returns a copy of the error carrying additional details.
func (e *Error) WithDetails(details any) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: details,
		cause:   e.cause,
	}
}

// WithCause returns a copy of the error wrapping an underlying cause.
func (e *Error) WithCause(err error) *Error {
	return &Error{
		Code:    e.Code,
		Message: e.Message,
		Details: e.Details,
		cause:   err,
	}
}

// Sentinel errors for use with errors.Is().
var (
	ErrNotFound             = &Error{Code: CodeNotFound, Message: "not found"}
	ErrValidation           = &Error{Code: CodeValidation, Message: "validation error"}
	ErrDuplicateID          = &Error{Code: CodeDuplicateID, Message: "duplicate record id"}
	ErrDuplicateFingerprint = &Error{Code: CodeDuplicateFingerprint, Message: "duplicate content fingerprint"}
	ErrStoreUnavailable     = &Error{Code: CodeStoreUnavailable, Message: "store unavailable"}
	ErrStoreIO              = &Error{Code: CodeStoreIO, Message: "store i/o failure"}
	ErrUploadInProgress     = &Error{Code: CodeUploadInProgress, Message: "upload already in progress"}
	ErrTelemetry            = &Error{Code: CodeTelemetry, Message: "telemetry relay failure"}
	ErrTranscode            = &Error{Code: CodeTranscode, Message: "image transcode failure"}
	ErrInternal             = &Error{Code: CodeInternal, Message: "internal error"}
)

// Constructor functions for creating errors with custom messages.

// NotFound creates a not found error.
func NotFound(msg string) *Error {
	return &Error{Code: CodeNotFound, Message: msg}
}

// NotFoundf creates a not found error with formatted message.
func NotFoundf(format string, args ...any) *Error {
	return &Error{Code: CodeNotFound, Message: fmt.Sprintf(format, args...)}
}

// Validation creates a validation error.
func Validation(msg string) *Error {
	return &Error{Code: CodeValidation, Message: msg}
}

// Validationf creates a validation error with formatted message.
func Validationf(format string, args ...any) *Error {
	return &Error{Code: CodeValidation, Message: fmt.Sprintf(format, args...)}
}

// ValidationWithDetails creates a validation error carrying field details.
func ValidationWithDetails(msg string, details any) *Error {
	return &Error{Code: CodeValidation, Message: msg, Details: details}
}

// DuplicateID creates a duplicate record id error.
func DuplicateID(msg string) *Error {
	return &Error{Code: CodeDuplicateID, Message: msg}
}

// DuplicateFingerprint creates a duplicate content fingerprint error.
func DuplicateFingerprint(msg string) *Error {
	return &Error{Code: CodeDuplicateFingerprint, Message: msg}
}

// StoreUnavailable creates a store unavailable error.
func StoreUnavailable(msg string) *Error {
	return &Error{Code: CodeStoreUnavailable, Message: msg}
}

// StoreIO creates a store i/o error.
func StoreIO(msg string) *Error {
	return &Error{Code: CodeStoreIO, Message: msg}
}

// UploadInProgress creates an upload-in-progress error.
func UploadInProgress(msg string) *Error {
	return &Error{Code: CodeUploadInProgress, Message: msg}
}

// Telemetry creates a telemetry relay failure error.
func Telemetry(msg string) *Error {
	return &Error{Code: CodeTelemetry, Message: msg}
}

// Transcode creates an image transcode failure error.
func Transcode(msg string) *Error {
	return &Error{Code: CodeTranscode, Message: msg}
}

// Internal creates an internal error.
func Internal(msg string) *Error {
	return &Error{Code: CodeInternal, Message: msg}
}

// Internalf creates an internal error with formatted message.
func Internalf(format string, args ...any) *Error {
	return &Error{Code: CodeInternal, Message: fmt.Sprintf(format, args...)}
}

// Wrap wraps an error with a code and message.
func Wrap(err error, code Code, msg string) *Error {
	return &Error{Code: code, Message: msg, cause: err}
}

// Wrapf wraps an error with a code and formatted message.
func Wrapf(err error, code Code, format string, args ...any) *Error {
	return &Error{Code: code, Message: fmt.Sprintf(format, args...), cause: err}
}
