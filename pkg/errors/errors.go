// Package errors provides structured error types for deptree.
//
// Every failure the resolver can surface carries a machine-readable [Code] so
// the CLI (and tests) can tell a malformed argument from an unreachable vanity
// host or a missing go.mod without matching on message text.
//
// # Error Codes
//
//   - INVALID_*: Input validation failures (arguments, manifests)
//   - UNSUPPORTED: Hosts that are neither direct nor vanity hosts
//   - RESOLUTION_FAILED, MANIFEST_FETCH_FAILED: Upstream lookups that failed
//   - LICENSE_NOT_FOUND: Upstream reports no license (not fatal)
//   - NETWORK_ERROR, RATE_LIMITED: Transport failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "invalid requirement %q", req)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeManifestFetch, origErr, "go.mod for %s", src)
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput    Code = "INVALID_INPUT"
	ErrCodeInvalidFormat   Code = "INVALID_FORMAT"
	ErrCodeInvalidManifest Code = "INVALID_MANIFEST"

	// Resolution errors
	ErrCodeUnsupported     Code = "UNSUPPORTED"
	ErrCodeResolution      Code = "RESOLUTION_FAILED"
	ErrCodeManifestFetch   Code = "MANIFEST_FETCH_FAILED"
	ErrCodeLicenseNotFound Code = "LICENSE_NOT_FOUND"
	ErrCodeCycle           Code = "DEPENDENCY_CYCLE"
	ErrCodeLimitExceeded   Code = "LIMIT_EXCEEDED"

	// Network errors
	ErrCodeNetwork     Code = "NETWORK_ERROR"
	ErrCodeRateLimited Code = "RATE_LIMITED"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Error is a structured error with a code and optional cause.
type Error struct {
	Code    Code   // Machine-readable error code
	Message string // Human-readable message
	Cause   error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause for errors.Is/As compatibility.
func (e *Error) Unwrap() error {
	return e.Cause
}

// New creates a new Error with the given code and formatted message.
func New(code Code, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
	}
}

// Wrap creates a new Error wrapping an existing error.
func Wrap(code Code, cause error, format string, args ...any) *Error {
	return &Error{
		Code:    code,
		Message: fmt.Sprintf(format, args...),
		Cause:   cause,
	}
}

// Is reports whether any *Error in err's chain carries the given code.
// Unlike [GetCode], which only looks at the outermost *Error, Is keeps
// unwrapping so that a fetch error wrapped in a resolution error still
// matches both codes.
func Is(err error, code Code) bool {
	for err != nil {
		if e, ok := err.(*Error); ok && e.Code == code {
			return true
		}
		err = errors.Unwrap(err)
	}
	return false
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if the error is not an *Error.
func GetCode(err error) Code {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return fmt.Sprintf("%s: %v", e.Message, e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// RateLimitedError provides additional information for rate-limited responses.
type RateLimitedError struct {
	RetryAfter int // Seconds to wait before retrying
	Message    string
}

// Error implements the error interface.
func (e *RateLimitedError) Error() string {
	msg := "rate limited"
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RetryAfter > 0 {
		return fmt.Sprintf("%s: retry after %d seconds", msg, e.RetryAfter)
	}
	return msg
}

// Code returns the error code for this error type.
func (e *RateLimitedError) Code() Code {
	return ErrCodeRateLimited
}
