// Package errors provides structured error types for tav.
//
// Error codes let the CLI and library callers tell the stage that failed
// apart without string matching:
//   - INVALID_*: malformed declarations or options
//   - RESOLUTION_FAILED, NO_VERSIONS, PACKAGE_NOT_FOUND: version resolution
//   - NETWORK_ERROR: registry transport failures
//   - ALREADY_STARTED, INTERNAL_ERROR: suite lifecycle
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidDeclaration, "test %q has no packages", name)
//	if errors.Is(err, errors.ErrCodeInvalidDeclaration) {
//	    // Handle a bad .tav.yml
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeResolution, origErr, "resolve %s", pkg)
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
	ErrCodeInvalidInput       Code = "INVALID_INPUT"
	ErrCodeInvalidDeclaration Code = "INVALID_DECLARATION"
	ErrCodeInvalidPackage     Code = "INVALID_PACKAGE"
	ErrCodeInvalidOptions     Code = "INVALID_OPTIONS"
	ErrCodeInvalidPath        Code = "INVALID_PATH"

	// Resolution errors
	ErrCodeResolution      Code = "RESOLUTION_FAILED"
	ErrCodeNoVersions      Code = "NO_VERSIONS"
	ErrCodePackageNotFound Code = "PACKAGE_NOT_FOUND"

	// Network errors
	ErrCodeNetwork Code = "NETWORK_ERROR"

	// Lifecycle and internal errors
	ErrCodeAlreadyStarted Code = "ALREADY_STARTED"
	ErrCodeInternal       Code = "INTERNAL_ERROR"
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

// Is reports whether err carries the given error code anywhere in its chain.
// Unlike errors.As, it keeps unwrapping past an *Error whose code does not
// match, so a RESOLUTION_FAILED wrapper does not hide a NO_VERSIONS cause.
func Is(err error, code Code) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Code == code {
			return true
		}
		err = e.Cause
	}
	return false
}

// GetCode extracts the outermost error code from an error, if available.
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
			return fmt.Sprintf("%s: %s", e.Message, UserMessage(e.Cause))
		}
		return e.Message
	}
	return err.Error()
}
