// Package errors provides structured error types for powerset.
//
// Every failure that crosses a package boundary carries a machine-readable
// [Code] so the CLI and the HTTP server can report it consistently:
//   - INVALID_*: the caller sent something unusable
//   - TOO_LARGE: a configured limit was exceeded
//   - FILE_NOT_FOUND: a definition file does not exist
//   - INTERNAL_ERROR: everything else
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidOperation, "unknown operation: %s", op)
//	if errors.Is(err, errors.ErrCodeInvalidOperation) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidAutomaton, verr, "validate definition")
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Input validation errors
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidAutomaton Code = "INVALID_AUTOMATON"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidOperation Code = "INVALID_OPERATION"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Limits
	ErrCodeTooLarge Code = "TOO_LARGE"

	// Resource not found errors
	ErrCodeFileNotFound Code = "FILE_NOT_FOUND"

	// Internal errors
	ErrCodeInternal    Code = "INTERNAL_ERROR"
	ErrCodeUnsupported Code = "UNSUPPORTED"
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

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error with a matching code.
func Is(err error, code Code) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Code == code
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
// For *Error types, returns the message without the code prefix, followed by
// the cause when there is one.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + e.Cause.Error()
		}
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the HTTP server responds with.
// Errors without a code are internal.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidAutomaton, ErrCodeInvalidFormat,
		ErrCodeInvalidOperation, ErrCodeInvalidPath, ErrCodeUnsupported:
		return http.StatusBadRequest
	case ErrCodeTooLarge:
		return http.StatusRequestEntityTooLarge
	case ErrCodeFileNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// LimitError reports that a result grew past a configured limit.
type LimitError struct {
	What   string // e.g. "DFA states"
	Limit  int
	Actual int
}

// Error implements the error interface.
func (e *LimitError) Error() string {
	if e.Actual > 0 {
		return fmt.Sprintf("%s: %d exceeds limit of %d", e.What, e.Actual, e.Limit)
	}
	return fmt.Sprintf("%s: limit of %d exceeded", e.What, e.Limit)
}

// Code returns the error code for this error type.
func (e *LimitError) Code() Code {
	return ErrCodeTooLarge
}
