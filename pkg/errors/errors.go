// Package errors provides structured error types for depview.
//
// Every failure the explorer can report falls into one of a small number of
// categories, each identified by a machine-readable [Code]:
//   - IMPORT_ERROR: the external graph is malformed or inconsistent
//   - LAYOUT_ERROR: a rooted layout precondition does not hold
//   - FETCH_ERROR: a neighborhood or detail request failed in transport or decoding
//   - INVALID_*: input validation failures
//   - INTERNAL_*: unexpected internal errors
//
// An unknown component is not an error. Lookups report it as a normal
// "not found" value (see model.Model.Node and panel.Detail.Found). The
// NOT_FOUND code exists only for HTTP handlers that need to translate such a
// value into a status code.
//
// # Usage
//
//	err := errors.Import(cause, "edge %q references unknown node %q", name, dst)
//	if errors.Is(err, errors.ErrCodeImport) {
//	    // Reject the file, keep the previous model
//	}
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	ErrCodeImport Code = "IMPORT_ERROR"
	ErrCodeLayout Code = "LAYOUT_ERROR"
	ErrCodeFetch  Code = "FETCH_ERROR"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidLabel  Code = "INVALID_LABEL"
	ErrCodeInvalidLayout Code = "INVALID_LAYOUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	ErrCodeNotFound Code = "NOT_FOUND"
	ErrCodeTimeout  Code = "TIMEOUT"

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

// Import reports a malformed or inconsistent external graph.
// The cause may be nil.
func Import(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeImport, cause, format, args...)
}

// Layout reports a violated layout precondition. The cause may be nil.
func Layout(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeLayout, cause, format, args...)
}

// Fetch reports a transport or decoding failure of an asynchronous request.
func Fetch(cause error, format string, args ...any) *Error {
	return Wrap(ErrCodeFetch, cause, format, args...)
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
// For *Error types, returns the message without the code prefix.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}
