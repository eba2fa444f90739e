// Package errors provides structured error types for valuechain.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the library, CLI and HTTP API
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Error codes follow a hierarchical naming convention:
//   - INVALID_*: Input validation failures (the graph is left unchanged)
//   - *_NOT_FOUND: Resource not found
//   - PARSE_ERROR: An import document could not be decoded
//   - STORE_*, INTERNAL_*: Backend and unexpected failures
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidReference, "unknown target node %q", id)
//	if errors.Is(err, errors.ErrCodeInvalidReference) {
//	    // Handle rejected edge
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeParse, origErr, "decode document")
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
	ErrCodeInvalidReference Code = "INVALID_REFERENCE"
	ErrCodeInvalidNodeType  Code = "INVALID_NODE_TYPE"
	ErrCodeInvalidDirection Code = "INVALID_DIRECTION"
	ErrCodeInvalidColor     Code = "INVALID_COLOR"
	ErrCodeInvalidPath      Code = "INVALID_PATH"

	// Import errors
	ErrCodeParse Code = "PARSE_ERROR"

	// Resource not found errors
	ErrCodeNotFound         Code = "NOT_FOUND"
	ErrCodeNodeNotFound     Code = "NODE_NOT_FOUND"
	ErrCodeEdgeNotFound     Code = "EDGE_NOT_FOUND"
	ErrCodeDocumentNotFound Code = "DOCUMENT_NOT_FOUND"

	// State errors
	ErrCodeDirectionNotAllowed Code = "DIRECTION_NOT_ALLOWED"
	ErrCodeSessionClosed       Code = "SESSION_CLOSED"

	// Backend and internal errors
	ErrCodeStoreUnavailable Code = "STORE_UNAVAILABLE"
	ErrCodeInternal         Code = "INTERNAL_ERROR"
	ErrCodeUnsupported      Code = "UNSUPPORTED"
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
// Only the outermost *Error in the chain is consulted, so wrapping a
// NODE_NOT_FOUND inside a STORE_UNAVAILABLE reports STORE_UNAVAILABLE.
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

// HTTPStatus maps an error to the status code the API responds with.
// Errors without a code are treated as internal failures.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidNodeType, ErrCodeInvalidDirection,
		ErrCodeInvalidColor, ErrCodeInvalidPath, ErrCodeParse:
		return http.StatusBadRequest
	case ErrCodeInvalidReference, ErrCodeDirectionNotAllowed, ErrCodeSessionClosed:
		return http.StatusUnprocessableEntity
	case ErrCodeNotFound, ErrCodeNodeNotFound, ErrCodeEdgeNotFound, ErrCodeDocumentNotFound:
		return http.StatusNotFound
	case ErrCodeStoreUnavailable:
		return http.StatusServiceUnavailable
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
