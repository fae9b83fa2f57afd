// Package errors provides structured error types for mro.
//
// This package defines error codes and types that enable:
//   - Consistent error handling across the CLI, the HTTP API and library callers
//   - Machine-readable error codes for programmatic handling
//   - User-friendly error messages
//   - Error wrapping with context preservation
//
// # Error Codes
//
// Hierarchy errors (UNKNOWN_BASE, CYCLE_DETECTED, ...) are produced while
// building a class graph or linearizing it. They are deterministic: retrying
// the same call on the same graph reproduces the same error.
//
// Domain packages define their own error structs carrying diagnostic data
// (the cycle, the conflicting classes). Those structs implement
//
//	Code() errors.Code
//
// so [Is] and [GetCode] recognize them alongside [*Error].
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidInput, "invalid class id: %q", id)
//	if errors.Is(err, errors.ErrCodeInvalidInput) {
//	    // Handle validation error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeInvalidFormat, origErr, "decode %s", path)
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
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"
	ErrCodeInvalidPath   Code = "INVALID_PATH"

	// Class graph construction errors
	ErrCodeUnknownBase          Code = "UNKNOWN_BASE"
	ErrCodeDuplicateDeclaration Code = "DUPLICATE_DECLARATION"
	ErrCodeDuplicateBase        Code = "DUPLICATE_BASE"
	ErrCodeSelfInheritance      Code = "SELF_INHERITANCE"
	ErrCodeCycleDetected        Code = "CYCLE_DETECTED"

	// Linearization errors
	ErrCodeInconsistentHierarchy Code = "INCONSISTENT_HIERARCHY"

	// Resolution errors
	ErrCodeNotFound      Code = "NOT_FOUND"
	ErrCodeUnknownClass  Code = "UNKNOWN_CLASS"
	ErrCodeSessionClosed Code = "SESSION_CLOSED"

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

// Coder is implemented by domain error types that carry their own code.
type Coder interface {
	error
	Code() Code
}

// Is reports whether err has the given error code.
// It unwraps the error chain looking for an *Error or a [Coder] with a
// matching code. The outermost coded error wins.
func Is(err error, code Code) bool {
	return GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no error in the chain carries a code.
func GetCode(err error) Code {
	for err != nil {
		switch e := err.(type) {
		case *Error:
			return e.Code
		case Coder:
			return e.Code()
		}
		err = errors.Unwrap(err)
	}
	return ""
}

// UserMessage returns a user-friendly message for the error.
// For *Error types, returns the message without the code prefix, followed by
// the cause's message when the cause carries a code of its own. Uncoded
// causes stay out of the message.
// For other errors, returns the error string as-is.
func UserMessage(err error) string {
	var e *Error
	if !errors.As(err, &e) {
		return err.Error()
	}
	if e.Cause != nil && GetCode(e.Cause) != "" {
		return e.Message + ": " + UserMessage(e.Cause)
	}
	return e.Message
}
