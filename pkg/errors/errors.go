// Package errors provides structured error types for GramGraph.
//
// Every stage of the chart pipeline fails with a coded error so that the
// CLI and the HTTP API can report the failing stage without string matching:
//
//   - SYNTAX_ERROR: malformed DSL (unknown token, unbalanced parens, unknown
//     layer or argument name)
//   - RESOLVE_ERROR: missing x/y, unknown column, incompatible geometry mixing,
//     unknown facet column
//   - SCHEMA_ERROR: malformed table (duplicate or empty headers, ragged rows)
//   - DATA_ERROR: a cell fails to parse where a number is required
//   - RENDER_ERROR: a backend could not encode the scene graph
//
// All errors are fatal to a run; the first one aborts the pipeline.
//
// # Usage
//
//	err := errors.New(errors.ErrCodeResolve, "unknown column %q", name)
//	if errors.Is(err, errors.ErrCodeResolve) {
//	    // Handle resolution error
//	}
//
//	// Wrap existing errors
//	err := errors.Wrap(errors.ErrCodeRender, origErr, "encode png")
package errors

import (
	"errors"
	"fmt"
)

// Code represents a machine-readable error code.
type Code string

// Error codes for different error categories.
const (
	// Pipeline stage errors
	ErrCodeSyntax  Code = "SYNTAX_ERROR"
	ErrCodeResolve Code = "RESOLVE_ERROR"
	ErrCodeSchema  Code = "SCHEMA_ERROR"
	ErrCodeData    Code = "DATA_ERROR"
	ErrCodeRender  Code = "RENDER_ERROR"

	// Input validation errors
	ErrCodeInvalidInput  Code = "INVALID_INPUT"
	ErrCodeInvalidFormat Code = "INVALID_FORMAT"

	// Internal errors
	ErrCodeInternal Code = "INTERNAL_ERROR"
)

// Coder is implemented by error types that carry their own code, such as
// positioned syntax errors from the DSL parser.
type Coder interface {
	error
	Code() Code
}

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
// It unwraps the error chain looking for the outermost *Error or Coder.
func Is(err error, code Code) bool {
	return err != nil && GetCode(err) == code
}

// GetCode extracts the error code from an error, if available.
// Returns empty string if no coded error is found in the chain.
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

// IsUserError reports whether err was caused by the caller's input (the spec
// or the table) rather than by the system.
func IsUserError(err error) bool {
	switch GetCode(err) {
	case ErrCodeSyntax, ErrCodeResolve, ErrCodeSchema, ErrCodeData,
		ErrCodeInvalidInput, ErrCodeInvalidFormat:
		return true
	}
	return false
}
