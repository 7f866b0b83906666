// Package errors provides structured error types for umlsvg.
//
// Every error that crosses a package boundary toward the CLI or the HTTP
// server carries a machine-readable [Code]. The CLI prints [UserMessage];
// the server maps codes to status codes with [HTTPStatus].
//
// # Error Codes
//
//   - INVALID_*: the input document or an option is unusable
//   - FILE_NOT_FOUND: an input path does not exist
//   - SCHEMA_VIOLATION: the document does not match the diagram schema
//   - DANGLING_REFERENCE: a link names a box that does not exist
//   - RENDER_FAILED: an output sink could not produce its format
//
// # Usage
//
//	err := errors.New(errors.ErrCodeInvalidFormat, "unknown format %q", f)
//	if errors.Is(err, errors.ErrCodeInvalidFormat) {
//	    // reject the request
//	}
//
//	err = errors.Wrap(errors.ErrCodeRenderFailed, cause, "render %s", format)
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Code represents a machine-readable error code.
type Code string

const (
	ErrCodeInvalidInput     Code = "INVALID_INPUT"
	ErrCodeInvalidDiagram   Code = "INVALID_DIAGRAM"
	ErrCodeInvalidFormat    Code = "INVALID_FORMAT"
	ErrCodeInvalidLabelMode Code = "INVALID_LABEL_MODE"
	ErrCodeInvalidPath      Code = "INVALID_PATH"
	ErrCodeInvalidConfig    Code = "INVALID_CONFIG"

	ErrCodeFileNotFound      Code = "FILE_NOT_FOUND"
	ErrCodeSchemaViolation   Code = "SCHEMA_VIOLATION"
	ErrCodeDanglingReference Code = "DANGLING_REFERENCE"

	ErrCodeRenderFailed Code = "RENDER_FAILED"
	ErrCodeInternal     Code = "INTERNAL_ERROR"
	ErrCodeUnsupported  Code = "UNSUPPORTED"
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
// For *Error types the code prefix is dropped and the cause, if any, is
// appended after a colon.
func UserMessage(err error) string {
	var e *Error
	if errors.As(err, &e) {
		if e.Cause != nil {
			return e.Message + ": " + UserMessage(e.Cause)
		}
		return e.Message
	}
	return err.Error()
}

// HTTPStatus maps an error to the status code the render server replies with.
func HTTPStatus(err error) int {
	switch GetCode(err) {
	case ErrCodeInvalidInput, ErrCodeInvalidDiagram, ErrCodeInvalidFormat,
		ErrCodeInvalidLabelMode, ErrCodeSchemaViolation, ErrCodeInvalidPath:
		return http.StatusBadRequest
	case ErrCodeDanglingReference:
		return http.StatusUnprocessableEntity
	case ErrCodeFileNotFound:
		return http.StatusNotFound
	case ErrCodeUnsupported:
		return http.StatusNotImplemented
	default:
		return http.StatusInternalServerError
	}
}
