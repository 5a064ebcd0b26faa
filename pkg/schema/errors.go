package schema

import (
	"errors"
	"fmt"
)

// Error codes for structured error reporting.
const (
	ErrCodeValidation    = "VALIDATION_ERROR"
	ErrCodeConfiguration = "CONFIGURATION_ERROR"
	ErrCodeTransport     = "TRANSPORT_ERROR"
	ErrCodeAPI           = "API_ERROR"
	ErrCodeNotFound      = "NOT_FOUND"
	ErrCodeAuthorization = "AUTHORIZATION_ERROR"
	ErrCodeStore         = "STORE_ERROR"
)

// JenkgateError is the structured error type for all jenkgate operations.
type JenkgateError struct {
	Code    string         `json:"code"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
	Cause   error          `json:"-"`
}

func (e *JenkgateError) Error() string {
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

func (e *JenkgateError) Unwrap() error {
	return e.Cause
}

// NewError creates a new JenkgateError.
func NewError(code, message string) *JenkgateError {
	return &JenkgateError{Code: code, Message: message}
}

// NewErrorf creates a new JenkgateError with a formatted message.
func NewErrorf(code, format string, args ...any) *JenkgateError {
	return &JenkgateError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WithCause attaches an underlying cause.
func (e *JenkgateError) WithCause(err error) *JenkgateError {
	e.Cause = err
	return e
}

// WithDetails attaches key-value details.
func (e *JenkgateError) WithDetails(details map[string]any) *JenkgateError {
	e.Details = details
	return e
}

// CodeOf returns the error code of a JenkgateError, or "" for any other error.
func CodeOf(err error) string {
	var je *JenkgateError
	if errors.As(err, &je) {
		return je.Code
	}
	return ""
}
