// Package errors provides unified error handling for beankit.
// It implements structured error types with error codes, HTTP status mapping,
// and retryable detection following RFC 7807 and Google AIP-193.
package errors

import (
	"fmt"
	"maps"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// Is reports whether target is an AppError carrying the same code, so
// package-level sentinels match any instance built from the same code.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok || t == nil {
		return false
	}
	return e.Code == t.Code
}

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges details into the error and returns the receiver.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	for k, v := range details {
		e.WithDetail(k, v)
	}
	return e
}

// WithDetail sets one detail and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// Derive returns a copy of e with a new message. The With methods mutate
// their receiver, so package-level sentinels are only ever changed through
// a derived copy. Details are copied; the cause is not carried over.
func (e *AppError) Derive(message string) *AppError {
	d := &AppError{
		Code:       e.Code,
		Message:    message,
		Retryable:  e.Retryable,
		HTTPStatus: e.HTTPStatus,
	}
	if len(e.Details) > 0 {
		d.Details = maps.Clone(e.Details)
	}
	return d
}

// New creates an AppError; Retryable follows the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// NotFound reports a missing resource.
func NotFound(resource, id string) *AppError {
	e := New(ErrCodeNotFound, fmt.Sprintf("The requested %s was not found.", resource), http.StatusNotFound).
		WithDetail("resource", resource)
	if id != "" {
		e.WithDetail("id", id)
	}
	return e
}

// InvalidInput reports a bad value for field.
func InvalidInput(field, reason string) *AppError {
	e := New(ErrCodeInvalidInput, "Invalid input: "+reason, http.StatusBadRequest)
	if field != "" {
		e.WithDetail("field", field)
	}
	return e
}

// Validation reports a request or config that failed validation.
func Validation(message string) *AppError {
	return New(ErrCodeInvalidInput, message, http.StatusBadRequest)
}

// ServiceUnavailable reports a dependency that cannot serve right now.
func ServiceUnavailable(service string) *AppError {
	return New(ErrCodeServiceUnavailable,
		fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		http.StatusServiceUnavailable).
		WithDetail("service", service)
}

// Internal wraps an unexpected error. The cause is never sent to clients.
func Internal(cause error) *AppError {
	return New(ErrCodeInternal, "An unexpected error occurred. Please try again or contact support.",
		http.StatusInternalServerError).
		WithCause(cause)
}
