package errors

import (
	stderrors "errors"
	"net/http"
)

// ErrorResponse is the JSON envelope written for a failed request.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody is the client-visible part of an AppError. The cause stays
// server side.
type ErrorBody struct {
	Code      ErrorCode      `json:"code"`
	Message   string         `json:"message"`
	Retryable bool           `json:"retryable"`
	Details   map[string]any `json:"details,omitempty"`
}

func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{Error: ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}}
}

// AsAppError returns the first AppError in err's chain.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if !stderrors.As(err, &appErr) {
		return nil, false
	}
	return appErr, true
}

// Wrap returns err as an AppError. Plain errors become Internal; nil stays nil.
func Wrap(err error) *AppError {
	if err == nil {
		return nil
	}
	if appErr, ok := AsAppError(err); ok {
		return appErr
	}
	return Internal(err)
}

// StatusOf returns the HTTP status err maps to.
func StatusOf(err error) int {
	if err == nil {
		return http.StatusOK
	}
	return Wrap(err).HTTPStatus
}
