package errors

import (
	stderrors "errors"
)

// ErrorResponse is the JSON envelope returned to clients.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the client-visible error details. Retryable tells the
// caller whether resubmitting the same request may succeed (true for model
// load failures, false for bad audio).
type ErrorBody struct {
	Code      ErrorCode              `json:"code"`
	Message   string                 `json:"message"`
	Retryable bool                   `json:"retryable"`
	Details   map[string]interface{} `json:"details,omitempty"`
}

// ToResponse converts the error into its wire representation. The cause
// chain is deliberately omitted from the client payload.
func (e *AppError) ToResponse() ErrorResponse {
	return ErrorResponse{
		Error: ErrorBody{
			Code:      e.Code,
			Message:   e.Message,
			Retryable: e.Retryable,
			Details:   e.Details,
		},
	}
}

// AsAppError unwraps err to an AppError when possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	ok := stderrors.As(err, &appErr)
	return appErr, ok
}

// IsAppError reports whether err wraps an AppError.
func IsAppError(err error) bool {
	_, ok := AsAppError(err)
	return ok
}
