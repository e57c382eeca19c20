package errors

import (
	"fmt"
	"net/http"
)

// AppError carries a machine-readable code, an HTTP mapping and a
// retryability hint alongside the human-readable message.
type AppError struct {
	// Code identifies the error class for clients.
	Code ErrorCode `json:"code"`
	// Message is safe to show to end users.
	Message string `json:"message"`
	// Retryable tells clients whether repeating the request may help.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the status the HTTP layer should respond with.
	HTTPStatus int `json:"-"`
	// Details holds structured context (field names, paths, services).
	Details map[string]any `json:"details,omitempty"`
	// Cause is the wrapped lower-level error, if any.
	Cause error `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the cause to errors.Is and errors.As.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause records the wrapped error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetails merges extra context into Details.
func (e *AppError) WithDetails(details map[string]any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	for k, v := range details {
		e.Details[k] = v
	}
	return e
}

// WithDetail adds one context entry to Details.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New builds an AppError, deriving Retryable from the code.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// Constructors below cover the failure modes the service reports.

// ServiceUnavailable reports a dependency that is temporarily down.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// ConnectionFailed reports that a dependency could not be reached at all.
func ConnectionFailed(service string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s. Please verify the service is running.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout reports an operation that exceeded its deadline.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// NotFound reports a missing resource, optionally keyed by ID.
func NotFound(resource, id string) *AppError {
	details := map[string]any{"resource": resource}
	if id != "" {
		details["id"] = id
	}
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("The requested %s was not found.", resource),
		HTTPStatus: http.StatusNotFound, Retryable: false, Details: details,
	}
}

// FileNotFound reports an audio path that does not exist on disk.
func FileNotFound(path string) *AppError {
	return &AppError{
		Code: ErrCodeNotFound, Message: fmt.Sprintf("Audio file not found: %s", path),
		HTTPStatus: http.StatusNotFound, Retryable: false,
		Details: map[string]any{"path": path},
	}
}

// InvalidInput reports a request value the service cannot accept.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation wraps an aggregate validation message as a 400.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField reports a required request field that was absent.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// InvalidFormat reports a field whose value has the wrong shape.
func InvalidFormat(field, expectedFormat string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidFormat, Message: fmt.Sprintf("Invalid format for %s. Expected: %s", field, expectedFormat),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field, "expected_format": expectedFormat},
	}
}

// ModelLoadFailed creates a new AppError for a failed acoustic model load.
// Load failures (including out-of-memory) leave the handle unloaded, so the
// caller may retry the triggering operation.
func ModelLoadFailed(modelSize string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeModelLoad, Message: fmt.Sprintf("Failed to load the %q speech model. Please try again.", modelSize),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"model_size": modelSize}, Cause: cause,
	}
}

// TranscriptionFailed reports that inference ran but produced an error.
func TranscriptionFailed(cause error) *AppError {
	return &AppError{
		Code: ErrCodeTranscription, Message: "Transcription failed. The audio could not be processed.",
		HTTPStatus: http.StatusBadGateway, Retryable: false, Cause: cause,
	}
}

// UnsupportedModel reports a model size outside the known set.
func UnsupportedModel(modelSize string) *AppError {
	return &AppError{
		Code: ErrCodeUnsupportedModel, Message: fmt.Sprintf("Unsupported model size: %q.", modelSize),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"model_size": modelSize},
	}
}

// Internal hides an unexpected failure behind a generic 500.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// ExternalServiceError reports a failure inside an upstream service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error. Please try again.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}
