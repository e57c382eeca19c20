package errors

// ErrorCode is the machine-readable error identifier carried on the wire.
type ErrorCode string

const (
	// Availability.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrCodeConnectionFailed   ErrorCode = "CONNECTION_FAILED"
	ErrCodeTimeout            ErrorCode = "TIMEOUT"

	// Resources.
	ErrCodeNotFound ErrorCode = "NOT_FOUND"

	// Input validation.
	ErrCodeInvalidInput  ErrorCode = "INVALID_INPUT"
	ErrCodeMissingField  ErrorCode = "MISSING_FIELD"
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"

	// Speech pipeline.
	ErrCodeModelLoad        ErrorCode = "MODEL_LOAD_FAILED"
	ErrCodeTranscription    ErrorCode = "TRANSCRIPTION_FAILED"
	ErrCodeUnsupportedModel ErrorCode = "UNSUPPORTED_MODEL"

	// Internal.
	ErrCodeInternal        ErrorCode = "INTERNAL_ERROR"
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

// retryableCodes marks failures where resubmitting the same request can
// succeed. A failed inference over valid audio is not one of them; a model
// that did not load yet is.
var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeModelLoad:          true,
	ErrCodeExternalService:    true,
}

// IsRetryableCode reports whether code denotes a transient failure.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
