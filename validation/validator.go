package validation

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/google/uuid"

	"github.com/skillsenselab/speechkit/errors"
)

// Validator accumulates field errors across a chain of checks so a
// response can report every problem at once.
type Validator struct {
	errors []FieldError
}

// FieldError names one invalid field and why it failed.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// New creates an empty Validator ready for chaining.
func New() *Validator {
	return &Validator{
		errors: make([]FieldError, 0),
	}
}

// AddError records a failure for a field.
func (v *Validator) AddError(field, message string) {
	v.errors = append(v.errors, FieldError{
		Field:   field,
		Message: message,
	})
}

// HasErrors reports whether any check failed.
func (v *Validator) HasErrors() bool {
	return len(v.errors) > 0
}

// Errors returns the recorded field errors.
func (v *Validator) Errors() []FieldError {
	return v.errors
}

// Validate folds the recorded failures into a single AppError, or nil
// when everything passed.
func (v *Validator) Validate() *errors.AppError {
	if !v.HasErrors() {
		return nil
	}

	messages := make([]string, len(v.errors))
	for i, e := range v.errors {
		messages[i] = fmt.Sprintf("%s: %s", e.Field, e.Message)
	}

	appErr := errors.Validation(strings.Join(messages, "; "))
	appErr.Details = map[string]any{
		"fields": v.errors,
	}

	return appErr
}

// check records the message when ok is false, and always returns the
// receiver so rules chain.
func (v *Validator) check(ok bool, field, message string) *Validator {
	if !ok {
		v.AddError(field, message)
	}
	return v
}

// Required fails when the trimmed value is empty.
func (v *Validator) Required(field, value string) *Validator {
	return v.check(strings.TrimSpace(value) != "", field, "is required")
}

// RequiredUUID fails unless the value parses to a non-nil UUID.
func (v *Validator) RequiredUUID(field, value string) *Validator {
	switch parsed, err := uuid.Parse(value); {
	case strings.TrimSpace(value) == "":
		v.AddError(field, "is required")
	case err != nil:
		v.AddError(field, "must be a valid UUID")
	case parsed == uuid.Nil:
		v.AddError(field, "must not be empty")
	}
	return v
}

// OptionalUUID accepts empty values but rejects malformed UUIDs.
func (v *Validator) OptionalUUID(field, value string) *Validator {
	if value == "" {
		return v
	}
	_, err := uuid.Parse(value)
	return v.check(err == nil, field, "must be a valid UUID")
}

// MaxLength bounds the value's byte length from above.
func (v *Validator) MaxLength(field, value string, maxLen int) *Validator {
	return v.check(len(value) <= maxLen, field,
		fmt.Sprintf("must be %d characters or less", maxLen))
}

// MinLength bounds the value's byte length from below.
func (v *Validator) MinLength(field, value string, minLen int) *Validator {
	return v.check(len(value) >= minLen, field,
		fmt.Sprintf("must be at least %d characters", minLen))
}

// Range requires minVal <= value <= maxVal.
func (v *Validator) Range(field string, value, minVal, maxVal int) *Validator {
	return v.check(value >= minVal && value <= maxVal, field,
		fmt.Sprintf("must be between %d and %d", minVal, maxVal))
}

// Min requires value >= minVal.
func (v *Validator) Min(field string, value, minVal int) *Validator {
	return v.check(value >= minVal, field, fmt.Sprintf("must be at least %d", minVal))
}

// Max requires value <= maxVal.
func (v *Validator) Max(field string, value, maxVal int) *Validator {
	return v.check(value <= maxVal, field, fmt.Sprintf("must be %d or less", maxVal))
}

// Pattern matches a non-empty value against a regular expression.
func (v *Validator) Pattern(field, value, pattern string) *Validator {
	if value == "" {
		return v
	}
	matched, err := regexp.MatchString(pattern, value)
	return v.check(err == nil && matched, field, "does not match required format")
}

// OneOf accepts empty values or any member of allowed.
func (v *Validator) OneOf(field, value string, allowed []string) *Validator {
	return v.check(value == "" || slices.Contains(allowed, value), field,
		fmt.Sprintf("must be one of: %s", strings.Join(allowed, ", ")))
}

var languagePattern = regexp.MustCompile(`^[a-zA-Z]{2,8}(-[a-zA-Z0-9]{1,8})*$`)

// Language checks that a non-empty value looks like a language tag ("en", "pt-BR").
func (v *Validator) Language(field, value string) *Validator {
	return v.check(value == "" || languagePattern.MatchString(value), field,
		"must be a valid language tag")
}

// Custom records the message when condition is false.
func (v *Validator) Custom(condition bool, field, message string) *Validator {
	return v.check(condition, field, message)
}

// Required is a one-shot check for a single mandatory field.
func Required(field, value string) error {
	v := New().Required(field, value)
	if appErr := v.Validate(); appErr != nil {
		return appErr
	}
	return nil
}

// ValidateUUID parses a required UUID field, returning the parsed value.
func ValidateUUID(field, value string) (uuid.UUID, error) {
	if strings.TrimSpace(value) == "" {
		return uuid.Nil, errors.Validation(fmt.Sprintf("%s is required", field))
	}

	id, err := uuid.Parse(value)
	if err != nil {
		return uuid.Nil, errors.Validation(fmt.Sprintf("%s must be a valid UUID", field))
	}

	return id, nil
}
