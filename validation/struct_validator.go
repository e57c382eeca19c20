package validation

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/skillsenselab/speechkit/errors"
)

var (
	validate *validator.Validate
	once     sync.Once
)

// getValidator lazily builds the shared validator instance.
func getValidator() *validator.Validate {
	once.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())

		// Error messages should name fields the way clients see them.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" || name == "" {
				return toSnakeCase(fld.Name)
			}
			return name
		})
	})
	return validate
}

// Validate checks a struct against its `validate:"..."` tags and returns
// a field-detailed AppError on failure. Request bodies like the translate
// payload go through here before any work happens.
func Validate(s any) error {
	err := getValidator().Struct(s)
	if err == nil {
		return nil
	}
	failures, ok := err.(validator.ValidationErrors)
	if !ok {
		return errors.Validation("validation failed")
	}

	fields := make([]FieldError, 0, len(failures))
	lines := make([]string, 0, len(failures))
	for _, f := range failures {
		fe := FieldError{
			Field:   toSnakeCase(f.Field()),
			Message: tagMessage(f),
		}
		fields = append(fields, fe)
		lines = append(lines, fe.Field+": "+fe.Message)
	}

	appErr := errors.Validation(strings.Join(lines, "; "))
	appErr.Details = map[string]any{"fields": fields}
	return appErr
}

// tagMessage maps a failed validation tag to a client-facing message.
func tagMessage(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return "must be one of: " + e.Param()
	case "bcp47_language_tag":
		return "must be a valid language tag"
	}
	return "is invalid"
}

// toSnakeCase converts an exported Go field name to snake_case.
func toSnakeCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if r < 'A' || r > 'Z' {
			b.WriteRune(r)
			continue
		}
		if i > 0 {
			b.WriteByte('_')
		}
		b.WriteRune(r - 'A' + 'a')
	}
	return b.String()
}
