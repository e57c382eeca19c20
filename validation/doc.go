// Package validation provides input validation for speechkit handlers.
//
// It supports both struct tag validation (using the validator library) and
// programmatic validation with error collection. Struct tag validation is
// recommended for request payloads.
//
// # Struct Tag Validation
//
//	type TranscribeRequest struct {
//	    Language string `validate:"omitempty,bcp47_language_tag"`
//	}
//	err := validation.Validate(req)
//
// # Programmatic Validation
//
//	v := validation.New()
//	v.Required("audio", filename).Language("language", lang)
//	err := v.Validate()
package validation
