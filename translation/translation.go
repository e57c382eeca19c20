// Package translation defines the provider interface and common types for
// text translation and language detection backends.
//
// It follows the same provider pattern as the transcription package, with a
// pluggable registry for runtime-selectable backends.
//
// # Backends
//
//   - translation/libre: LibreTranslate HTTP sidecar
//
// # Usage
//
//	reg := translation.NewRegistry()
//	reg.RegisterFactory("libre", libre.Factory())
package translation

import (
	"context"

	"github.com/skillsenselab/speechkit/provider"
)

// Detection is the result of language detection on a piece of text.
type Detection struct {
	// Language is the detected language code ("en", "tr").
	Language string `json:"language"`
	// Confidence is the detector's confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// Provider is the interface that translation backends must implement.
type Provider interface {
	provider.Provider // embeds Name() and IsAvailable()

	// DetectLanguage identifies the language of the given text.
	DetectLanguage(ctx context.Context, text string) (*Detection, error)

	// Translate converts text from the source language to the target
	// language. An empty source means auto-detect.
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// NewRegistry creates a provider registry for translation backends.
func NewRegistry() *provider.Registry[Provider] {
	return provider.NewRegistry[Provider]()
}
