package transcription

import (
	"context"
	"os"

	"github.com/skillsenselab/speechkit/errors"
	"github.com/skillsenselab/speechkit/provider"
)

// ModelSize selects the speech model variant. Larger sizes trade latency
// and memory for accuracy.
type ModelSize string

const (
	ModelTiny   ModelSize = "tiny"
	ModelBase   ModelSize = "base"
	ModelSmall  ModelSize = "small"
	ModelMedium ModelSize = "medium"
	ModelLarge  ModelSize = "large"
)

// DefaultModelSize is used when no size is configured.
const DefaultModelSize = ModelTiny

// ModelEnvVar is the environment variable that selects the model size.
const ModelEnvVar = "WHISPER_MODEL"

// ParseModelSize validates a model size string.
func ParseModelSize(s string) (ModelSize, error) {
	switch ModelSize(s) {
	case ModelTiny, ModelBase, ModelSmall, ModelMedium, ModelLarge:
		return ModelSize(s), nil
	}
	return "", errors.UnsupportedModel(s)
}

// ModelSizeFromEnv resolves the model size from WHISPER_MODEL,
// falling back to the default for unset or unrecognized values.
func ModelSizeFromEnv() ModelSize {
	v := os.Getenv(ModelEnvVar)
	if v == "" {
		return DefaultModelSize
	}
	size, err := ParseModelSize(v)
	if err != nil {
		return DefaultModelSize
	}
	return size
}

// Segment is a time-aligned portion of a transcript.
type Segment struct {
	// Start is the segment start time in seconds.
	Start float64 `json:"start"`
	// End is the segment end time in seconds.
	End float64 `json:"end"`
	// Text is the transcribed text for this segment.
	Text string `json:"text"`
	// NoSpeechProb is the model's probability that the segment contains
	// no speech. Nil when the backend does not report it.
	NoSpeechProb *float64 `json:"no_speech_prob,omitempty"`
}

// Result is the raw output of a model invocation, decoded once at the
// model boundary.
type Result struct {
	// Text is the full transcription text, as produced by the model.
	Text string `json:"text"`
	// Language is the detected or requested language. May be empty.
	Language string `json:"language,omitempty"`
	// Segments contains the time-aligned transcript segments.
	Segments []Segment `json:"segments,omitempty"`
}

// Metadata summarizes a transcription for callers.
type Metadata struct {
	// Language is the detected language, "unknown" when the model
	// reported none.
	Language string `json:"language"`
	// Duration is the spoken audio duration in seconds, taken from the
	// end of the last segment. Zero when there are no segments.
	Duration float64 `json:"duration"`
	// Segments is the number of transcript segments.
	Segments int `json:"segments"`
	// Confidence is the estimated transcription confidence in [0, 1].
	Confidence float64 `json:"confidence"`
}

// Model is a loaded speech model ready to transcribe audio files.
type Model interface {
	Transcribe(ctx context.Context, audioPath string, opts Options) (*Result, error)
}

// Loader materializes a Model for a given size. Loading is expensive;
// callers are expected to hold on to the returned Model.
type Loader interface {
	Load(ctx context.Context, size ModelSize) (Model, error)
}

// Backend is a registrable transcription backend: a Loader that also
// reports its name and availability.
type Backend interface {
	provider.Provider
	Loader
}
