package transcription

// Options carries the per-call parameters handed to a model.
type Options struct {
	// Task is the model task. Only "transcribe" is used; translation is
	// handled by the translation package.
	Task string
	// Language is an optional language hint ("en", "tr"). Empty means
	// let the model auto-detect.
	Language string
	// FP16 enables half-precision inference. Off for CPU portability.
	FP16 bool
}

// NewOptions builds the default option set with an optional language hint.
func NewOptions(language string) Options {
	return Options{
		Task:     "transcribe",
		Language: language,
		FP16:     false,
	}
}

// Values renders the model-facing option set. The language key is absent
// entirely when no hint was given, so auto-detecting models never see an
// explicit empty hint.
func (o Options) Values() map[string]any {
	values := map[string]any{
		"task": o.Task,
		"fp16": o.FP16,
	}
	if o.Language != "" {
		values["language"] = o.Language
	}
	return values
}
