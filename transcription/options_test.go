package transcription

import "testing"

func TestNewOptionsDefaults(t *testing.T) {
	opts := NewOptions("")
	if opts.Task != "transcribe" {
		t.Errorf("expected task 'transcribe', got %q", opts.Task)
	}
	if opts.FP16 {
		t.Error("expected fp16 disabled")
	}
	if opts.Language != "" {
		t.Errorf("expected empty language, got %q", opts.Language)
	}
}

func TestOptionsValuesOmitsLanguage(t *testing.T) {
	values := NewOptions("").Values()
	if _, ok := values["language"]; ok {
		t.Error("language key must be absent when no hint is given")
	}
	if values["task"] != "transcribe" {
		t.Errorf("expected task 'transcribe', got %v", values["task"])
	}
	if values["fp16"] != false {
		t.Errorf("expected fp16=false, got %v", values["fp16"])
	}
}

func TestOptionsValuesWithLanguage(t *testing.T) {
	values := NewOptions("tr").Values()
	if values["language"] != "tr" {
		t.Errorf("expected language 'tr', got %v", values["language"])
	}
}
