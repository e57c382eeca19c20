package whispercpp

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillsenselab/speechkit/errors"
	"github.com/skillsenselab/speechkit/transcription"
)

func TestParseOutput(t *testing.T) {
	data := []byte(`{
		"result": {"language": "en"},
		"transcription": [
			{"offsets": {"from": 0, "to": 1500}, "text": " Hello"},
			{"offsets": {"from": 1500, "to": 3250}, "text": " there."}
		]
	}`)

	res, err := parseOutput(data)
	if err != nil {
		t.Fatalf("parseOutput failed: %v", err)
	}
	if res.Language != "en" {
		t.Errorf("language = %q, want en", res.Language)
	}
	if res.Text != " Hello there." {
		t.Errorf("text = %q", res.Text)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(res.Segments))
	}
	if res.Segments[0].End != 1.5 {
		t.Errorf("segment end = %v, want 1.5", res.Segments[0].End)
	}
	if res.Segments[1].End != 3.25 {
		t.Errorf("segment end = %v, want 3.25", res.Segments[1].End)
	}
	if res.Segments[0].NoSpeechProb != nil {
		t.Error("whisper.cpp segments must not carry a no-speech probability")
	}
}

func TestParseOutputInvalid(t *testing.T) {
	if _, err := parseOutput([]byte("not json")); err == nil {
		t.Error("expected error for invalid JSON")
	}
}

func TestArgsOmitLanguageWithoutHint(t *testing.T) {
	b := New(Config{ModelDir: "/models"})
	m := &model{backend: b, modelPath: b.ModelPath(transcription.ModelTiny)}

	args := m.args("/tmp/a.webm", "/tmp/out", transcription.NewOptions(""))
	for _, a := range args {
		if a == "-l" {
			t.Fatalf("language flag present without a hint: %v", args)
		}
	}

	args = m.args("/tmp/a.webm", "/tmp/out", transcription.NewOptions("tr"))
	found := false
	for i, a := range args {
		if a == "-l" && i+1 < len(args) && args[i+1] == "tr" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected '-l tr' in args: %v", args)
	}
}

func TestArgsThreads(t *testing.T) {
	b := New(Config{ModelDir: "/models", Threads: 4})
	m := &model{backend: b, modelPath: b.ModelPath(transcription.ModelTiny)}

	args := m.args("/tmp/a.webm", "/tmp/out", transcription.NewOptions(""))
	found := false
	for i, a := range args {
		if a == "-t" && i+1 < len(args) && args[i+1] == "4" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected '-t 4' in args: %v", args)
	}
}

func TestModelPath(t *testing.T) {
	b := New(Config{ModelDir: "/opt/models"})
	got := b.ModelPath(transcription.ModelMedium)
	want := filepath.Join("/opt/models", "ggml-medium.bin")
	if got != want {
		t.Errorf("ModelPath = %q, want %q", got, want)
	}
}

func TestLoadMissingModelArtefact(t *testing.T) {
	// "sh" resolves via PATH so only the artefact check can fail.
	b := New(Config{Binary: "sh", ModelDir: t.TempDir()})

	_, err := b.Load(context.Background(), transcription.ModelTiny)
	if err == nil {
		t.Fatal("expected error for missing artefact")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok || appErr.Code != errors.ErrCodeModelLoad {
		t.Fatalf("expected MODEL_LOAD_FAILED, got %v", err)
	}
}

func TestLoadMissingBinary(t *testing.T) {
	b := New(Config{Binary: "no-such-whisper-binary", ModelDir: t.TempDir()})
	_, err := b.Load(context.Background(), transcription.ModelTiny)
	if err == nil {
		t.Fatal("expected error for missing binary")
	}
}

func TestLoadAndTranscribeWithFakeCLI(t *testing.T) {
	dir := t.TempDir()

	// Fake CLI: finds --output-file and writes a canned JSON next to it.
	script := filepath.Join(dir, "fake-whisper")
	body := `#!/bin/sh
out=""
while [ $# -gt 0 ]; do
  if [ "$1" = "--output-file" ]; then out="$2"; fi
  shift
done
cat > "$out.json" <<'JSON'
{"result":{"language":"en"},"transcription":[{"offsets":{"from":0,"to":1000},"text":"hi"}]}
JSON
`
	if err := os.WriteFile(script, []byte(body), 0o755); err != nil {
		t.Fatalf("write fake CLI: %v", err)
	}
	modelFile := filepath.Join(dir, "ggml-tiny.bin")
	if err := os.WriteFile(modelFile, []byte("ggml"), 0o600); err != nil {
		t.Fatalf("write model file: %v", err)
	}
	audio := filepath.Join(dir, "clip.webm")
	if err := os.WriteFile(audio, []byte("audio"), 0o600); err != nil {
		t.Fatalf("write audio: %v", err)
	}

	b := New(Config{Binary: script, ModelDir: dir})
	if !b.IsAvailable(context.Background()) {
		t.Fatal("expected backend available")
	}

	m, err := b.Load(context.Background(), transcription.ModelTiny)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	res, err := m.Transcribe(context.Background(), audio, transcription.NewOptions(""))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if res.Text != "hi" {
		t.Errorf("text = %q, want hi", res.Text)
	}
	if res.Language != "en" {
		t.Errorf("language = %q, want en", res.Language)
	}
}
