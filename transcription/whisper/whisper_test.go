package whisper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/skillsenselab/speechkit/errors"
	"github.com/skillsenselab/speechkit/transcription"
)

func writeClip(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.webm")
	if err := os.WriteFile(path, []byte("fake-audio"), 0o600); err != nil {
		t.Fatalf("write clip: %v", err)
	}
	return path
}

func TestLoadSendsCPUFullPrecision(t *testing.T) {
	var got map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/load" || r.Method != http.MethodPost {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Errorf("decode load payload: %v", err)
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL})
	if _, err := b.Load(context.Background(), transcription.ModelSmall); err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if got["model"] != "small" {
		t.Errorf("model = %q, want small", got["model"])
	}
	if got["device"] != "cpu" {
		t.Errorf("device = %q, want cpu", got["device"])
	}
	if got["compute_type"] != "float32" {
		t.Errorf("compute_type = %q, want float32", got["compute_type"])
	}
}

func TestLoadFailureIsModelLoadError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "out of memory", http.StatusInternalServerError)
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL})
	_, err := b.Load(context.Background(), transcription.ModelLarge)
	if err == nil {
		t.Fatal("expected error")
	}
	appErr, ok := errors.AsAppError(err)
	if !ok {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.Code != errors.ErrCodeModelLoad {
		t.Errorf("code = %s, want %s", appErr.Code, errors.ErrCodeModelLoad)
	}
	if !appErr.Retryable {
		t.Error("load failures must be retryable")
	}
}

func TestTranscribeDecodesSegments(t *testing.T) {
	prob1, prob2 := 0.1, 0.3
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/load":
			w.WriteHeader(http.StatusOK)
		case "/transcribe":
			if err := r.ParseMultipartForm(1 << 20); err != nil {
				t.Errorf("parse multipart: %v", err)
			}
			if r.FormValue("model") != "tiny" {
				t.Errorf("model field = %q, want tiny", r.FormValue("model"))
			}
			if r.FormValue("task") != "transcribe" {
				t.Errorf("task field = %q, want transcribe", r.FormValue("task"))
			}
			if _, ok := r.MultipartForm.Value["language"]; ok {
				t.Error("language field must be absent without a hint")
			}
			if _, _, err := r.FormFile("audio"); err != nil {
				t.Errorf("missing audio part: %v", err)
			}
			json.NewEncoder(w).Encode(sidecarResponse{
				Text:     "hello world",
				Language: "en",
				Segments: []sidecarSegment{
					{Start: 0, End: 1, Text: "hello", NoSpeechProb: &prob1},
					{Start: 1, End: 2.5, Text: "world", NoSpeechProb: &prob2},
				},
			})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL})
	m, err := b.Load(context.Background(), transcription.ModelTiny)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	res, err := m.Transcribe(context.Background(), writeClip(t), transcription.NewOptions(""))
	if err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
	if res.Text != "hello world" {
		t.Errorf("text = %q", res.Text)
	}
	if res.Language != "en" {
		t.Errorf("language = %q", res.Language)
	}
	if len(res.Segments) != 2 {
		t.Fatalf("segments = %d, want 2", len(res.Segments))
	}
	if res.Segments[1].End != 2.5 {
		t.Errorf("segment end = %v, want 2.5", res.Segments[1].End)
	}
	if res.Segments[0].NoSpeechProb == nil || *res.Segments[0].NoSpeechProb != 0.1 {
		t.Errorf("no_speech_prob = %v, want 0.1", res.Segments[0].NoSpeechProb)
	}
}

func TestTranscribeSendsLanguageHint(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/load":
			w.WriteHeader(http.StatusOK)
		case "/transcribe":
			r.ParseMultipartForm(1 << 20)
			if got := r.FormValue("language"); got != "tr" {
				t.Errorf("language field = %q, want tr", got)
			}
			json.NewEncoder(w).Encode(sidecarResponse{Text: "merhaba"})
		}
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL})
	m, err := b.Load(context.Background(), transcription.ModelTiny)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := m.Transcribe(context.Background(), writeClip(t), transcription.NewOptions("tr")); err != nil {
		t.Fatalf("Transcribe failed: %v", err)
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/health" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	b := New(Config{URL: srv.URL})
	if !b.IsAvailable(context.Background()) {
		t.Error("expected backend available")
	}

	down := New(Config{URL: "http://127.0.0.1:1"})
	if down.IsAvailable(context.Background()) {
		t.Error("expected backend unavailable")
	}
}

func TestFactory(t *testing.T) {
	factory := Factory()
	backend, err := factory(map[string]any{"url": "http://example.test"})
	if err != nil {
		t.Fatalf("factory failed: %v", err)
	}
	if backend.Name() != BackendName {
		t.Errorf("name = %q, want %q", backend.Name(), BackendName)
	}
}
