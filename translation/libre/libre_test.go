package libre

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestTranslate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/translate" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		var payload map[string]string
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode payload: %v", err)
		}
		if payload["q"] != "merhaba" {
			t.Errorf("q = %q", payload["q"])
		}
		if payload["source"] != "tr" || payload["target"] != "en" {
			t.Errorf("source/target = %q/%q", payload["source"], payload["target"])
		}
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "hello"})
	}))
	defer srv.Close()

	p := New(Config{URL: srv.URL})
	got, err := p.Translate(context.Background(), "merhaba", "tr", "en")
	if err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
	if got != "hello" {
		t.Errorf("translated = %q, want hello", got)
	}
}

func TestTranslateAutoSource(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]string
		json.NewDecoder(r.Body).Decode(&payload)
		if payload["source"] != "auto" {
			t.Errorf("source = %q, want auto", payload["source"])
		}
		json.NewEncoder(w).Encode(map[string]string{"translatedText": "x"})
	}))
	defer srv.Close()

	p := New(Config{URL: srv.URL})
	if _, err := p.Translate(context.Background(), "text", "", "en"); err != nil {
		t.Fatalf("Translate failed: %v", err)
	}
}

func TestDetectLanguage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/detect" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		json.NewEncoder(w).Encode([]map[string]any{
			{"language": "tr", "confidence": 92.5},
		})
	}))
	defer srv.Close()

	p := New(Config{URL: srv.URL})
	det, err := p.DetectLanguage(context.Background(), "merhaba dünya")
	if err != nil {
		t.Fatalf("DetectLanguage failed: %v", err)
	}
	if det.Language != "tr" {
		t.Errorf("language = %q, want tr", det.Language)
	}
	if det.Confidence != 0.925 {
		t.Errorf("confidence = %v, want 0.925", det.Confidence)
	}
}

func TestDetectLanguageEmpty(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]map[string]any{})
	}))
	defer srv.Close()

	p := New(Config{URL: srv.URL})
	det, err := p.DetectLanguage(context.Background(), "???")
	if err != nil {
		t.Fatalf("DetectLanguage failed: %v", err)
	}
	if det.Language != "unknown" {
		t.Errorf("language = %q, want unknown", det.Language)
	}
}

func TestTranslateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad language pair", http.StatusBadRequest)
	}))
	defer srv.Close()

	p := New(Config{URL: srv.URL})
	if _, err := p.Translate(context.Background(), "x", "en", "xx"); err == nil {
		t.Error("expected error for non-OK status")
	}
}

func TestIsAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/languages" {
			w.Write([]byte("[]"))
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if !New(Config{URL: srv.URL}).IsAvailable(context.Background()) {
		t.Error("expected provider available")
	}
	if New(Config{URL: "http://127.0.0.1:1"}).IsAvailable(context.Background()) {
		t.Error("expected provider unavailable")
	}
}
