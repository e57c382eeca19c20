package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/skillsenselab/speechkit/errors"
	"github.com/skillsenselab/speechkit/observability"
	"github.com/skillsenselab/speechkit/transcription"
	"github.com/skillsenselab/speechkit/translation"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeTranscriber struct {
	text     string
	meta     *transcription.Metadata
	err      error
	lastLang string
	gotBytes []byte
}

func (f *fakeTranscriber) TranscribeFile(ctx context.Context, path, language string) (string, *transcription.Metadata, error) {
	f.lastLang = language
	return f.text, f.meta, f.err
}

func (f *fakeTranscriber) TranscribeUpload(ctx context.Context, audio io.Reader, language string) (string, *transcription.Metadata, error) {
	f.lastLang = language
	f.gotBytes, _ = io.ReadAll(audio)
	return f.text, f.meta, f.err
}

func (f *fakeTranscriber) Transcribe(ctx context.Context, path string) (string, error) {
	return f.text, f.err
}

type fakeTranslator struct {
	detection  *translation.Detection
	translated string
	err        error
}

func (f *fakeTranslator) Name() string                       { return "fake" }
func (f *fakeTranslator) IsAvailable(ctx context.Context) bool { return true }

func (f *fakeTranslator) DetectLanguage(ctx context.Context, text string) (*translation.Detection, error) {
	return f.detection, f.err
}

func (f *fakeTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	return f.translated, f.err
}

func newRouter(h *Handler) *gin.Engine {
	r := gin.New()
	h.RegisterRoutes(r)
	return r
}

func multipartAudio(t *testing.T, audio []byte, language string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("audio", "clip.webm")
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := part.Write(audio); err != nil {
		t.Fatalf("write form file: %v", err)
	}
	if language != "" {
		if err := w.WriteField("language", language); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close writer: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestTranscribeEndpoint(t *testing.T) {
	svc := &fakeTranscriber{
		text: "hello world",
		meta: &transcription.Metadata{
			Language:   "en",
			Confidence: 0.92,
			Duration:   3.4,
			Segments:   2,
		},
	}
	r := newRouter(NewHandler(svc))

	body, contentType := multipartAudio(t, []byte("fake audio bytes"), "en")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data TranscribeResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Text != "hello world" {
		t.Errorf("expected text 'hello world', got %q", resp.Data.Text)
	}
	if resp.Data.Metadata == nil || resp.Data.Metadata.Confidence != 0.92 {
		t.Errorf("unexpected metadata: %+v", resp.Data.Metadata)
	}
	if svc.lastLang != "en" {
		t.Errorf("expected language 'en' passed through, got %q", svc.lastLang)
	}
	if string(svc.gotBytes) != "fake audio bytes" {
		t.Errorf("upload bytes not delivered to service: %q", svc.gotBytes)
	}
}

func TestTranscribeMissingAudio(t *testing.T) {
	r := newRouter(NewHandler(&fakeTranscriber{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", strings.NewReader(""))
	req.Header.Set("Content-Type", "multipart/form-data; boundary=xyz")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var resp errors.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error.Code != errors.ErrCodeMissingField {
		t.Errorf("expected missing-field error code, got %s", resp.Error.Code)
	}
}

func TestTranscribeInvalidLanguage(t *testing.T) {
	svc := &fakeTranscriber{text: "should not be called"}
	r := newRouter(NewHandler(svc))

	body, contentType := multipartAudio(t, []byte("audio"), "not a language!")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d: %s", rec.Code, rec.Body.String())
	}
	if svc.gotBytes != nil {
		t.Error("service should not be invoked on invalid language")
	}
}

func TestTranscribeServiceError(t *testing.T) {
	svc := &fakeTranscriber{err: errors.FileNotFound("/tmp/gone.webm")}
	r := newRouter(NewHandler(svc))

	body, contentType := multipartAudio(t, []byte("audio"), "")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/transcribe", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var resp errors.ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Error.Code != errors.ErrCodeNotFound {
		t.Errorf("expected not-found code, got %s", resp.Error.Code)
	}
}

func TestTranslateEndpoint(t *testing.T) {
	tr := &fakeTranslator{translated: "merhaba"}
	r := newRouter(NewHandler(&fakeTranscriber{}, WithTranslator(tr)))

	body := `{"text":"hello","target":"tr"}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data TranslateResponse `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.TranslatedText != "merhaba" {
		t.Errorf("expected 'merhaba', got %q", resp.Data.TranslatedText)
	}
	if resp.Data.Target != "tr" {
		t.Errorf("expected target 'tr', got %q", resp.Data.Target)
	}
}

func TestTranslateMissingTarget(t *testing.T) {
	r := newRouter(NewHandler(&fakeTranscriber{}, WithTranslator(&fakeTranslator{})))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestDetectLanguageEndpoint(t *testing.T) {
	tr := &fakeTranslator{detection: &translation.Detection{Language: "en", Confidence: 0.98}}
	r := newRouter(NewHandler(&fakeTranscriber{}, WithTranslator(tr)))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/detect-language", strings.NewReader(`{"text":"hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Data translation.Detection `json:"data"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if resp.Data.Language != "en" || resp.Data.Confidence != 0.98 {
		t.Errorf("unexpected detection: %+v", resp.Data)
	}
}

func TestTranslationRoutesAbsentWithoutTranslator(t *testing.T) {
	r := newRouter(NewHandler(&fakeTranscriber{}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/translate", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unregistered route, got %d", rec.Code)
	}
}

type fakeLoaded bool

func (f fakeLoaded) Loaded() bool { return bool(f) }

func TestModelHealth(t *testing.T) {
	h := ModelHealth(fakeLoaded(true), "base")
	if h.Status != observability.HealthStatusUp {
		t.Errorf("expected up, got %s", h.Status)
	}
	if h.Details["model_size"] != "base" {
		t.Errorf("expected model_size detail, got %v", h.Details)
	}

	h = ModelHealth(fakeLoaded(false), "base")
	if h.Status != observability.HealthStatusDegraded {
		t.Errorf("expected degraded before first load, got %s", h.Status)
	}
}
