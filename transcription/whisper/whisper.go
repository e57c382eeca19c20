// Package whisper implements a transcription backend backed by a
// faster-whisper HTTP sidecar.
//
// The sidecar exposes POST /load to pin a model into memory, POST
// /transcribe for inference, and GET /health. Models are loaded CPU-only at
// full precision so the service runs anywhere.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/skillsenselab/speechkit/errors"
	"github.com/skillsenselab/speechkit/provider"
	"github.com/skillsenselab/speechkit/transcription"
)

const (
	// BackendName is the registered name for the whisper backend.
	BackendName = "whisper"

	defaultURL     = "http://localhost:8387"
	defaultTimeout = 120 * time.Second

	// CPU-only, full-precision: the portability default. There is no
	// GPU switch; hosts without CUDA must still serve.
	device      = "cpu"
	computeType = "float32"
)

// Config holds configuration for the whisper sidecar backend.
type Config struct {
	URL     string        `json:"url" yaml:"url" mapstructure:"url"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Backend talks to a faster-whisper sidecar.
type Backend struct {
	cfg    Config
	client *http.Client
}

var _ transcription.Backend = (*Backend)(nil)

// New creates a whisper backend.
func New(cfg Config) *Backend {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Backend{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Factory returns a provider.Factory that creates whisper backends from a
// generic config map.
func Factory() provider.Factory[transcription.Backend] {
	return func(cfg map[string]any) (transcription.Backend, error) {
		wc := Config{}
		if v, ok := cfg["url"].(string); ok {
			wc.URL = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			wc.Timeout = v
		}
		return New(wc), nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string { return BackendName }

// IsAvailable checks if the sidecar is reachable.
func (b *Backend) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, b.cfg.URL+"/health", nil)
	if err != nil {
		return false
	}
	resp, err := b.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Load asks the sidecar to pin a model of the given size and returns a
// handle bound to it.
func (b *Backend) Load(ctx context.Context, size transcription.ModelSize) (transcription.Model, error) {
	payload, err := json.Marshal(map[string]string{
		"model":        string(size),
		"device":       device,
		"compute_type": computeType,
	})
	if err != nil {
		return nil, errors.ModelLoadFailed(string(size), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.cfg.URL+"/load", bytes.NewReader(payload))
	if err != nil {
		return nil, errors.ModelLoadFailed(string(size), err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, errors.ModelLoadFailed(string(size), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, errors.ModelLoadFailed(string(size),
			fmt.Errorf("sidecar load returned status %d: %s", resp.StatusCode, string(body)))
	}

	return &model{backend: b, size: size}, nil
}

// model is a handle bound to a loaded sidecar model.
type model struct {
	backend *Backend
	size    transcription.ModelSize
}

// Transcribe uploads the audio file and decodes the sidecar's response.
func (m *model) Transcribe(ctx context.Context, audioPath string, opts transcription.Options) (*transcription.Result, error) {
	audio, err := os.Open(audioPath)
	if err != nil {
		return nil, fmt.Errorf("open audio file: %w", err)
	}
	defer audio.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("audio", "audio"+uploadExt(audioPath))
	if err != nil {
		return nil, fmt.Errorf("create form file: %w", err)
	}
	if _, err := io.Copy(part, audio); err != nil {
		return nil, fmt.Errorf("copy audio data: %w", err)
	}

	_ = writer.WriteField("model", string(m.size))
	_ = writer.WriteField("task", opts.Task)
	_ = writer.WriteField("fp16", strconv.FormatBool(opts.FP16))
	if opts.Language != "" {
		_ = writer.WriteField("language", opts.Language)
	}
	writer.Close()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.backend.cfg.URL+"/transcribe", &buf)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := m.backend.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("whisper error (status %d): %s", resp.StatusCode, string(body))
	}

	var decoded sidecarResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode whisper response: %w", err)
	}

	return toResult(&decoded), nil
}

func uploadExt(path string) string {
	if ext := filepath.Ext(path); ext != "" {
		return ext
	}
	return ".webm"
}

// --- sidecar API response types ---

type sidecarResponse struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []sidecarSegment `json:"segments"`
}

type sidecarSegment struct {
	Start        float64  `json:"start"`
	End          float64  `json:"end"`
	Text         string   `json:"text"`
	NoSpeechProb *float64 `json:"no_speech_prob"`
}

func toResult(resp *sidecarResponse) *transcription.Result {
	segments := make([]transcription.Segment, len(resp.Segments))
	for i, seg := range resp.Segments {
		segments[i] = transcription.Segment{
			Start:        seg.Start,
			End:          seg.End,
			Text:         seg.Text,
			NoSpeechProb: seg.NoSpeechProb,
		}
	}
	return &transcription.Result{
		Text:     resp.Text,
		Language: resp.Language,
		Segments: segments,
	}
}
