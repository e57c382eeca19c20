// Package libre implements a translation backend backed by a LibreTranslate
// HTTP sidecar.
package libre

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/skillsenselab/speechkit/provider"
	"github.com/skillsenselab/speechkit/translation"
)

const (
	// ProviderName is the registered name for the LibreTranslate provider.
	ProviderName = "libre"

	defaultURL     = "http://localhost:5000"
	defaultTimeout = 30 * time.Second
)

// Config holds configuration for the LibreTranslate provider.
type Config struct {
	URL     string        `json:"url" yaml:"url" mapstructure:"url"`
	APIKey  string        `json:"api_key" yaml:"api_key" mapstructure:"api_key"`
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Provider implements translation.Provider using a LibreTranslate sidecar.
type Provider struct {
	cfg    Config
	client *http.Client
}

var _ translation.Provider = (*Provider)(nil)

// New creates a LibreTranslate provider.
func New(cfg Config) *Provider {
	if cfg.URL == "" {
		cfg.URL = defaultURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Provider{
		cfg:    cfg,
		client: &http.Client{Timeout: cfg.Timeout},
	}
}

// Factory returns a provider.Factory that creates LibreTranslate providers
// from a generic config map.
func Factory() provider.Factory[translation.Provider] {
	return func(cfg map[string]any) (translation.Provider, error) {
		lc := Config{}
		if v, ok := cfg["url"].(string); ok {
			lc.URL = v
		}
		if v, ok := cfg["api_key"].(string); ok {
			lc.APIKey = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			lc.Timeout = v
		}
		return New(lc), nil
	}
}

// Name returns the provider name.
func (p *Provider) Name() string { return ProviderName }

// IsAvailable checks if the LibreTranslate sidecar is reachable.
func (p *Provider) IsAvailable(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.cfg.URL+"/languages", nil)
	if err != nil {
		return false
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// DetectLanguage identifies the language of the given text.
func (p *Provider) DetectLanguage(ctx context.Context, text string) (*translation.Detection, error) {
	payload := map[string]string{"q": text}
	if p.cfg.APIKey != "" {
		payload["api_key"] = p.cfg.APIKey
	}

	var detections []struct {
		Language   string  `json:"language"`
		Confidence float64 `json:"confidence"`
	}
	if err := p.post(ctx, "/detect", payload, &detections); err != nil {
		return nil, err
	}
	if len(detections) == 0 {
		return &translation.Detection{Language: "unknown"}, nil
	}

	// LibreTranslate reports confidence as a percentage.
	return &translation.Detection{
		Language:   detections[0].Language,
		Confidence: detections[0].Confidence / 100,
	}, nil
}

// Translate converts text between languages. An empty source auto-detects.
func (p *Provider) Translate(ctx context.Context, text, source, target string) (string, error) {
	if source == "" {
		source = "auto"
	}
	payload := map[string]string{
		"q":      text,
		"source": source,
		"target": target,
		"format": "text",
	}
	if p.cfg.APIKey != "" {
		payload["api_key"] = p.cfg.APIKey
	}

	var result struct {
		TranslatedText string `json:"translatedText"`
	}
	if err := p.post(ctx, "/translate", payload, &result); err != nil {
		return "", err
	}
	return result.TranslatedText, nil
}

func (p *Provider) post(ctx context.Context, path string, payload, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.cfg.URL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("translation request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		data, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("translation error (status %d): %s", resp.StatusCode, string(data))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode translation response: %w", err)
	}
	return nil
}
