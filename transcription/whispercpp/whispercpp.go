// Package whispercpp implements a transcription backend that shells out to
// the whisper.cpp CLI.
//
// Model artefacts are ggml files resolved by size from a model directory
// (ggml-tiny.bin, ggml-base.bin, ...). Inference runs as a subprocess with
// JSON output parsed from the sidecar file the CLI writes.
package whispercpp

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/skillsenselab/speechkit/errors"
	"github.com/skillsenselab/speechkit/process"
	"github.com/skillsenselab/speechkit/provider"
	"github.com/skillsenselab/speechkit/transcription"
)

const (
	// BackendName is the registered name for the whisper.cpp backend.
	BackendName = "whispercpp"

	defaultBinary  = "whisper-cli"
	defaultTimeout = 10 * time.Minute
)

// Config holds configuration for the whisper.cpp backend.
type Config struct {
	// Binary is the whisper.cpp CLI executable (resolved via PATH when
	// not absolute).
	Binary string `json:"binary" yaml:"binary" mapstructure:"binary"`
	// ModelDir holds the ggml model files.
	ModelDir string `json:"model_dir" yaml:"model_dir" mapstructure:"model_dir"`
	// Threads limits inference threads. Zero lets the CLI decide.
	Threads int `json:"threads" yaml:"threads" mapstructure:"threads"`
	// Timeout bounds a single transcription run.
	Timeout time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
}

// Backend runs whisper.cpp as a subprocess.
type Backend struct {
	cfg Config
}

var _ transcription.Backend = (*Backend)(nil)

// New creates a whisper.cpp backend.
func New(cfg Config) *Backend {
	if cfg.Binary == "" {
		cfg.Binary = defaultBinary
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	return &Backend{cfg: cfg}
}

// Factory returns a provider.Factory that creates whisper.cpp backends
// from a generic config map.
func Factory() provider.Factory[transcription.Backend] {
	return func(cfg map[string]any) (transcription.Backend, error) {
		wc := Config{}
		if v, ok := cfg["binary"].(string); ok {
			wc.Binary = v
		}
		if v, ok := cfg["model_dir"].(string); ok {
			wc.ModelDir = v
		}
		if v, ok := cfg["threads"].(int); ok {
			wc.Threads = v
		}
		if v, ok := cfg["timeout"].(time.Duration); ok {
			wc.Timeout = v
		}
		return New(wc), nil
	}
}

// Name returns the backend name.
func (b *Backend) Name() string { return BackendName }

// IsAvailable reports whether the CLI binary can be resolved.
func (b *Backend) IsAvailable(ctx context.Context) bool {
	_, err := exec.LookPath(b.cfg.Binary)
	return err == nil
}

// ModelPath resolves the ggml artefact for a model size.
func (b *Backend) ModelPath(size transcription.ModelSize) string {
	return filepath.Join(b.cfg.ModelDir, "ggml-"+string(size)+".bin")
}

// Load verifies the binary and model artefact exist and returns a handle
// bound to the artefact. Nothing is pinned in memory; the CLI loads the
// model per run.
func (b *Backend) Load(ctx context.Context, size transcription.ModelSize) (transcription.Model, error) {
	if _, err := exec.LookPath(b.cfg.Binary); err != nil {
		return nil, errors.ModelLoadFailed(string(size), fmt.Errorf("whisper.cpp binary: %w", err))
	}
	modelPath := b.ModelPath(size)
	if _, err := os.Stat(modelPath); err != nil {
		return nil, errors.ModelLoadFailed(string(size), fmt.Errorf("model artefact %s: %w", modelPath, err))
	}
	return &model{backend: b, modelPath: modelPath}, nil
}

// model is a handle bound to a ggml artefact.
type model struct {
	backend   *Backend
	modelPath string
}

// Transcribe runs the CLI and parses its JSON output file.
func (m *model) Transcribe(ctx context.Context, audioPath string, opts transcription.Options) (*transcription.Result, error) {
	outBase := filepath.Join(os.TempDir(), "whispercpp-"+uuid.NewString())
	outFile := outBase + ".json"
	defer os.Remove(outFile)

	result, err := process.Run(ctx, process.Command{
		Binary:  m.backend.cfg.Binary,
		Args:    m.args(audioPath, outBase, opts),
		Timeout: m.backend.cfg.Timeout,
	})
	if err != nil {
		return nil, fmt.Errorf("whisper.cpp run: %w (stderr: %s)", err, truncate(result, 512))
	}

	data, err := os.ReadFile(outFile)
	if err != nil {
		return nil, fmt.Errorf("read whisper.cpp output: %w", err)
	}
	return parseOutput(data)
}

// args builds the CLI argument list. The language flag is omitted entirely
// when no hint was given so the CLI auto-detects.
func (m *model) args(audioPath, outBase string, opts transcription.Options) []string {
	args := []string{
		"-m", m.modelPath,
		"-f", audioPath,
		"--output-json",
		"--output-file", outBase,
		"--no-prints",
	}
	if opts.Language != "" {
		args = append(args, "-l", opts.Language)
	}
	if t := m.backend.cfg.Threads; t > 0 {
		args = append(args, "-t", strconv.Itoa(t))
	}
	return args
}

func truncate(r *process.Result, n int) string {
	if r == nil {
		return ""
	}
	s := string(r.Stderr)
	if len(s) > n {
		return s[:n] + "..."
	}
	return s
}

// --- whisper.cpp JSON output ---

type cliOutput struct {
	Result struct {
		Language string `json:"language"`
	} `json:"result"`
	Transcription []cliSegment `json:"transcription"`
}

type cliSegment struct {
	Offsets struct {
		From int64 `json:"from"` // milliseconds
		To   int64 `json:"to"`
	} `json:"offsets"`
	Text string `json:"text"`
}

// parseOutput decodes the CLI's JSON file. whisper.cpp reports no per
// segment speech probability, so NoSpeechProb stays nil.
func parseOutput(data []byte) (*transcription.Result, error) {
	var out cliOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("parse whisper.cpp output: %w", err)
	}

	res := &transcription.Result{
		Language: out.Result.Language,
		Segments: make([]transcription.Segment, len(out.Transcription)),
	}
	text := ""
	for i, seg := range out.Transcription {
		res.Segments[i] = transcription.Segment{
			Start: float64(seg.Offsets.From) / 1000,
			End:   float64(seg.Offsets.To) / 1000,
			Text:  seg.Text,
		}
		text += seg.Text
	}
	res.Text = text
	return res, nil
}
