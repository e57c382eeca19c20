package transcription

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/skillsenselab/speechkit/errors"
	"github.com/skillsenselab/speechkit/logger"
)

// uploadSuffix is the extension given to staged uploads. Browser recordings
// arrive as WebM/Opus, which the model backends decode regardless of suffix.
const uploadSuffix = ".webm"

// Transcriber is the call contract shared by Service and LazyService.
type Transcriber interface {
	// TranscribeFile transcribes an audio file on disk. The language hint
	// may be empty to let the model auto-detect.
	TranscribeFile(ctx context.Context, path, language string) (string, *Metadata, error)

	// TranscribeUpload stages the reader's bytes to a temp file,
	// transcribes it, and removes the staged file regardless of outcome.
	TranscribeUpload(ctx context.Context, audio io.Reader, language string) (string, *Metadata, error)

	// Transcribe is the legacy text-only entry point.
	Transcribe(ctx context.Context, path string) (string, error)
}

var (
	_ Transcriber = (*Service)(nil)
	_ Transcriber = (*LazyService)(nil)
)

// Service wraps an already-loaded Model with the transcription call
// contract: existence checks, option assembly, result normalization, and
// upload staging.
type Service struct {
	model   Model
	log     *logger.Logger
	tempDir string
}

// ServiceOption configures a Service.
type ServiceOption func(*Service)

// WithTempDir sets the directory used to stage uploads. Defaults to
// os.TempDir().
func WithTempDir(dir string) ServiceOption {
	return func(s *Service) { s.tempDir = dir }
}

// WithLogger sets the service logger.
func WithLogger(l *logger.Logger) ServiceOption {
	return func(s *Service) { s.log = l }
}

// NewService creates a Service around a loaded model.
func NewService(model Model, opts ...ServiceOption) *Service {
	s := &Service{
		model:   model,
		log:     logger.Get("transcription"),
		tempDir: os.TempDir(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// TranscribeFile transcribes the audio file at path.
func (s *Service) TranscribeFile(ctx context.Context, path, language string) (string, *Metadata, error) {
	if err := checkAudioFile(path); err != nil {
		return "", nil, err
	}
	return runModel(ctx, s.model, path, language, s.log)
}

// TranscribeUpload stages the upload to a temp file and transcribes it.
func (s *Service) TranscribeUpload(ctx context.Context, audio io.Reader, language string) (string, *Metadata, error) {
	path, cleanup, err := stageUpload(audio, s.tempDir, s.log)
	if err != nil {
		return "", nil, err
	}
	defer cleanup()
	return s.TranscribeFile(ctx, path, language)
}

// Transcribe is the legacy facade: transcribe a file and return only the text.
func (s *Service) Transcribe(ctx context.Context, path string) (string, error) {
	text, _, err := s.TranscribeFile(ctx, path, "")
	return text, err
}

// checkAudioFile verifies the audio file exists before any model work.
func checkAudioFile(path string) error {
	if _, err := os.Stat(path); err != nil {
		return errors.FileNotFound(path).WithCause(err)
	}
	return nil
}

// runModel invokes the model and normalizes its result.
func runModel(ctx context.Context, m Model, path, language string, log *logger.Logger) (string, *Metadata, error) {
	opts := NewOptions(language)

	log.Debug("transcribing audio", logger.Fields(
		logger.FieldAudioPath, path,
		logger.FieldLanguage, language,
	))

	start := time.Now()
	res, err := m.Transcribe(ctx, path, opts)
	if err != nil {
		log.Error("transcription failed", logger.ErrorFields("transcribe", err))
		if _, ok := errors.AsAppError(err); ok {
			return "", nil, err
		}
		return "", nil, errors.TranscriptionFailed(err)
	}

	text, meta := normalizeResult(res)

	log.Info("transcription complete", logger.Fields(
		logger.FieldLanguage, meta.Language,
		logger.FieldSegments, meta.Segments,
		logger.FieldConfidence, meta.Confidence,
		logger.FieldDuration, time.Since(start).Milliseconds(),
	))
	return text, meta, nil
}

// normalizeResult turns a raw model result into the caller-facing text and
// metadata. Text is trimmed and never null; absent recognition yields "".
func normalizeResult(res *Result) (string, *Metadata) {
	text := ""
	var meta Metadata
	if res != nil {
		text = strings.TrimSpace(res.Text)
		meta.Language = res.Language
		if n := len(res.Segments); n > 0 {
			meta.Duration = res.Segments[n-1].End
			meta.Segments = n
		}
		meta.Confidence = EstimateConfidence(res.Segments)
	}
	if meta.Language == "" {
		meta.Language = "unknown"
	}
	return text, &meta
}

// stageUpload copies the reader to a uniquely-named temp file and returns
// its path with a cleanup func. Cleanup is best-effort: a failed removal is
// logged and never affects the transcription outcome.
func stageUpload(audio io.Reader, dir string, log *logger.Logger) (string, func(), error) {
	path := filepath.Join(dir, uuid.NewString()+uploadSuffix)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return "", nil, errors.Internal(err).WithDetail("stage", "create temp file")
	}

	cleanup := func() {
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Warn("failed to remove staged upload", logger.Fields(
				logger.FieldAudioPath, path,
				logger.FieldError, rmErr.Error(),
			))
		}
	}

	if _, err := io.Copy(f, audio); err != nil {
		f.Close()
		cleanup()
		return "", nil, errors.Internal(err).WithDetail("stage", "write upload")
	}
	// Flush to disk so the model process sees complete bytes.
	if err := f.Sync(); err != nil {
		f.Close()
		cleanup()
		return "", nil, errors.Internal(err).WithDetail("stage", "sync upload")
	}
	if err := f.Close(); err != nil {
		cleanup()
		return "", nil, errors.Internal(err).WithDetail("stage", "close upload")
	}

	return path, cleanup, nil
}
