package transcription

import (
	"context"
	"io"
	"os"
	"sync"

	"github.com/skillsenselab/speechkit/logger"
)

// LazyService is a process-shareable transcription handle that defers model
// loading until the first call that needs the model. A failed load leaves
// the handle unloaded so the next call retries; successes are cached for
// the life of the handle.
type LazyService struct {
	loader  Loader
	size    ModelSize
	log     *logger.Logger
	tempDir string

	mu    sync.RWMutex
	model Model
}

// LazyOption configures a LazyService.
type LazyOption func(*LazyService)

// WithLazyTempDir sets the directory used to stage uploads.
func WithLazyTempDir(dir string) LazyOption {
	return func(l *LazyService) { l.tempDir = dir }
}

// WithLazyLogger sets the service logger.
func WithLazyLogger(log *logger.Logger) LazyOption {
	return func(l *LazyService) { l.log = log }
}

// NewLazyService creates a handle that loads a model of the given size on
// first use.
func NewLazyService(loader Loader, size ModelSize, opts ...LazyOption) *LazyService {
	l := &LazyService{
		loader:  loader,
		size:    size,
		log:     logger.Get("transcription"),
		tempDir: os.TempDir(),
	}
	for _, o := range opts {
		o(l)
	}
	return l
}

// Loaded reports whether the model has been loaded. Used by readiness
// probes; it never triggers a load.
func (l *LazyService) Loaded() bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.model != nil
}

// Size returns the configured model size.
func (l *LazyService) Size() ModelSize { return l.size }

// getModel returns the loaded model, loading it on first use. Concurrent
// first calls serialize on the mutex so the loader runs at most once at a
// time; a load failure is returned to every waiter of that attempt and is
// not cached.
func (l *LazyService) getModel(ctx context.Context) (Model, error) {
	l.mu.RLock()
	m := l.model
	l.mu.RUnlock()
	if m != nil {
		return m, nil
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.model != nil {
		return l.model, nil
	}

	l.log.Info("loading model", logger.Fields(logger.FieldModelSize, string(l.size)))
	m, err := l.loader.Load(ctx, l.size)
	if err != nil {
		l.log.Error("model load failed", logger.ErrorFields("load", err))
		return nil, err
	}
	l.model = m
	l.log.Info("model loaded", logger.Fields(logger.FieldModelSize, string(l.size)))
	return m, nil
}

// TranscribeFile transcribes an audio file, loading the model first if
// needed. A missing file is reported without triggering a load.
func (l *LazyService) TranscribeFile(ctx context.Context, path, language string) (string, *Metadata, error) {
	if err := checkAudioFile(path); err != nil {
		return "", nil, err
	}
	m, err := l.getModel(ctx)
	if err != nil {
		return "", nil, err
	}
	return runModel(ctx, m, path, language, l.log)
}

// TranscribeUpload stages the upload to a temp file and transcribes it.
func (l *LazyService) TranscribeUpload(ctx context.Context, audio io.Reader, language string) (string, *Metadata, error) {
	path, cleanup, err := stageUpload(audio, l.tempDir, l.log)
	if err != nil {
		return "", nil, err
	}
	defer cleanup()
	return l.TranscribeFile(ctx, path, language)
}

// Transcribe is the legacy facade: transcribe a file and return only the text.
func (l *LazyService) Transcribe(ctx context.Context, path string) (string, error) {
	text, _, err := l.TranscribeFile(ctx, path, "")
	return text, err
}
