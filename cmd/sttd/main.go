// Command sttd runs the speechkit transcription service: an HTTP API over a
// lazily loaded speech model with optional translation support.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/skillsenselab/speechkit/api"
	"github.com/skillsenselab/speechkit/bootstrap"
	"github.com/skillsenselab/speechkit/config"
	"github.com/skillsenselab/speechkit/logger"
	"github.com/skillsenselab/speechkit/observability"
	"github.com/skillsenselab/speechkit/server"
	"github.com/skillsenselab/speechkit/transcription"
	"github.com/skillsenselab/speechkit/transcription/whisper"
	"github.com/skillsenselab/speechkit/transcription/whispercpp"
	"github.com/skillsenselab/speechkit/translation/libre"
)

func main() {
	var cfg Config
	if err := config.LoadConfig("sttd", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	app, err := bootstrap.NewApp(&cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize application: %v\n", err)
		os.Exit(1)
	}

	if err := run(context.Background(), app); err != nil {
		app.Logger.Error("Service failed", logger.ErrorFields("run", err))
		os.Exit(1)
	}
}

func run(ctx context.Context, app *bootstrap.App[*Config]) error {
	cfg := app.Cfg

	backend, err := buildBackend(cfg)
	if err != nil {
		return err
	}

	size := cfg.ModelSize()
	var lazyOpts []transcription.LazyOption
	if cfg.Speech.TempDir != "" {
		lazyOpts = append(lazyOpts, transcription.WithLazyTempDir(cfg.Speech.TempDir))
	}
	svc := transcription.NewLazyService(backend, size, lazyOpts...)

	var handlerOpts []api.HandlerOption
	if cfg.Telemetry.Enabled {
		metrics, err := initTelemetry(ctx, app)
		if err != nil {
			return err
		}
		handlerOpts = append(handlerOpts, api.WithMetrics(metrics, string(size)))
	}
	if cfg.Translation.Enabled {
		handlerOpts = append(handlerOpts, api.WithTranslator(libre.New(cfg.Translation.Libre)))
	}

	srv := server.New(cfg.Server, app.Logger)
	checker := func(ctx context.Context) []observability.Health {
		return []observability.Health{
			api.ModelHealth(svc, string(size)),
			backendHealth(ctx, backend),
		}
	}
	srv.ApplyDefaults(cfg.Name, checker)
	api.NewHandler(svc, handlerOpts...).RegisterRoutes(srv.GinEngine())

	if err := app.RegisterComponent(&serverComponent{srv: srv}); err != nil {
		return err
	}

	app.Logger.Info("Transcription service configured", map[string]interface{}{
		"backend":    backend.Name(),
		"model_size": string(size),
		"addr":       srv.Addr(),
	})

	return app.Run(ctx)
}

// buildBackend registers both transcription engines with the provider
// manager and returns the configured one.
func buildBackend(cfg *Config) (transcription.Backend, error) {
	mgr := transcription.NewManager()
	mgr.Register(whisper.BackendName, whisper.Factory())
	mgr.Register(whispercpp.BackendName, whispercpp.Factory())

	if err := mgr.Initialize(whisper.BackendName, map[string]any{
		"url":     cfg.Speech.Whisper.URL,
		"timeout": cfg.Speech.Whisper.Timeout,
	}); err != nil {
		return nil, fmt.Errorf("initializing whisper backend: %w", err)
	}
	if err := mgr.Initialize(whispercpp.BackendName, map[string]any{
		"binary":    cfg.Speech.WhisperCPP.Binary,
		"model_dir": cfg.Speech.WhisperCPP.ModelDir,
		"threads":   cfg.Speech.WhisperCPP.Threads,
		"timeout":   cfg.Speech.WhisperCPP.Timeout,
	}); err != nil {
		return nil, fmt.Errorf("initializing whispercpp backend: %w", err)
	}
	if err := mgr.SetDefault(cfg.Speech.Backend); err != nil {
		return nil, err
	}
	return mgr.GetByName(cfg.Speech.Backend)
}

// initTelemetry wires OTLP metric and trace export and returns the speech
// metrics recorder. Providers are shut down via an OnStop hook.
func initTelemetry(ctx context.Context, app *bootstrap.App[*Config]) (*observability.SpeechMetrics, error) {
	cfg := app.Cfg

	mp, err := observability.InitMeter(ctx, &observability.MeterConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		Interval:       15 * time.Second,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing meter provider: %w", err)
	}

	tp, err := observability.InitTracer(ctx, observability.TracerConfig{
		ServiceName:    cfg.Name,
		ServiceVersion: cfg.Version,
		Environment:    cfg.Environment,
		Endpoint:       cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
		SampleRate:     1.0,
	})
	if err != nil {
		return nil, fmt.Errorf("initializing tracer provider: %w", err)
	}

	app.OnStop(func(ctx context.Context) error {
		if err := tp.Shutdown(ctx); err != nil {
			app.Logger.Warn("Tracer shutdown error", logger.ErrorFields("telemetry", err))
		}
		return mp.Shutdown(ctx)
	})

	return observability.NewSpeechMetrics(observability.Meter(cfg.Name))
}

// backendHealth reports whether the transcription engine is reachable.
// An unreachable backend is degraded rather than down: the whispercpp
// binary or sidecar may come up after the service.
func backendHealth(ctx context.Context, b transcription.Backend) observability.Health {
	h := observability.Health{
		Name:   "backend",
		Status: observability.HealthStatusUp,
		Details: map[string]string{
			"engine": b.Name(),
		},
	}
	if !b.IsAvailable(ctx) {
		h.Status = observability.HealthStatusDegraded
		h.Message = "engine not reachable"
	}
	return h
}

// serverComponent adapts the HTTP server to the bootstrap lifecycle.
type serverComponent struct {
	srv *server.Server
}

func (c *serverComponent) Name() string { return "http-server" }

func (c *serverComponent) Start(ctx context.Context) error {
	return c.srv.Start(ctx)
}

func (c *serverComponent) Stop(ctx context.Context) error {
	return c.srv.Stop(ctx)
}

func (c *serverComponent) Health(ctx context.Context) observability.Health {
	return observability.Health{
		Name:    "http-server",
		Status:  observability.HealthStatusUp,
		Details: map[string]string{"addr": c.srv.Addr()},
	}
}
