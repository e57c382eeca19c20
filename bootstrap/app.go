package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/skillsenselab/speechkit/logger"
	"github.com/skillsenselab/speechkit/observability"
)

// App drives a service through a uniform lifecycle: start components, run
// hooks, serve, shut down in reverse. The type parameter C is the config
// type; any struct embedding config.ServiceConfig satisfies Config.
//
//	app, err := bootstrap.NewApp(&cfg)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*serviceConfig]) error {
//	    // a.Cfg is fully typed
//	    return nil
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name       string
	Version    string
	Cfg        C
	Components *Registry
	Logger     *logger.Logger

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp validates the config, applies its defaults and builds the App with
// an initialized logger.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	base := cfg.GetServiceConfig()

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		Components:      NewRegistry(),
		gracefulTimeout: 15 * time.Second,
	}

	s := applyOptions(opts)
	if s.shutdownTimeout > 0 {
		app.gracefulTimeout = s.shutdownTimeout
	}
	if s.log != nil {
		app.Logger = s.log
	} else {
		logger.Init(base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	return app, nil
}

// RegisterComponent adds a component to the application's registry.
func (a *App[C]) RegisterComponent(c Component) error {
	return a.Components.Register(c)
}

// OnConfigure registers a callback for the configure phase, after the
// infrastructure components are up. Business wiring belongs here.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// ReadyCheck fails when any component reports down. Degraded components
// pass; a lazily loaded model is degraded until its first request.
func (a *App[C]) ReadyCheck(ctx context.Context) error {
	var down []string
	for _, h := range a.Components.HealthAll(ctx) {
		if h.Status != observability.HealthStatusDown {
			continue
		}
		detail := h.Name
		if h.Message != "" {
			detail += "(" + h.Message + ")"
		}
		down = append(down, detail)
	}
	if len(down) > 0 {
		return fmt.Errorf("unhealthy components: %v", down)
	}
	return nil
}

// Run executes the lifecycle of a long-running service: start everything,
// block until a shutdown signal, then stop everything.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		return err
	}
	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)
	return a.stop()
}

// RunTask runs a finite task inside the same lifecycle. Instead of blocking
// on signals it cancels the task's context when one arrives, then shuts
// down once the task returns. Meant for CLI tools and one-shot jobs.
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh, stop := a.notifySignals()
	defer stop()
	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", map[string]interface{}{
				"signal": sig.String(),
			})
			cancel()
		case <-taskCtx.Done():
		}
	}()

	taskErr := task(taskCtx)
	if stopErr := a.stop(); stopErr != nil && taskErr == nil {
		return stopErr
	}
	return taskErr
}

// startup is the initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()
	a.Logger.Info("Starting application", map[string]interface{}{
		"name":    a.Name,
		"version": a.Version,
	})

	steps := []struct {
		name string
		fn   func(context.Context) error
	}{
		{"initialization", a.Components.StartAll},
		{"onStart hook", func(ctx context.Context) error { return runHooks(ctx, a.onStart) }},
		{"configuration", a.configure},
		{"ready check", a.readyCheckStep},
		{"onReady hook", func(ctx context.Context) error { return runHooks(ctx, a.onReady) }},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return fmt.Errorf("%s failed: %w", step.name, err)
		}
	}

	a.Logger.Info("Application started", map[string]interface{}{
		"name":       a.Name,
		"version":    a.Version,
		"components": len(a.Components.All()),
		"startup":    time.Since(start).String(),
	})
	return nil
}

// readyCheckStep never fails the startup: lazy components report degraded
// or down until first use, so issues are logged and startup proceeds.
func (a *App[C]) readyCheckStep(ctx context.Context) error {
	if err := a.ReadyCheck(ctx); err != nil {
		a.Logger.Warn("Ready check reported issues", map[string]interface{}{
			"error": err.Error(),
		})
	}
	return nil
}

func (a *App[C]) configure(ctx context.Context) error {
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return err
		}
	}
	return nil
}

func (a *App[C]) notifySignals() (chan os.Signal, func()) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	return sigCh, func() { signal.Stop(sigCh) }
}

// WaitForSignal blocks until an interrupt/terminate signal or context
// cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh, stop := a.notifySignals()
	defer stop()

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal", map[string]interface{}{
			"signal": sig.String(),
		})
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown stops the application. Use it when managing your own lifecycle
// instead of Run.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// stop runs OnStop hooks and stops all components within the graceful
// timeout, reporting the first error but always finishing the sequence.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", map[string]interface{}{
		"timeout": a.gracefulTimeout.String(),
	})

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var firstErr error
	record := func(msg string, err error) {
		if err == nil {
			return
		}
		a.Logger.Error(msg, map[string]interface{}{"error": err.Error()})
		if firstErr == nil {
			firstErr = err
		}
	}

	record("OnStop hook error", runHooks(ctx, a.onStop))
	record("Shutdown completed with errors", a.Components.StopAll(ctx))

	a.Logger.Info("Application shutdown complete")
	return firstErr
}
