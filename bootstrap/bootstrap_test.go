package bootstrap

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/skillsenselab/speechkit/config"
	"github.com/skillsenselab/speechkit/observability"
)

type testConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
}

func newTestConfig(name string) *testConfig {
	cfg := &testConfig{}
	cfg.Name = name
	cfg.Version = "1.0.0"
	cfg.Environment = "development"
	return cfg
}

type mockComponent struct {
	name     string
	startErr error
	stopErr  error
	status   observability.HealthStatus

	mu      sync.Mutex
	started bool
	stopped bool
}

func (m *mockComponent) Name() string { return m.name }

func (m *mockComponent) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.startErr != nil {
		return m.startErr
	}
	m.started = true
	return nil
}

func (m *mockComponent) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
	return m.stopErr
}

func (m *mockComponent) Health(ctx context.Context) observability.Health {
	status := m.status
	if status == "" {
		status = observability.HealthStatusUp
	}
	return observability.Health{Name: m.name, Status: status}
}

func TestNewApp(t *testing.T) {
	app, err := NewApp(newTestConfig("test-service"))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.Name != "test-service" {
		t.Errorf("expected name 'test-service', got %q", app.Name)
	}
	if app.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", app.Version)
	}
	if app.Components == nil {
		t.Error("expected non-nil component registry")
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := &testConfig{} // missing name
	if _, err := NewApp(cfg); err == nil {
		t.Error("expected validation error for missing service name")
	}
}

func TestWithGracefulTimeout(t *testing.T) {
	app, err := NewApp(newTestConfig("svc"), WithGracefulTimeout(3*time.Second))
	if err != nil {
		t.Fatalf("NewApp: %v", err)
	}
	if app.gracefulTimeout != 3*time.Second {
		t.Errorf("expected 3s graceful timeout, got %v", app.gracefulTimeout)
	}
}

func TestRegisterComponent(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"))

	c := &mockComponent{name: "server"}
	if err := app.RegisterComponent(c); err != nil {
		t.Fatalf("RegisterComponent: %v", err)
	}
	if err := app.RegisterComponent(&mockComponent{name: "server"}); err == nil {
		t.Error("expected error for duplicate component name")
	}
}

func TestRegistryStartStopOrder(t *testing.T) {
	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		order = append(order, s)
		mu.Unlock()
	}

	reg := NewRegistry()
	for _, name := range []string{"a", "b", "c"} {
		name := name
		reg.Register(&orderedComponent{name: name, record: record})
	}

	ctx := context.Background()
	if err := reg.StartAll(ctx); err != nil {
		t.Fatalf("StartAll: %v", err)
	}
	if err := reg.StopAll(ctx); err != nil {
		t.Fatalf("StopAll: %v", err)
	}

	want := []string{"start:a", "start:b", "start:c", "stop:c", "stop:b", "stop:a"}
	if len(order) != len(want) {
		t.Fatalf("expected %d events, got %d: %v", len(want), len(order), order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], order[i])
		}
	}
}

type orderedComponent struct {
	name   string
	record func(string)
}

func (o *orderedComponent) Name() string { return o.name }
func (o *orderedComponent) Start(ctx context.Context) error {
	o.record("start:" + o.name)
	return nil
}
func (o *orderedComponent) Stop(ctx context.Context) error {
	o.record("stop:" + o.name)
	return nil
}
func (o *orderedComponent) Health(ctx context.Context) observability.Health {
	return observability.Health{Name: o.name, Status: observability.HealthStatusUp}
}

func TestRegistryStopSkipsUnstarted(t *testing.T) {
	reg := NewRegistry()
	ok := &mockComponent{name: "ok"}
	failing := &mockComponent{name: "failing", startErr: errors.New("boom")}
	never := &mockComponent{name: "never"}
	reg.Register(ok)
	reg.Register(failing)
	reg.Register(never)

	ctx := context.Background()
	if err := reg.StartAll(ctx); err == nil {
		t.Fatal("expected StartAll to fail")
	}
	if err := reg.StopAll(ctx); err != nil {
		t.Fatalf("StopAll: %v", err)
	}
	if !ok.stopped {
		t.Error("started component should be stopped")
	}
	if never.stopped {
		t.Error("unstarted component should not be stopped")
	}
}

func TestReadyCheck(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"))
	app.RegisterComponent(&mockComponent{name: "up"})
	app.RegisterComponent(&mockComponent{name: "warm", status: observability.HealthStatusDegraded})

	if err := app.ReadyCheck(context.Background()); err != nil {
		t.Errorf("degraded components should not fail ready check: %v", err)
	}

	app.RegisterComponent(&mockComponent{name: "dead", status: observability.HealthStatusDown})
	if err := app.ReadyCheck(context.Background()); err == nil {
		t.Error("expected ready check failure with a down component")
	}
}

func TestHooks(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"))

	var events []string
	app.OnStart(func(ctx context.Context) error {
		events = append(events, "start")
		return nil
	})
	app.OnReady(func(ctx context.Context) error {
		events = append(events, "ready")
		return nil
	})
	app.OnStop(func(ctx context.Context) error {
		events = append(events, "stop")
		return nil
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		events = append(events, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask: %v", err)
	}

	want := []string{"start", "ready", "task", "stop"}
	if len(events) != len(want) {
		t.Fatalf("expected events %v, got %v", want, events)
	}
	for i := range want {
		if events[i] != want[i] {
			t.Errorf("event %d: expected %s, got %s", i, want[i], events[i])
		}
	}
}

func TestOnStartHookError(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"))
	app.OnStart(func(ctx context.Context) error {
		return errors.New("hook failed")
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		t.Error("task should not run after hook failure")
		return nil
	})
	if err == nil {
		t.Error("expected error from failing OnStart hook")
	}
}

func TestRunTaskError(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"))
	c := &mockComponent{name: "server"}
	app.RegisterComponent(c)

	taskErr := errors.New("task boom")
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return taskErr
	})
	if !errors.Is(err, taskErr) {
		t.Errorf("expected task error, got %v", err)
	}
	if !c.stopped {
		t.Error("components should be stopped even when the task fails")
	}
}

func TestOnConfigure(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"))

	configured := false
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		if a.Cfg.Name != "svc" {
			t.Errorf("expected typed config access, got name %q", a.Cfg.Name)
		}
		configured = true
		return nil
	})

	if err := app.RunTask(context.Background(), func(ctx context.Context) error { return nil }); err != nil {
		t.Fatalf("RunTask: %v", err)
	}
	if !configured {
		t.Error("OnConfigure callback did not run")
	}
}

func TestWaitForSignalContextCancellation(t *testing.T) {
	app, _ := NewApp(newTestConfig("svc"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.WaitForSignal(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("WaitForSignal did not return on context cancellation")
	}
}
