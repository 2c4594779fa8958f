package bootstrap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/kbukum/dikit/config"
	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
)

// testConfig is a minimal config for testing that satisfies the Config interface.
type testConfig struct {
	config.ServiceConfig
}

func newTestConfig(name, version string) *testConfig {
	return &testConfig{
		ServiceConfig: config.ServiceConfig{
			Name:        name,
			Version:     version,
			Environment: "development",
		},
	}
}

func newTestApp(t *testing.T, cfg *testConfig, opts ...Option) *App[*testConfig] {
	t.Helper()
	opts = append([]Option{WithLogger(logger.Nop()), WithSummaryOutput(io.Discard)}, opts...)
	app, err := NewApp(cfg, opts...)
	if err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}
	return app
}

type greeter struct {
	greeting string
}

var greeterKey = di.NewKey[*greeter]("greeter")

func TestNewApp(t *testing.T) {
	app := newTestApp(t, newTestConfig("test-svc", "1.0.0"))

	if app.Name != "test-svc" {
		t.Errorf("expected name 'test-svc', got %q", app.Name)
	}
	if app.Version != "1.0.0" {
		t.Errorf("expected version '1.0.0', got %q", app.Version)
	}
	if app.Container == nil {
		t.Fatal("expected non-nil container")
	}
	if app.Logger == nil {
		t.Error("expected non-nil logger")
	}
	if app.Cfg.Name != "test-svc" {
		t.Errorf("expected cfg.Name 'test-svc', got %q", app.Cfg.Name)
	}
	if app.Container.Frozen() {
		t.Error("expected container to be open before startup")
	}
}

func TestNewAppRegistersBuiltins(t *testing.T) {
	app := newTestApp(t, newTestConfig("test-svc", "1.0.0"))

	for _, key := range []string{di.Pkg.Config, di.Pkg.Logger, di.Pkg.Container} {
		if !app.Container.Has(key) {
			t.Errorf("expected built-in key %q to be registered", key)
		}
	}

	cfg, err := di.Resolve(app.Container, ConfigKey[*testConfig]())
	if err != nil {
		t.Fatalf("resolving config: %v", err)
	}
	if cfg != app.Cfg {
		t.Error("expected the resolved config to be the app config")
	}

	log, err := di.Resolve(app.Container, LoggerKey)
	if err != nil {
		t.Fatalf("resolving logger: %v", err)
	}
	if log != app.Logger {
		t.Error("expected the resolved logger to be the app logger")
	}

	c, err := di.Resolve(app.Container, ContainerKey)
	if err != nil {
		t.Fatalf("resolving container: %v", err)
	}
	if c != app.Container {
		t.Error("expected the container to resolve to itself")
	}
}

func TestNewAppSeedsComponentLoggers(t *testing.T) {
	defer logger.Reset()
	var buf bytes.Buffer
	log := logger.NewWithWriter(&logger.Config{Level: "info", Format: "json"}, "test-svc", &buf)

	if _, err := NewApp(newTestConfig("test-svc", "1.0.0"), WithLogger(log), WithSummaryOutput(io.Discard)); err != nil {
		t.Fatalf("NewApp failed: %v", err)
	}

	for _, name := range []string{"di", "bootstrap", "diagnostics"} {
		buf.Reset()
		logger.Get(name).Info("hello")
		if !strings.Contains(buf.String(), `"component":"`+name+`"`) {
			t.Errorf("expected %s logger to write through the app logger, got %q", name, buf.String())
		}
	}
}

func TestNewAppValidation(t *testing.T) {
	cfg := &testConfig{
		ServiceConfig: config.ServiceConfig{Environment: "development"},
	}
	if _, err := NewApp(cfg, WithLogger(logger.Nop())); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestNewAppWithOptions(t *testing.T) {
	container := di.NewContainer(di.WithLogger(logger.Nop()))
	app := newTestApp(t, newTestConfig("test", "1.0"),
		WithGracefulTimeout(30*time.Second),
		WithContainer(container),
	)

	if app.gracefulTimeout != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", app.gracefulTimeout)
	}
	if app.Container != container {
		t.Error("expected custom container")
	}
}

func TestNewAppWithFrozenContainer(t *testing.T) {
	container := di.NewContainer(di.WithLogger(logger.Nop()))
	container.Freeze()

	_, err := NewApp(newTestConfig("test", "1.0"), WithLogger(logger.Nop()), WithContainer(container))
	if err == nil {
		t.Fatal("expected error for a frozen container")
	}
	if !di.IsFrozen(err) {
		t.Errorf("expected frozen error, got %v", err)
	}
}

func TestRunTaskLifecycleOrder(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))

	var order []string
	app.OnStart(func(ctx context.Context) error {
		order = append(order, "start")
		return nil
	})
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		order = append(order, "configure")
		return nil
	})
	app.OnReady(func(ctx context.Context) error {
		order = append(order, "ready")
		return nil
	})
	app.OnStop(func(ctx context.Context) error {
		order = append(order, "stop")
		return nil
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		order = append(order, "task")
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	want := "start,configure,ready,task,stop"
	if got := strings.Join(order, ","); got != want {
		t.Errorf("expected order %s, got %s", want, got)
	}
}

func TestRunTaskWithTelemetryEnabled(t *testing.T) {
	collector := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer collector.Close()

	prevTracer, prevMeter := otel.GetTracerProvider(), otel.GetMeterProvider()
	t.Cleanup(func() {
		otel.SetTracerProvider(prevTracer)
		otel.SetMeterProvider(prevMeter)
	})

	cfg := newTestConfig("telemetry-svc", "1.0")
	cfg.Telemetry.Enabled = true
	cfg.Telemetry.Insecure = true
	cfg.Telemetry.Endpoint = strings.TrimPrefix(collector.URL, "http://")
	app := newTestApp(t, cfg)

	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		return di.Register(a.Container, greeterKey, di.Singleton,
			di.WithFactory(func() *greeter { return &greeter{greeting: "hi"} }))
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		if app.Telemetry == nil || app.Telemetry.Tracer == nil || app.Telemetry.Meter == nil {
			return fmt.Errorf("expected telemetry providers to be running")
		}
		_, err := di.Resolve(app.Container, greeterKey)
		return err
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	phases := app.Summary.Phases()
	if len(phases) == 0 || phases[0].Name != "telemetry" {
		t.Fatalf("expected telemetry as first phase, got %+v", phases)
	}
	if !strings.HasPrefix(phases[0].Detail, "exporting to ") {
		t.Errorf("expected exporting detail, got %q", phases[0].Detail)
	}
}

func TestRunTaskConfigureThenFreeze(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))

	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		return di.Register(a.Container, greeterKey, di.Singleton,
			di.WithFactory(func() *greeter { return &greeter{greeting: "hello"} }))
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		g, err := di.ResolveContext(ctx, app.Container, greeterKey)
		if err != nil {
			return err
		}
		if g.greeting != "hello" {
			return fmt.Errorf("unexpected greeting %q", g.greeting)
		}

		lateErr := di.Register(app.Container, di.NewKey[*greeter]("late"), di.Transient)
		if !di.IsFrozen(lateErr) {
			return fmt.Errorf("expected frozen error, got %v", lateErr)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}
	if !app.Container.Frozen() {
		t.Error("expected container to be frozen after startup")
	}
}

func TestRunTaskAllowLateRegistration(t *testing.T) {
	cfg := newTestConfig("test", "1.0")
	cfg.Container.AllowLateRegistration = true
	app := newTestApp(t, cfg)

	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return di.Register(app.Container, greeterKey, di.Transient)
	})
	if err != nil {
		t.Fatalf("expected late registration to succeed, got %v", err)
	}
	if app.Container.Frozen() {
		t.Error("expected container to stay open")
	}
}

func TestRunTaskConfigureError(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))

	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		return di.Register(a.Container, greeterKey, di.Singleton)
	})
	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		return di.Register(a.Container, greeterKey, di.Singleton)
	})

	taskRan := false
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		taskRan = true
		return nil
	})
	if err == nil {
		t.Fatal("expected configure error")
	}
	if !di.IsDuplicateRegistration(err) {
		t.Errorf("expected duplicate registration error, got %v", err)
	}
	if taskRan {
		t.Error("expected task not to run after configure failure")
	}
}

func TestRunTaskError(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))

	stopped := false
	app.OnStop(func(ctx context.Context) error {
		stopped = true
		return nil
	})

	taskErr := fmt.Errorf("task failed")
	err := app.RunTask(context.Background(), func(ctx context.Context) error {
		return taskErr
	})
	if err != taskErr {
		t.Errorf("expected task error, got %v", err)
	}
	if !stopped {
		t.Error("expected OnStop hooks to run after a failed task")
	}
}

func TestRunTaskStopErrorReported(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	app.OnStop(func(ctx context.Context) error {
		return fmt.Errorf("drain failed")
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "drain failed") {
		t.Errorf("expected stop error, got %v", err)
	}
}

func TestOnStartHookError(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))
	app.OnStart(func(ctx context.Context) error {
		return fmt.Errorf("boom")
	})

	err := app.RunTask(context.Background(), func(ctx context.Context) error { return nil })
	if err == nil || !strings.Contains(err.Error(), "onStart hook failed") {
		t.Errorf("expected onStart error, got %v", err)
	}
}

func TestRunStopsOnContextCancel(t *testing.T) {
	app := newTestApp(t, newTestConfig("test", "1.0"))

	ctx, cancel := context.WithCancel(context.Background())
	app.OnReady(func(context.Context) error {
		cancel()
		return nil
	})

	done := make(chan error, 1)
	go func() { done <- app.Run(ctx) }()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("expected clean shutdown, got %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after context cancel")
	}
}

func TestSummaryDisplay(t *testing.T) {
	var buf bytes.Buffer
	app := newTestApp(t, newTestConfig("summary-svc", "2.0.0"), WithSummaryOutput(&buf))

	app.OnConfigure(func(ctx context.Context, a *App[*testConfig]) error {
		if err := di.Register(a.Container, greeterKey, di.Singleton); err != nil {
			return err
		}
		return di.Register(a.Container, di.NewKey[*greeter]("fresh_greeter"), di.Transient)
	})

	if err := app.RunTask(context.Background(), func(context.Context) error { return nil }); err != nil {
		t.Fatalf("RunTask failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{
		"summary-svc v2.0.0",
		"telemetry",
		"configure",
		"frozen",
		"greeter [singleton] *bootstrap.greeter",
		"fresh_greeter [transient]",
		"(5 registrations, frozen)",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("expected summary to contain %q, got:\n%s", want, out)
		}
	}

	phases := app.Summary.Phases()
	if len(phases) != 3 {
		t.Fatalf("expected 3 phases, got %d", len(phases))
	}
	if phases[1].Detail != "1 callbacks, 2 registrations" {
		t.Errorf("unexpected configure detail %q", phases[1].Detail)
	}
}

func TestRunHooks(t *testing.T) {
	var calls []int
	hooks := []Hook{
		func(context.Context) error { calls = append(calls, 1); return nil },
		func(context.Context) error { return fmt.Errorf("second") },
		func(context.Context) error { calls = append(calls, 3); return nil },
	}

	err := runHooks(context.Background(), hooks)
	if err == nil || !strings.Contains(err.Error(), "hook 1 failed") {
		t.Errorf("expected hook 1 error, got %v", err)
	}
	if len(calls) != 1 {
		t.Errorf("expected hooks to stop after the first error, got %v", calls)
	}
}
