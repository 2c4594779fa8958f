package bootstrap

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kbukum/dikit/di"
	"github.com/kbukum/dikit/logger"
	"github.com/kbukum/dikit/observability"
)

// App represents an application built around one DI container.
// The type parameter C is the config type, which must satisfy the Config interface.
// Any struct embedding config.ServiceConfig automatically satisfies Config.
//
// The lifecycle is: telemetry, OnStart hooks, configure (registration),
// freeze, OnReady hooks, then the task or signal wait, then OnStop hooks.
//
// Example:
//
//	app, err := bootstrap.NewApp(&myConfig)
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    return di.Register(a.Container, Users, di.Singleton, di.WithFactory(newUserStore))
//	})
//	app.Run(context.Background())
type App[C Config] struct {
	Name      string
	Version   string
	Cfg       C
	Container di.Container
	Logger    *logger.Logger
	Summary   *Summary
	Telemetry *observability.Providers

	gracefulTimeout time.Duration
	onConfigure     []func(ctx context.Context, app *App[C]) error

	onStart []Hook
	onReady []Hook
	onStop  []Hook
}

// NewApp creates a new application instance from a typed config.
// It applies defaults, validates the config, initializes the logger, and
// registers the config, logger, and container under the di.Pkg keys.
func NewApp[C Config](cfg C, opts ...Option) (*App[C], error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	base := cfg.GetServiceConfig()
	o := resolveOptions(opts)

	app := &App[C]{
		Name:            base.Name,
		Version:         base.Version,
		Cfg:             cfg,
		gracefulTimeout: 15 * time.Second,
	}
	if o.gracefulTimeout != nil {
		app.gracefulTimeout = *o.gracefulTimeout
	}

	// Logger: use custom if provided, otherwise init from config.
	if o.logger != nil {
		app.Logger = o.logger
	} else {
		logger.Init(&base.Logging)
		app.Logger = logger.GetGlobalLogger()
	}
	logger.RegisterDefaults(app.Logger, "di", "bootstrap", "diagnostics")

	if o.container != nil {
		app.Container = o.container
	} else {
		app.Container = di.NewContainer(
			di.WithConfig(base.Container),
			di.WithLogger(logger.Get("di")),
		)
	}

	if err := app.registerBuiltins(); err != nil {
		return nil, fmt.Errorf("registering built-in services: %w", err)
	}

	app.Summary = NewSummary(base.Name, base.Version)
	if o.summaryOutput != nil {
		app.Summary.SetOutput(o.summaryOutput)
	}
	return app, nil
}

// registerBuiltins makes the config, logger, and container resolvable by
// application factories.
func (a *App[C]) registerBuiltins() error {
	cfg, log, container := a.Cfg, a.Logger, a.Container

	if err := di.Register(a.Container, ConfigKey[C](), di.Singleton,
		di.WithFactory(func() C { return cfg })); err != nil {
		return err
	}
	if err := di.Register(a.Container, LoggerKey, di.Singleton,
		di.WithFactory(func() *logger.Logger { return log })); err != nil {
		return err
	}
	return di.Register(a.Container, ContainerKey, di.Singleton,
		di.WithFactory(func() di.Container { return container }))
}

// OnConfigure registers a callback to run during the configure phase.
// This is where application services are registered; the container is
// frozen once every callback has returned.
func (a *App[C]) OnConfigure(fn func(ctx context.Context, app *App[C]) error) {
	a.onConfigure = append(a.onConfigure, fn)
}

// Run executes the full application lifecycle for long-running services and
// blocks until a shutdown signal arrives or ctx is canceled.
func (a *App[C]) Run(ctx context.Context) error {
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	a.Logger.Info("Application ready, waiting for shutdown signal")
	a.WaitForSignal(ctx)

	return a.stop()
}

// RunTask executes a finite task with the full bootstrap lifecycle.
// Unlike Run(), it does not block on shutdown signals. It runs the task
// function and shuts down when the task completes or the context is
// canceled (e.g., via SIGINT/SIGTERM).
//
// Example:
//
//	app, _ := bootstrap.NewApp(&cfg)
//	app.RunTask(ctx, func(ctx context.Context) error {
//	    users, err := di.Resolve(app.Container, Users)
//	    if err != nil {
//	        return err
//	    }
//	    return users.Sync(ctx)
//	})
func (a *App[C]) RunTask(ctx context.Context, task func(ctx context.Context) error) error {
	if err := a.startup(ctx); err != nil {
		a.abort()
		return err
	}

	taskCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	go func() {
		select {
		case sig := <-sigCh:
			a.Logger.Info("Received signal, canceling task", logger.Fields("signal", sig.String()))
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

// startup performs the initialization sequence shared by Run and RunTask.
func (a *App[C]) startup(ctx context.Context) error {
	start := time.Now()

	a.Logger.Info("Starting application", logger.Fields(
		"name", a.Name,
		"version", a.Version,
		logger.FieldContainerID, a.Container.ID(),
	))

	if err := a.phase("telemetry", func() (string, error) {
		return a.initTelemetry(ctx)
	}); err != nil {
		return fmt.Errorf("telemetry initialization failed: %w", err)
	}

	if err := runHooks(ctx, a.onStart); err != nil {
		return fmt.Errorf("onStart hook failed: %w", err)
	}

	if err := a.phase("configure", func() (string, error) {
		return a.configure(ctx)
	}); err != nil {
		return fmt.Errorf("configuration failed: %w", err)
	}

	if err := a.phase("freeze", func() (string, error) {
		return a.freeze(), nil
	}); err != nil {
		return err
	}

	if err := runHooks(ctx, a.onReady); err != nil {
		return fmt.Errorf("onReady hook failed: %w", err)
	}

	a.Summary.SetStartupDuration(time.Since(start))
	a.DisplaySummary()
	return nil
}

// phase runs one startup step and records it in the summary.
func (a *App[C]) phase(name string, fn func() (string, error)) error {
	start := time.Now()
	detail, err := fn()
	elapsed := time.Since(start)

	fields := logger.DurationFields(name, elapsed)
	fields[logger.FieldPhase] = name
	if err != nil {
		a.Logger.Error("Startup phase failed", logger.MergeWithError(fields, err))
		a.Summary.TrackPhase(name, elapsed, "failed: "+err.Error())
		return err
	}
	a.Logger.Debug("Startup phase complete", fields)
	a.Summary.TrackPhase(name, elapsed, detail)
	return nil
}

func (a *App[C]) initTelemetry(ctx context.Context) (string, error) {
	base := a.Cfg.GetServiceConfig()
	providers, err := observability.Init(ctx, base.Telemetry, a.Name, a.Version, base.Environment)
	if err != nil {
		return "", err
	}
	a.Telemetry = providers
	if !base.Telemetry.Enabled {
		return "disabled", nil
	}
	return "exporting to " + base.Telemetry.Endpoint, nil
}

// configure runs registered configuration callbacks.
func (a *App[C]) configure(ctx context.Context) (string, error) {
	before := a.Container.Len()
	for _, fn := range a.onConfigure {
		if err := fn(ctx, a); err != nil {
			return "", err
		}
	}
	added := a.Container.Len() - before
	a.Logger.Info("Container configured", logger.Fields(
		"callbacks", len(a.onConfigure),
		"registrations", added,
	))
	return fmt.Sprintf("%d callbacks, %d registrations", len(a.onConfigure), added), nil
}

// freeze closes the registration phase unless the config allows late
// registration.
func (a *App[C]) freeze() string {
	if a.Cfg.GetServiceConfig().Container.AllowLateRegistration {
		return "skipped (late registration allowed)"
	}
	a.Container.Freeze()
	return "frozen"
}

// DisplaySummary prints the startup summary with the container's registrations.
func (a *App[C]) DisplaySummary() {
	a.Summary.DisplaySummary(a.Container, a.Logger)
}

// WaitForSignal blocks until an OS interrupt/term signal or context cancellation.
func (a *App[C]) WaitForSignal(ctx context.Context) os.Signal {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigCh)

	select {
	case sig := <-sigCh:
		a.Logger.Info("Received shutdown signal, graceful shutdown starting", logger.Fields("signal", sig.String()))
		return sig
	case <-ctx.Done():
		a.Logger.Info("Context canceled, shutting down")
		return nil
	}
}

// Shutdown performs graceful shutdown. Use when managing your own lifecycle.
func (a *App[C]) Shutdown(ctx context.Context) error {
	return a.stop()
}

// abort releases telemetry after a failed startup. OnStop hooks do not run.
func (a *App[C]) abort() {
	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()
	if err := a.Telemetry.Shutdown(ctx); err != nil {
		a.Logger.Warn("Telemetry shutdown error", logger.ErrorFields("abort", err))
	}
}

// stop runs OnStop hooks and flushes telemetry within the graceful timeout.
// Resolved instances are not disposed; the container has no teardown.
func (a *App[C]) stop() error {
	a.Logger.Info("Shutting down application", logger.Fields("timeout", a.gracefulTimeout.String()))

	ctx, cancel := context.WithTimeout(context.Background(), a.gracefulTimeout)
	defer cancel()

	var shutdownErr error

	if err := runHooks(ctx, a.onStop); err != nil {
		a.Logger.Error("OnStop hook error", logger.ErrorFields("stop", err))
		shutdownErr = err
	}

	if err := a.Telemetry.Shutdown(ctx); err != nil {
		a.Logger.Error("Telemetry shutdown error", logger.ErrorFields("stop", err))
		if shutdownErr == nil {
			shutdownErr = err
		}
	}

	a.Logger.Info("Application shutdown complete")
	return shutdownErr
}
