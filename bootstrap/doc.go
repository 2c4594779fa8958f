// Package bootstrap runs a dikit application around a single DI container.
//
// NewApp validates the typed config, initializes the logger, creates the
// container, and registers the config, logger, and container themselves.
// Application services are registered in OnConfigure callbacks; after they
// return the container is frozen (unless container.allow_late_registration
// is set) and further Register calls fail.
//
// # Quick Start
//
//	app, err := bootstrap.NewApp(&cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	app.OnConfigure(func(ctx context.Context, a *bootstrap.App[*MyConfig]) error {
//	    return di.Register(a.Container, Users, di.Singleton, di.WithFactory(newUserStore))
//	})
//	if err := app.Run(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// Run blocks until SIGINT/SIGTERM; RunTask runs a finite function instead.
// Both initialize OpenTelemetry export from the config and flush it on stop.
package bootstrap
