// Package observability wires OpenTelemetry tracing and metrics export
// (OTLP over HTTP) for dikit applications.
//
//	providers, err := observability.Init(ctx, cfg.Telemetry, "my-service", "1.0.0", "production")
//	defer providers.Shutdown(ctx)
//
// Init installs the providers as otel globals, which is where containers
// built with di.NewContainer pick them up by default.
package observability
