package di

import (
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/kbukum/dikit/logger"
)

// Config contains container configuration.
type Config struct {
	// AllowLateRegistration keeps the container open for registration after
	// bootstrap finishes its configure phase. By default it is frozen.
	AllowLateRegistration bool `yaml:"allow_late_registration" mapstructure:"allow_late_registration"`
	// LogResolutions logs every factory invocation at info level instead of debug.
	LogResolutions bool `yaml:"log_resolutions" mapstructure:"log_resolutions"`
}

// ContainerOption configures a container during creation.
type ContainerOption func(*containerOptions)

type containerOptions struct {
	config         Config
	logger         *logger.Logger
	meterProvider  metric.MeterProvider
	tracerProvider trace.TracerProvider
}

func resolveContainerOptions(opts []ContainerOption) *containerOptions {
	o := &containerOptions{}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithConfig applies container configuration.
func WithConfig(cfg Config) ContainerOption {
	return func(o *containerOptions) {
		o.config = cfg
	}
}

// WithLogger sets the logger used by the container. Defaults to logger.Get("di").
func WithLogger(l *logger.Logger) ContainerOption {
	return func(o *containerOptions) {
		o.logger = l
	}
}

// WithMeterProvider sets the meter provider for container metrics.
// Defaults to the otel global provider.
func WithMeterProvider(mp metric.MeterProvider) ContainerOption {
	return func(o *containerOptions) {
		o.meterProvider = mp
	}
}

// WithTracerProvider sets the tracer provider for construction spans.
// Defaults to the otel global provider.
func WithTracerProvider(tp trace.TracerProvider) ContainerOption {
	return func(o *containerOptions) {
		o.tracerProvider = tp
	}
}
