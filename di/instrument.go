package di

import (
	"context"
	stderrors "errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/kbukum/dikit/di"

// Resolution outcomes recorded on the di.resolutions counter.
const (
	outcomeConstructed   = "constructed"
	outcomeCached        = "cached"
	outcomeError         = "error"
	outcomeNotRegistered = "not_registered"
)

const (
	attrKey      = attribute.Key("di.key")
	attrLifetime = attribute.Key("di.lifetime")
	attrOutcome  = attribute.Key("di.outcome")
)

// instruments records container metrics and construction spans.
type instruments struct {
	tracer      trace.Tracer
	resolutions metric.Int64Counter
	invocations metric.Int64Counter
	duration    metric.Float64Histogram
}

func newInstruments(mp metric.MeterProvider, tp trace.TracerProvider) (*instruments, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	meter := mp.Meter(instrumentationName)

	// otel returns usable no-op instruments alongside creation errors, so
	// the joined error is informational only.
	resolutions, err1 := meter.Int64Counter("di.resolutions",
		metric.WithDescription("Number of resolve calls by key, lifetime and outcome"),
	)
	invocations, err2 := meter.Int64Counter("di.factory.invocations",
		metric.WithDescription("Number of factory invocations by key and lifetime"),
	)
	duration, err3 := meter.Float64Histogram("di.factory.duration",
		metric.WithDescription("Duration of factory invocations in seconds"),
		metric.WithUnit("s"),
	)

	return &instruments{
		tracer:      tp.Tracer(instrumentationName),
		resolutions: resolutions,
		invocations: invocations,
		duration:    duration,
	}, stderrors.Join(err1, err2, err3)
}

func (i *instruments) recordResolution(ctx context.Context, key string, lifetime Lifetime, outcome string) {
	if i == nil || i.resolutions == nil {
		return
	}
	attrs := []attribute.KeyValue{attrKey.String(key), attrOutcome.String(outcome)}
	if lifetime != 0 {
		attrs = append(attrs, attrLifetime.String(lifetime.String()))
	}
	i.resolutions.Add(ctx, 1, metric.WithAttributes(attrs...))
}

func (i *instruments) startConstruct(ctx context.Context, d *descriptor) (context.Context, trace.Span) {
	if i == nil || i.tracer == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return i.tracer.Start(ctx, "di.construct", trace.WithAttributes(
		attrKey.String(d.key),
		attrLifetime.String(d.lifetime.String()),
	))
}

func (i *instruments) endConstruct(ctx context.Context, span trace.Span, d *descriptor, elapsed time.Duration, err error) {
	if i == nil {
		return
	}
	if i.tracer != nil {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}

	attrs := metric.WithAttributes(attrKey.String(d.key), attrLifetime.String(d.lifetime.String()))
	if i.invocations != nil {
		i.invocations.Add(ctx, 1, attrs)
	}
	if i.duration != nil {
		i.duration.Record(ctx, elapsed.Seconds(), attrs)
	}
}

func outcomeOf(err error, cached bool) string {
	switch {
	case err != nil:
		return outcomeError
	case cached:
		return outcomeCached
	default:
		return outcomeConstructed
	}
}
