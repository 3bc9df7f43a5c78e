// Package telemetry wires the global OTel tracer/meter providers that
// internal/engine already instruments against
// via otel.Tracer/otel.Meter. Without a call to Init those instruments
// report into the SDK's no-op default; Init registers a real exporter
// selected by SPELLBOOK_OTEL_EXPORTER so a generate run actually emits
// spans and metrics somewhere.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
)

// Exporter selects which backend Init registers the global providers
// against.
type Exporter string

const (
	// ExporterNone leaves the global no-op providers in place.
	ExporterNone Exporter = "none"
	// ExporterStdout pretty-prints spans and metrics to stdout, useful
	// for local `spellbook generate` runs.
	ExporterStdout Exporter = "stdout"
	// ExporterOTLP pushes metrics to an OTLP/HTTP collector at endpoint.
	// Traces still go to stdout in this mode; only metrics are sent to
	// the collector.
	ExporterOTLP Exporter = "otlp"
)

// Shutdown flushes and closes whatever Init registered. Callers should
// defer it and pass a bounded context, not the one the run itself used,
// so a cancelled generate run still gets to flush its last spans.
type Shutdown func(ctx context.Context) error

var noopShutdown Shutdown = func(context.Context) error { return nil }

// Init registers a TracerProvider and MeterProvider against the OTel
// global registry (otel.SetTracerProvider / otel.SetMeterProvider), the
// same global registry internal/engine's package-level
// otel.Tracer(...)/otel.Meter(...) calls already read.
// endpoint is only consulted for ExporterOTLP and should be a bare
// host:port, matching otlpmetrichttp.WithEndpoint's expectation.
func Init(ctx context.Context, exporter Exporter, endpoint string) (Shutdown, error) {
	if exporter == "" {
		exporter = ExporterNone
	}
	if exporter == ExporterNone {
		return noopShutdown, nil
	}

	res, err := resource.New(ctx, resource.WithAttributes(
		semconv.ServiceName("spellbook"),
	))
	if err != nil {
		return nil, fmt.Errorf("telemetry: build resource: %w", err)
	}

	traceExp, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return nil, fmt.Errorf("telemetry: stdout trace exporter: %w", err)
	}
	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(traceExp),
		sdktrace.WithResource(res),
	)

	var reader metric.Reader
	switch exporter {
	case ExporterStdout:
		metricExp, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("telemetry: stdout metric exporter: %w", err)
		}
		reader = metric.NewPeriodicReader(metricExp)
	case ExporterOTLP:
		opts := []otlpmetrichttp.Option{otlpmetrichttp.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		metricExp, err := otlpmetrichttp.New(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("telemetry: otlp metric exporter: %w", err)
		}
		reader = metric.NewPeriodicReader(metricExp)
	default:
		return nil, fmt.Errorf("telemetry: unknown exporter %q", exporter)
	}

	mp := metric.NewMeterProvider(
		metric.WithReader(reader),
		metric.WithResource(res),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return func(ctx context.Context) error {
		var errs []error
		if err := tp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
		if err := mp.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
		if len(errs) == 0 {
			return nil
		}
		return fmt.Errorf("telemetry shutdown: %v", errs)
	}, nil
}
