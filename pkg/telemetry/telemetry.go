// Package telemetry wires the coordinator's OpenTelemetry tracing: opt-in,
// OTLP/HTTP, no-op when unconfigured.
package telemetry

import (
	"context"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Setup installs a tracer provider for serviceName when BLITZSRV_OTEL_ENDPOINT
// is set, and returns a no-op shutdown otherwise. The returned tracer is
// always usable; with no endpoint configured, spans it creates are simply
// dropped.
func Setup(ctx context.Context, serviceName string) (tracer trace.Tracer, shutdown func(context.Context) error, err error) {
	noop := func(context.Context) error { return nil }

	endpoint := os.Getenv("BLITZSRV_OTEL_ENDPOINT")
	if endpoint == "" {
		return otel.Tracer(serviceName), noop, nil
	}

	exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(endpoint))
	if err != nil {
		return otel.Tracer(serviceName), noop, err
	}

	res, err := resource.New(ctx, resource.WithAttributes(semconv.ServiceName(serviceName)))
	if err != nil {
		return otel.Tracer(serviceName), noop, err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	return tp.Tracer(serviceName), tp.Shutdown, nil
}
