package telemetry

import (
	"context"
	"errors"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// Setup installs global meter and tracer providers and returns an observer
// bound to them. Spans are exported over OTLP/HTTP only when otlpEndpoint is
// set; otherwise they are sampled out. The returned shutdown flushes both
// providers.
func Setup(ctx context.Context, otlpEndpoint string) (*ToolObserver, func(context.Context) error, error) {
	mp := sdkmetric.NewMeterProvider()

	tpOpts := []sdktrace.TracerProviderOption{}
	if otlpEndpoint != "" {
		exporter, err := otlptracehttp.New(ctx, otlptracehttp.WithEndpointURL(otlpEndpoint))
		if err != nil {
			return nil, nil, fmt.Errorf("create otlp trace exporter: %w", err)
		}
		tpOpts = append(tpOpts, sdktrace.WithBatcher(exporter))
	} else {
		tpOpts = append(tpOpts, sdktrace.WithSampler(sdktrace.NeverSample()))
	}
	tp := sdktrace.NewTracerProvider(tpOpts...)

	otel.SetMeterProvider(mp)
	otel.SetTracerProvider(tp)

	observer, err := NewToolObserver(mp.Meter(scopeName), tp.Tracer(scopeName))
	if err != nil {
		return nil, nil, fmt.Errorf("initializing tool observability: %w", err)
	}
	shutdown := func(ctx context.Context) error {
		return errors.Join(tp.Shutdown(ctx), mp.Shutdown(ctx))
	}
	return observer, shutdown, nil
}
