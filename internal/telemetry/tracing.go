// Package telemetry wires OpenTelemetry trace export for the gateway.
//
// The gateway traces dispatcher calls; export is opt-in. In dev mode spans
// are written to stdout as they complete, which is enough to see the
// correlation lifecycle of a request without any collector infrastructure.
package telemetry

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.34.0"
)

// Provider owns the tracer provider lifecycle.
type Provider struct {
	tp *sdktrace.TracerProvider
}

// Init builds a tracer provider and installs it as the global provider.
// When stdoutExport is false the provider has no exporter registered and
// spans are dropped at end, which keeps instrumented code paths uniform.
func Init(serviceName, version string, stdoutExport bool) (*Provider, error) {
	res, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build trace resource: %w", err)
	}

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(res),
	}

	if stdoutExport {
		exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
		if err != nil {
			return nil, fmt.Errorf("failed to create stdout trace exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
	}

	tp := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(tp)

	return &Provider{tp: tp}, nil
}

// TracerProvider returns the underlying SDK provider.
func (p *Provider) TracerProvider() *sdktrace.TracerProvider {
	return p.tp
}

// Shutdown flushes pending spans and releases provider resources.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil || p.tp == nil {
		return nil
	}
	return p.tp.Shutdown(ctx)
}
