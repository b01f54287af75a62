// Package telemetry configures OpenTelemetry tracing for gateway calls.
package telemetry

import (
	"context"
	"fmt"
	"io"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"

	"github.com/custodia-labs/caseflow-cli/internal/logger"
)

// ServiceName identifies spans produced by this tool.
const ServiceName = "caseflow-cli"

// ShutdownFunc flushes and stops the tracer provider.
type ShutdownFunc func(context.Context) error

// Options controls tracer setup.
type Options struct {
	// Enabled turns span export on. When false the global no-op provider stays.
	Enabled bool

	// Writer receives exported spans. Defaults to stderr so JSON output on
	// stdout stays parseable.
	Writer io.Writer

	// PrettyPrint indents exported spans.
	PrettyPrint bool
}

// InitTracer installs a stdout-exporting tracer provider as the global provider.
// The returned shutdown is always safe to call.
func InitTracer(opts Options) (ShutdownFunc, error) {
	if !opts.Enabled {
		return func(context.Context) error { return nil }, nil
	}

	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	exporterOpts := []stdouttrace.Option{stdouttrace.WithWriter(w)}
	if opts.PrettyPrint {
		exporterOpts = append(exporterOpts, stdouttrace.WithPrettyPrint())
	}
	exporter, err := stdouttrace.New(exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}

	res, err := resource.Merge(
		resource.Default(),
		resource.NewSchemaless(attribute.String("service.name", ServiceName)),
	)
	if err != nil {
		return nil, fmt.Errorf("build trace resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	logger.Debug("OpenTelemetry tracing enabled for %s", ServiceName)
	return tp.Shutdown, nil
}
