// Package telemetry sets up the OpenTelemetry trace and metric providers.
package telemetry

import (
	"context"
	"io"
	"time"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// ShutdownFunc flushes and stops what Setup started.
type ShutdownFunc func(ctx context.Context) error

type Options struct {
	// Out receives the exported spans and metrics. Nothing is exported when nil.
	Out            io.Writer
	MetricInterval time.Duration
}

// Setup installs global trace and metric providers exporting to opts.Out.
// On failure everything already started is shut down.
func Setup(ctx context.Context, opts Options) (ShutdownFunc, error) {
	var shutdownFuncs []ShutdownFunc
	shutdown := func(ctx context.Context) error {
		var err error
		for _, fn := range shutdownFuncs {
			if ferr := fn(ctx); ferr != nil && err == nil {
				err = ferr
			}
		}
		shutdownFuncs = nil
		return err
	}

	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))
	if opts.Out == nil {
		return shutdown, nil
	}

	traceExporter, err := stdouttrace.New(stdouttrace.WithWriter(opts.Out))
	if err != nil {
		return shutdown, errors.Wrap(err, "creating trace exporter")
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExporter))
	shutdownFuncs = append(shutdownFuncs, tp.Shutdown)
	otel.SetTracerProvider(tp)

	metricExporter, err := stdoutmetric.New(stdoutmetric.WithWriter(opts.Out))
	if err != nil {
		_ = shutdown(ctx)
		return shutdown, errors.Wrap(err, "creating metric exporter")
	}
	interval := opts.MetricInterval
	if interval <= 0 {
		interval = time.Minute
	}
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter, sdkmetric.WithInterval(interval))),
	)
	shutdownFuncs = append(shutdownFuncs, mp.Shutdown)
	otel.SetMeterProvider(mp)

	return shutdown, nil
}
