package main

import (
	"context"
	"os"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

// tracing holds the process-lifetime providers set up when --trace is
// passed. The stdout exporters (not a remote collector) match a short-lived
// local CLI, the same choice the teacher makes for its own offline paths
// rather than wiring otlptracegrpc/otlpmetrichttp.
type tracing struct {
	tracer       trace.Tracer
	proofLatency metric.Float64Histogram
	shutdown     func()
}

// setupTracing wires a TracerProvider/MeterProvider writing to stderr when
// traceFlag is set, or returns a no-op hook otherwise so callers never have
// to branch on whether tracing is enabled.
func setupTracing() *tracing {
	if !traceFlag {
		return &tracing{shutdown: func() {}}
	}

	traceExp, err := stdouttrace.New(stdouttrace.WithWriter(os.Stderr), stdouttrace.WithPrettyPrint())
	if err != nil {
		logger.Debug("trace exporter setup failed, continuing without tracing", "err", err)
		return &tracing{shutdown: func() {}}
	}
	tp := sdktrace.NewTracerProvider(sdktrace.WithBatcher(traceExp))

	metricExp, err := stdoutmetric.New(stdoutmetric.WithWriter(os.Stderr))
	if err != nil {
		logger.Debug("metric exporter setup failed, continuing without metrics", "err", err)
		return &tracing{
			tracer:   tp.Tracer("roadmap"),
			shutdown: func() { _ = tp.Shutdown(context.Background()) },
		}
	}
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExp)))

	hist, err := mp.Meter("roadmap").Float64Histogram("proof.duration_ms")
	if err != nil {
		logger.Debug("histogram setup failed", "err", err)
	}

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)

	return &tracing{
		tracer:       tp.Tracer("roadmap"),
		proofLatency: hist,
		shutdown: func() {
			_ = tp.Shutdown(context.Background())
			_ = mp.Shutdown(context.Background())
		},
	}
}

// onSpan is the Runner.OnSpan hook: it starts a roadmap.check span carrying
// the claim slug and returns a closer that records the exit code and a
// proof.duration_ms sample on the span.
func (t *tracing) onSpan(ctx context.Context, claimSlug string) (context.Context, func(exitCode int)) {
	if t.tracer == nil {
		return ctx, func(int) {}
	}
	start := time.Now()
	ctx, span := t.tracer.Start(ctx, "roadmap.check", trace.WithAttributes(attribute.String("claim.slug", claimSlug)))
	return ctx, func(exitCode int) {
		span.SetAttributes(attribute.Int("exit_code", exitCode))
		if t.proofLatency != nil {
			t.proofLatency.Record(ctx, float64(time.Since(start).Milliseconds()), metric.WithAttributes(attribute.String("claim.slug", claimSlug)))
		}
		span.End()
	}
}
