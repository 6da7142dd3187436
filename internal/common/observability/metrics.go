// Package observability wires OpenTelemetry metrics (prometheus exporter) and
// tracing (jaeger exporter) for the worker fleet.
package observability

import (
	"context"
	"fmt"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/trace"
)

// Options configures New. A nil Registerer uses the prometheus default
// registry; an empty JaegerEndpoint disables span export.
type Options struct {
	ServiceName    string
	JaegerEndpoint string
	Registerer     promclient.Registerer
}

type Observability struct {
	meterProvider *metric.MeterProvider
	meter         otelmetric.Meter
	jobCounter    otelmetric.Int64Counter
	jobDuration   otelmetric.Float64Histogram
	matchScores   otelmetric.Float64Histogram
	tracing       *tracing
}

func New(opts Options) (*Observability, error) {
	exporterOpts := []otelprom.Option{}
	if opts.Registerer != nil {
		exporterOpts = append(exporterOpts, otelprom.WithRegisterer(opts.Registerer))
	}
	exporter, err := otelprom.New(exporterOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(opts.ServiceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)

	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	matchScores, _ := meter.Float64Histogram(
		"matching.top_score",
		otelmetric.WithDescription("Score of the best match returned by a match run"),
	)

	tr, err := newTracing(opts.ServiceName, opts.JaegerEndpoint)
	if err != nil {
		_ = provider.Shutdown(context.Background())
		return nil, err
	}

	return &Observability{
		meterProvider: provider,
		meter:         meter,
		jobCounter:    jobCounter,
		jobDuration:   jobDuration,
		matchScores:   matchScores,
		tracing:       tr,
	}, nil
}

// The recording methods are safe on a nil *Observability so handlers can run
// without telemetry in tests.

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

// RecordTopScore records the best score of a match run. Runs with no
// results are not recorded.
func (o *Observability) RecordTopScore(ctx context.Context, score float64) {
	if o == nil || o.matchScores == nil {
		return
	}
	o.matchScores.Record(ctx, score)
}

// StartSpan starts a span on the fleet tracer. Without a configured exporter
// the span is a no-op.
func (o *Observability) StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	if o == nil || o.tracing == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return o.tracing.tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	var firstErr error
	if o.tracing != nil {
		firstErr = o.tracing.shutdown(ctx)
	}
	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
