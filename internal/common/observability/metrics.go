// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability holds the otel meter provider; its instruments are exported on /metrics
// alongside the promauto collectors.
type Observability struct {
	meterProvider *metric.MeterProvider
	tracing       *Tracing
	mappings      otelmetric.Int64Counter
	entities      otelmetric.Int64Histogram
	jobDuration   otelmetric.Float64Histogram
}

// New never fails; a broken exporter leaves the instruments nil and recording becomes a no-op.
func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)
	meter := provider.Meter(serviceName)

	mappings, _ := meter.Int64Counter(
		"caab.mappings",
		otelmetric.WithDescription("Case payloads mapped, by source system and outcome"),
	)
	entities, _ := meter.Int64Histogram(
		"caab.assessment.entities",
		otelmetric.WithDescription("Entities per projected assessment graph"),
	)
	jobDuration, _ := meter.Float64Histogram(
		"caab.jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider: provider,
		mappings:      mappings,
		entities:      entities,
		jobDuration:   jobDuration,
	}, nil
}

func (o *Observability) RecordMapping(ctx context.Context, source, outcome string) {
	if o == nil || o.mappings == nil {
		return
	}
	o.mappings.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("source", source),
		attribute.String("outcome", outcome),
	))
}

func (o *Observability) RecordGraphSize(ctx context.Context, rulebase string, entities int) {
	if o == nil || o.entities == nil {
		return
	}
	o.entities.Record(ctx, int64(entities), otelmetric.WithAttributes(attribute.String("rulebase", rulebase)))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, d time.Duration) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(d.Milliseconds()), otelmetric.WithAttributes(attribute.String("task_type", taskType)))
}

// Shutdown flushes meters and, when enabled, traces.
func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil {
		return nil
	}
	if o.tracing != nil {
		_ = o.tracing.Shutdown(ctx)
	}
	if o.meterProvider != nil {
		return o.meterProvider.Shutdown(ctx)
	}
	return nil
}
