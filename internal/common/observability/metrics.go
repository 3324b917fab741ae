// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// Metrics holds the fleet-level OpenTelemetry instruments. The prometheus
// exporter registers with the default registry, so these instruments are
// served by the same /metrics endpoint as the collectors in common/metrics.
type Metrics struct {
	provider    *sdkmetric.MeterProvider
	jobCounter  otelmetric.Int64Counter
	jobDuration otelmetric.Float64Histogram
}

// InitMetrics wires a prometheus-backed meter provider and registers it
// globally, then creates the per-job instruments.
func InitMetrics(serviceName string) (*Metrics, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, err := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Jobs handed to a worker handler"),
	)
	if err != nil {
		return nil, err
	}

	jobDuration, err := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Time spent inside a worker handler"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		provider:    provider,
		jobCounter:  jobCounter,
		jobDuration: jobDuration,
	}, nil
}

// RecordJobProcessed counts one dispatched job. Safe on a nil receiver so
// callers can run without metrics configured.
func (m *Metrics) RecordJobProcessed(ctx context.Context, taskType string) {
	if m == nil || m.jobCounter == nil {
		return
	}
	m.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
	))
}

// RecordJobDuration records how long a handler held the job. Safe on a nil
// receiver.
func (m *Metrics) RecordJobDuration(ctx context.Context, taskType string, d time.Duration) {
	if m == nil || m.jobDuration == nil {
		return
	}
	m.jobDuration.Record(ctx, float64(d.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
	))
}

// Shutdown flushes the meter provider and releases exporter resources.
func (m *Metrics) Shutdown() {
	if m == nil || m.provider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = m.provider.Shutdown(ctx)
}
