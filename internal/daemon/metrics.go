package daemon

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds operational metrics using OTEL semantic conventions
type Metrics struct {
	sweeps           metric.Int64Counter
	sweepDuration    metric.Float64Histogram
	functionsScanned metric.Int64Gauge
}

// NewMetrics creates daemon metrics following OTEL semantic conventions
func NewMetrics() (*Metrics, error) {
	meter := otel.Meter("vihrea.daemon")

	sweeps, err := meter.Int64Counter(
		"vihrea.daemon.sweeps",
		metric.WithDescription("Number of analysis sweeps run"),
		metric.WithUnit("{sweep}"),
	)
	if err != nil {
		return nil, err
	}

	sweepDuration, err := meter.Float64Histogram(
		"vihrea.daemon.sweep.duration",
		metric.WithDescription("Duration of analysis sweeps"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	functionsScanned, err := meter.Int64Gauge(
		"vihrea.functions.scanned",
		metric.WithDescription("Number of functions analyzed in the latest sweep"),
		metric.WithUnit("{function}"),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{
		sweeps:           sweeps,
		sweepDuration:    sweepDuration,
		functionsScanned: functionsScanned,
	}, nil
}

// RecordSweep records a sweep run with status
func (m *Metrics) RecordSweep(ctx context.Context, status string) {
	m.sweeps.Add(ctx, 1,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordSweepDuration records sweep duration
func (m *Metrics) RecordSweepDuration(ctx context.Context, durationSeconds float64, status string) {
	m.sweepDuration.Record(ctx, durationSeconds,
		metric.WithAttributes(attribute.String("status", status)),
	)
}

// RecordFunctionsScanned records number of functions seen by a sweep
func (m *Metrics) RecordFunctionsScanned(ctx context.Context, count int64) {
	m.functionsScanned.Record(ctx, count)
}
