// Package observer bridges tracker events to OTEL metrics.
package observer

import (
	"context"
	"fmt"
	"sync/atomic"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/vihrea/vihrea/types"
)

// TrackingMetrics records tracking events as OTEL metrics.
type TrackingMetrics struct {
	meter            metric.Meter
	contextsStarted  metric.Int64Counter
	contextsEnded    metric.Int64Counter
	budgetsExceeded  metric.Int64Counter
	energyTracked    metric.Float64Counter
	contextsActive   metric.Int64UpDownCounter
	activeCount      atomic.Int64
}

// NewTrackingMetrics creates the metrics observer.
func NewTrackingMetrics() (*TrackingMetrics, error) {
	meter := otel.Meter("vihrea")

	started, err := meter.Int64Counter(
		"vihrea_contexts_started_total",
		metric.WithDescription("Total tracking contexts started"),
		metric.WithUnit("{context}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	ended, err := meter.Int64Counter(
		"vihrea_contexts_ended_total",
		metric.WithDescription("Total tracking contexts ended"),
		metric.WithUnit("{context}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	exceeded, err := meter.Int64Counter(
		"vihrea_carbon_budgets_exceeded_total",
		metric.WithDescription("Total carbon budget breaches observed at runtime"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	energy, err := meter.Float64Counter(
		"vihrea_energy_tracked_kwh",
		metric.WithDescription("Cumulative energy accumulated across contexts"),
		metric.WithUnit("kWh"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	active, err := meter.Int64UpDownCounter(
		"vihrea_contexts_active",
		metric.WithDescription("Currently active tracking contexts"),
		metric.WithUnit("{context}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create counter: %w", err)
	}

	return &TrackingMetrics{
		meter:           meter,
		contextsStarted: started,
		contextsEnded:   ended,
		budgetsExceeded: exceeded,
		energyTracked:   energy,
		contextsActive:  active,
	}, nil
}

// Listener returns a tracker listener that records every event.
// Subscribe it on a registry: registry.Subscribe(m.Listener()).
func (m *TrackingMetrics) Listener() func(types.TrackingEvent) {
	return func(event types.TrackingEvent) {
		m.recordEvent(context.Background(), event)
	}
}

// ActiveCount returns the observed number of live contexts.
func (m *TrackingMetrics) ActiveCount() int64 {
	return m.activeCount.Load()
}

// recordEvent records one event (small focused function)
func (m *TrackingMetrics) recordEvent(ctx context.Context, event types.TrackingEvent) {
	attrs := metric.WithAttributes(
		attribute.String("goal", string(event.Context.Goal)),
	)

	switch event.Type {
	case types.EventContextStarted:
		m.contextsStarted.Add(ctx, 1, attrs)
		m.contextsActive.Add(ctx, 1)
		m.activeCount.Add(1)
	case types.EventContextEnded:
		m.contextsEnded.Add(ctx, 1, attrs)
		m.contextsActive.Add(ctx, -1)
		m.activeCount.Add(-1)
		m.energyTracked.Add(ctx, event.Metrics.Energy, attrs)
	case types.EventCarbonBudgetExceeded:
		m.budgetsExceeded.Add(ctx, 1, attrs)
	}
}
