package telemetry

import (
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

// RecordViolationEvent emits a structured span event for a detected
// sustainability violation
func RecordViolationEvent(
	span trace.Span,
	kind string,
	severity string,
	functionID string,
	location string,
	message string,
) {
	if span == nil {
		return
	}

	span.AddEvent("sustainability.violation.detected", trace.WithAttributes(
		attribute.String("event.type", "sustainability.violation.detected"),
		attribute.String("violation.kind", kind),
		attribute.String("violation.severity", severity),
		attribute.String("function.id", functionID),
		attribute.String("function.location", location),
		attribute.String("message", message),
	))
}

// RecordAnalysisCompletedEvent emits a structured span event when a
// source unit finishes analysis
func RecordAnalysisCompletedEvent(
	span trace.Span,
	path string,
	functionsAnalyzed int64,
	violationsFound int64,
	totalEnergyKWh float64,
	durationSeconds float64,
) {
	if span == nil {
		return
	}

	span.AddEvent("sustainability.analysis.completed", trace.WithAttributes(
		attribute.String("event.type", "sustainability.analysis.completed"),
		attribute.String("path", path),
		attribute.Int64("functions.analyzed", functionsAnalyzed),
		attribute.Int64("violations.found", violationsFound),
		attribute.Float64("energy.estimated.kwh", totalEnergyKWh),
		attribute.Float64("duration.seconds", durationSeconds),
	))
}

// RecordContextLifecycleEvent emits a structured span event for tracker
// context transitions
func RecordContextLifecycleEvent(
	span trace.Span,
	eventType string,
	contextID string,
	goal string,
	energyKWh float64,
) {
	if span == nil {
		return
	}

	span.AddEvent("sustainability.context."+eventType, trace.WithAttributes(
		attribute.String("event.type", "sustainability.context."+eventType),
		attribute.String("context.id", contextID),
		attribute.String("context.goal", goal),
		attribute.Float64("energy.kwh", energyKWh),
	))
}
