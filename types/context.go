package types

import "time"

// TrackingContext describes a bounded runtime execution scope against
// which resource use is accumulated and budget-checked.
type TrackingContext struct {
	Goal         Goal     `json:"goal"`
	CarbonBudget *float64 `json:"carbon_budget_kwh,omitempty"`
	Description  string   `json:"description,omitempty"`

	StartTime time.Time `json:"start_time"`

	// MaxDuration is reserved. No timeout behavior is attached to it;
	// callers must not rely on enforcement.
	MaxDuration time.Duration `json:"max_duration,omitempty"`
}

// TrackingEventType categorizes tracker lifecycle events.
type TrackingEventType string

const (
	EventContextStarted       TrackingEventType = "context_started"
	EventContextEnded         TrackingEventType = "context_ended"
	EventResourceTracked      TrackingEventType = "resource_tracked"
	EventCarbonBudgetExceeded TrackingEventType = "carbon_budget_exceeded"
)

// TrackingEvent is emitted on every tracker state transition.
// Ephemeral: dispatched to subscribers, never stored.
type TrackingEvent struct {
	Type      TrackingEventType `json:"type"`
	ContextID string            `json:"context_id"`
	Context   TrackingContext   `json:"context"`
	Metrics   ResourceMetrics   `json:"metrics"`
	Duration  time.Duration     `json:"duration,omitempty"`
	Timestamp time.Time         `json:"timestamp"`
}
