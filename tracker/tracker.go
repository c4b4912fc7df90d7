// Package tracker maintains a registry of live execution scopes and
// accumulates real-time resource use against them. It shares the metric
// model with the static analysis engine but is otherwise independent.
package tracker

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/vihrea/vihrea/detector"
	"github.com/vihrea/vihrea/telemetry"
	"github.com/vihrea/vihrea/types"
)

// Listener receives tracking events. Listeners are invoked synchronously
// in registration order while the registry lock is held, so they must
// not call back into the registry.
type Listener func(types.TrackingEvent)

// entry pairs a live context with its metric accumulator.
type entry struct {
	ctx     types.TrackingContext
	metrics types.ResourceMetrics
}

type subscription struct {
	id string
	fn Listener
}

// Registry is an explicitly constructed context registry. Call sites
// receive it by handle; there is no process-wide singleton.
type Registry struct {
	mu        sync.Mutex
	entries   map[string]*entry
	listeners []subscription
	logger    *telemetry.Logger
	now       func() time.Time
}

// NewRegistry creates an empty context registry.
func NewRegistry(logger *telemetry.Logger) *Registry {
	if logger == nil {
		logger = telemetry.NewLogger("tracker")
	}
	return &Registry{
		entries: make(map[string]*entry),
		logger:  logger,
		now:     time.Now,
	}
}

// Start registers a context under id with a zero-valued accumulator and
// emits contextStarted. A colliding id overwrites the prior entry: last
// write wins. That policy is deliberate and only safe because generated
// ids carry a timestamp plus random suffix.
func (r *Registry) Start(id string, ctx types.TrackingContext) {
	r.mu.Lock()
	defer r.mu.Unlock()

	ctx.StartTime = r.now()
	e := &entry{ctx: ctx, metrics: types.NewResourceMetrics()}
	if _, exists := r.entries[id]; exists {
		r.logger.Warn().
			Str("context_id", id).
			Msg("context id collision, overwriting prior entry")
	}
	r.entries[id] = e

	r.emit(types.TrackingEvent{
		Type:      types.EventContextStarted,
		ContextID: id,
		Context:   e.ctx,
		Metrics:   e.metrics,
		Timestamp: r.now(),
	})
}

// Accumulate merges a partial metric update into the context's
// accumulator and emits resourceTracked with the post-merge total. An
// unknown id logs a warning and drops the update; it never fails.
func (r *Registry) Accumulate(id string, partial types.ResourceMetrics) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		r.logger.LogUnknownContext(context.Background(), "accumulate", id)
		return
	}

	e.metrics.Merge(partial)

	r.emit(types.TrackingEvent{
		Type:      types.EventResourceTracked,
		ContextID: id,
		Context:   e.ctx,
		Metrics:   e.metrics,
		Timestamp: r.now(),
	})
}

// BroadcastAccumulate fans the partial metrics out to every context
// active at this instant. Attribution is approximate: resource use
// recorded without an explicit id is charged to all overlapping scopes.
// The active set is snapshotted first so contexts starting or ending
// mid-broadcast are neither missed nor double-credited.
func (r *Registry) BroadcastAccumulate(partial types.ResourceMetrics) {
	r.mu.Lock()
	ids := make([]string, 0, len(r.entries))
	for id := range r.entries {
		ids = append(ids, id)
	}
	r.mu.Unlock()

	if len(ids) == 0 {
		v := detector.MissingContext("broadcast accumulate with no active contexts")
		r.logger.Warn().
			Str("violation", string(v.Kind)).
			Msg(v.Message)
		return
	}

	for _, id := range ids {
		r.Accumulate(id, partial)
	}
}

// End finalizes a context: checks its carbon budget, emits lifecycle
// events, removes the entry, and returns the final metrics. An unknown
// id returns ok=false and no event.
func (r *Registry) End(id string) (types.ResourceMetrics, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		r.logger.LogUnknownContext(context.Background(), "end", id)
		return types.ResourceMetrics{}, false
	}

	endTime := r.now()
	duration := endTime.Sub(e.ctx.StartTime)

	if e.ctx.CarbonBudget != nil && e.metrics.Energy > *e.ctx.CarbonBudget {
		r.emit(types.TrackingEvent{
			Type:      types.EventCarbonBudgetExceeded,
			ContextID: id,
			Context:   e.ctx,
			Metrics:   e.metrics,
			Duration:  duration,
			Timestamp: endTime,
		})
	}

	r.emit(types.TrackingEvent{
		Type:      types.EventContextEnded,
		ContextID: id,
		Context:   e.ctx,
		Metrics:   e.metrics,
		Duration:  duration,
		Timestamp: endTime,
	})

	delete(r.entries, id)
	return e.metrics, true
}

// ActiveContexts returns a snapshot of the currently live contexts.
func (r *Registry) ActiveContexts() map[string]types.TrackingContext {
	r.mu.Lock()
	defer r.mu.Unlock()

	snapshot := make(map[string]types.TrackingContext, len(r.entries))
	for id, e := range r.entries {
		snapshot[id] = e.ctx
	}
	return snapshot
}

// MetricsFor returns the current accumulated metrics for a live context.
func (r *Registry) MetricsFor(id string) (types.ResourceMetrics, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return types.ResourceMetrics{}, false
	}
	return e.metrics, true
}

// Subscribe registers a listener and returns a handle for Unsubscribe.
func (r *Registry) Subscribe(fn Listener) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	r.listeners = append(r.listeners, subscription{id: id, fn: fn})
	return id
}

// Unsubscribe removes a listener. Unknown handles are ignored.
func (r *Registry) Unsubscribe(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, sub := range r.listeners {
		if sub.id == id {
			r.listeners = append(r.listeners[:i], r.listeners[i+1:]...)
			return
		}
	}
}

// emit dispatches an event to all listeners in registration order.
// Caller must hold r.mu. A panicking listener is caught and logged and
// never aborts the remaining listeners or the instrumented work.
func (r *Registry) emit(event types.TrackingEvent) {
	for _, sub := range r.listeners {
		r.dispatch(sub.fn, event)
	}
}

func (r *Registry) dispatch(fn Listener, event types.TrackingEvent) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.LogListenerPanic(context.Background(), string(event.Type), rec)
		}
	}()
	fn(event)
}
