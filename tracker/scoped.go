package tracker

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/vihrea/vihrea/telemetry"
	"github.com/vihrea/vihrea/types"
)

// residualPowerKW converts the wall-clock duration of tracked work into
// a baseline energy estimate (50 W of assumed steady draw). Heuristic,
// like every other figure in this system.
const residualPowerKW = 0.05

// newContextID generates a practically-unique context id from a
// timestamp and a random suffix.
func (r *Registry) newContextID() string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	return fmt.Sprintf("ctx-%d-%s", r.now().UnixNano(), suffix)
}

// Scoped runs work inside a freshly started tracking context and
// guarantees the context is ended on every exit path, including error
// returns, external cancellation, and panics. Wall-clock duration of
// the work is converted to a residual energy estimate and merged in
// immediately before teardown. Returns the context's final metrics.
func (r *Registry) Scoped(ctx context.Context, desc types.TrackingContext, work func(context.Context) error) (final types.ResourceMetrics, err error) {
	id := r.newContextID()
	span := trace.SpanFromContext(ctx)

	r.Start(id, desc)
	telemetry.RecordContextLifecycleEvent(span, "started", id, string(desc.Goal), 0)
	started := r.now()

	defer func() {
		elapsed := r.now().Sub(started)
		residual := types.ResourceMetrics{}
		residual.SetEnergy(elapsed.Hours() * residualPowerKW)
		r.Accumulate(id, residual)

		if m, ok := r.End(id); ok {
			final = m
		}
		telemetry.RecordContextLifecycleEvent(span, "ended", id, string(desc.Goal), final.Energy)
	}()

	err = work(ctx)
	return final, err
}

// ScopedValue is Scoped for work that produces a value alongside its
// error. The metrics for the run are reported through the registry's
// listeners rather than returned.
func ScopedValue[T any](r *Registry, ctx context.Context, desc types.TrackingContext, work func(context.Context) (T, error)) (T, error) {
	var out T
	_, err := r.Scoped(ctx, desc, func(ctx context.Context) error {
		var workErr error
		out, workErr = work(ctx)
		return workErr
	})
	return out, err
}

// Elapsed reports how long a context has been running. Zero for
// unknown ids.
func (r *Registry) Elapsed(id string) time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.entries[id]
	if !ok {
		return 0
	}
	return r.now().Sub(e.ctx.StartTime)
}
