package tracker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vihrea/vihrea/types"
)

func budget(kwh float64) *float64 { return &kwh }

func energyOnly(kwh float64) types.ResourceMetrics {
	m := types.ResourceMetrics{}
	m.SetEnergy(kwh)
	return m
}

// collect subscribes a listener that records every event.
func collect(r *Registry) *[]types.TrackingEvent {
	var events []types.TrackingEvent
	r.Subscribe(func(e types.TrackingEvent) {
		events = append(events, e)
	})
	return &events
}

func TestRegistry_StartAccumulateEnd(t *testing.T) {
	r := NewRegistry(nil)

	r.Start("c1", types.TrackingContext{Goal: types.GoalClimateAction})
	r.Accumulate("c1", energyOnly(0.2))
	r.Accumulate("c1", energyOnly(0.3))

	final, ok := r.End("c1")
	require.True(t, ok)
	assert.InDelta(t, 0.5, final.Energy, 1e-12)
	assert.InDelta(t, 0.5*types.GridEmissionFactor, final.Emissions, 1e-9)

	_, ok = r.MetricsFor("c1")
	assert.False(t, ok)
}

func TestRegistry_AccumulateUnknownIDIsNoop(t *testing.T) {
	r := NewRegistry(nil)

	r.Accumulate("unknown", energyOnly(1))

	_, ok := r.MetricsFor("unknown")
	assert.False(t, ok)
	assert.Empty(t, r.ActiveContexts())
}

func TestRegistry_EndUnknownIDReturnsNotFound(t *testing.T) {
	r := NewRegistry(nil)

	_, ok := r.End("nope")
	assert.False(t, ok)
}

func TestRegistry_BroadcastAccumulateHitsAllActiveContexts(t *testing.T) {
	r := NewRegistry(nil)
	r.Start("a", types.TrackingContext{})
	r.Start("b", types.TrackingContext{})

	r.BroadcastAccumulate(types.ResourceMetrics{NetworkCalls: 1})

	ma, ok := r.MetricsFor("a")
	require.True(t, ok)
	mb, ok := r.MetricsFor("b")
	require.True(t, ok)
	assert.Equal(t, 1, ma.NetworkCalls)
	assert.Equal(t, 1, mb.NetworkCalls)
}

func TestRegistry_BroadcastWithNoContextsIsNoop(t *testing.T) {
	r := NewRegistry(nil)
	events := collect(r)

	r.BroadcastAccumulate(energyOnly(1))

	assert.Empty(t, *events)
}

func TestRegistry_MemoryAccumulatesAsPeak(t *testing.T) {
	r := NewRegistry(nil)
	r.Start("c", types.TrackingContext{})

	r.Accumulate("c", types.ResourceMetrics{Memory: 256})
	r.Accumulate("c", types.ResourceMetrics{Memory: 64})

	m, ok := r.MetricsFor("c")
	require.True(t, ok)
	assert.Equal(t, 256.0, m.Memory)
}

func TestRegistry_EventLifecycleOrder(t *testing.T) {
	r := NewRegistry(nil)
	events := collect(r)

	r.Start("c", types.TrackingContext{CarbonBudget: budget(0.1)})
	r.Accumulate("c", energyOnly(0.5))
	_, ok := r.End("c")
	require.True(t, ok)

	require.Len(t, *events, 4)
	assert.Equal(t, types.EventContextStarted, (*events)[0].Type)
	assert.Equal(t, types.EventResourceTracked, (*events)[1].Type)
	// Budget breach is announced before the context ends.
	assert.Equal(t, types.EventCarbonBudgetExceeded, (*events)[2].Type)
	assert.Equal(t, types.EventContextEnded, (*events)[3].Type)
}

func TestRegistry_NoBudgetEventWithinBudget(t *testing.T) {
	r := NewRegistry(nil)
	events := collect(r)

	r.Start("c", types.TrackingContext{CarbonBudget: budget(1.0)})
	r.Accumulate("c", energyOnly(0.5))
	r.End("c")

	for _, e := range *events {
		assert.NotEqual(t, types.EventCarbonBudgetExceeded, e.Type)
	}
}

func TestRegistry_ResourceTrackedCarriesPostMergeSnapshot(t *testing.T) {
	r := NewRegistry(nil)
	events := collect(r)

	r.Start("c", types.TrackingContext{})
	r.Accumulate("c", energyOnly(0.2))
	r.Accumulate("c", energyOnly(0.3))

	var tracked []types.TrackingEvent
	for _, e := range *events {
		if e.Type == types.EventResourceTracked {
			tracked = append(tracked, e)
		}
	}
	require.Len(t, tracked, 2)
	assert.InDelta(t, 0.2, tracked[0].Metrics.Energy, 1e-12)
	assert.InDelta(t, 0.5, tracked[1].Metrics.Energy, 1e-12)
}

func TestRegistry_ListenersInvokedInRegistrationOrder(t *testing.T) {
	r := NewRegistry(nil)
	var order []string
	r.Subscribe(func(types.TrackingEvent) { order = append(order, "first") })
	r.Subscribe(func(types.TrackingEvent) { order = append(order, "second") })

	r.Start("c", types.TrackingContext{})

	assert.Equal(t, []string{"first", "second"}, order)
}

func TestRegistry_PanickingListenerDoesNotAbortOthers(t *testing.T) {
	r := NewRegistry(nil)
	r.Subscribe(func(types.TrackingEvent) { panic("listener boom") })
	called := false
	r.Subscribe(func(types.TrackingEvent) { called = true })

	r.Start("c", types.TrackingContext{})

	assert.True(t, called)
	// The instrumented work keeps going too.
	_, ok := r.End("c")
	assert.True(t, ok)
}

func TestRegistry_Unsubscribe(t *testing.T) {
	r := NewRegistry(nil)
	calls := 0
	id := r.Subscribe(func(types.TrackingEvent) { calls++ })

	r.Start("c1", types.TrackingContext{})
	r.Unsubscribe(id)
	r.Start("c2", types.TrackingContext{})

	assert.Equal(t, 1, calls)
	r.Unsubscribe("unknown-handle") // ignored
}

func TestRegistry_StartCollisionOverwrites(t *testing.T) {
	r := NewRegistry(nil)

	r.Start("dup", types.TrackingContext{Description: "first"})
	r.Accumulate("dup", energyOnly(1.0))
	r.Start("dup", types.TrackingContext{Description: "second"})

	// Last write wins: accumulator reset, context replaced.
	m, ok := r.MetricsFor("dup")
	require.True(t, ok)
	assert.Zero(t, m.Energy)
	assert.Equal(t, "second", r.ActiveContexts()["dup"].Description)
}

func TestRegistry_ActiveContextsSnapshotIsIndependent(t *testing.T) {
	r := NewRegistry(nil)
	r.Start("a", types.TrackingContext{})

	snapshot := r.ActiveContexts()
	r.End("a")

	assert.Len(t, snapshot, 1)
	assert.Empty(t, r.ActiveContexts())
}

func TestScoped_TracksWorkAndReturnsFinalMetrics(t *testing.T) {
	r := NewRegistry(nil)
	base := time.Now()
	// Deterministic clock: every read advances one minute.
	r.now = func() time.Time {
		base = base.Add(time.Minute)
		return base
	}

	var capturedID string
	r.Subscribe(func(e types.TrackingEvent) {
		if e.Type == types.EventContextStarted {
			capturedID = e.ContextID
		}
	})

	final, err := r.Scoped(context.Background(), types.TrackingContext{Goal: types.GoalClimateAction},
		func(ctx context.Context) error {
			r.Accumulate(capturedID, energyOnly(0.2))
			return nil
		})

	require.NoError(t, err)
	// Accumulated energy plus a positive residual from wall-clock time.
	assert.Greater(t, final.Energy, 0.2)
	assert.Empty(t, r.ActiveContexts())
}

func TestScoped_ReturnsWorkError(t *testing.T) {
	r := NewRegistry(nil)
	wantErr := errors.New("work failed")

	_, err := r.Scoped(context.Background(), types.TrackingContext{}, func(ctx context.Context) error {
		return wantErr
	})

	assert.ErrorIs(t, err, wantErr)
	assert.Empty(t, r.ActiveContexts())
}

func TestScoped_EndsContextOnPanic(t *testing.T) {
	r := NewRegistry(nil)
	events := collect(r)

	assert.Panics(t, func() {
		_, _ = r.Scoped(context.Background(), types.TrackingContext{}, func(ctx context.Context) error {
			panic("work boom")
		})
	})

	// Teardown still ran: context is not leaked in the registry.
	assert.Empty(t, r.ActiveContexts())
	last := (*events)[len(*events)-1]
	assert.Equal(t, types.EventContextEnded, last.Type)
}

func TestScoped_OverlappingScopes(t *testing.T) {
	r := NewRegistry(nil)

	_, err := r.Scoped(context.Background(), types.TrackingContext{Description: "outer"},
		func(ctx context.Context) error {
			assert.Len(t, r.ActiveContexts(), 1)
			_, innerErr := r.Scoped(ctx, types.TrackingContext{Description: "inner"},
				func(ctx context.Context) error {
					assert.Len(t, r.ActiveContexts(), 2)
					return nil
				})
			return innerErr
		})

	require.NoError(t, err)
	assert.Empty(t, r.ActiveContexts())
}

func TestScopedValue(t *testing.T) {
	r := NewRegistry(nil)

	out, err := ScopedValue(r, context.Background(), types.TrackingContext{},
		func(ctx context.Context) (int, error) {
			return 42, nil
		})

	require.NoError(t, err)
	assert.Equal(t, 42, out)
}

func TestNewContextID_PracticallyUnique(t *testing.T) {
	r := NewRegistry(nil)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := r.newContextID()
		assert.False(t, seen[id])
		seen[id] = true
	}
}
