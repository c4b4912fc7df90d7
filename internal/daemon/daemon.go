// Package daemon runs continuous sustainability sweeps over configured
// source trees, persisting results and exporting metrics.
package daemon

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/vihrea/vihrea/engine"
	"github.com/vihrea/vihrea/storage"
	"github.com/vihrea/vihrea/telemetry"
	"github.com/vihrea/vihrea/types"
)

// Config holds daemon configuration
type Config struct {
	Interval    time.Duration
	MetricsPort int
	Paths       []string
}

// Daemon re-analyzes the configured paths on an interval.
type Daemon struct {
	interval    time.Duration
	metricsPort int
	paths       []string
	analyzer    *engine.Analyzer
	store       *storage.ResultStore
	metrics     *Metrics
	logger      *telemetry.Logger
	startTime   time.Time
	sweepCount  atomic.Int64
}

// NewDaemon creates a new daemon instance. store may be nil; sweeps then
// run without persistence.
func NewDaemon(config Config, analyzer *engine.Analyzer, store *storage.ResultStore) (*Daemon, error) {
	metrics, err := NewMetrics()
	if err != nil {
		return nil, err
	}
	return &Daemon{
		interval:    config.Interval,
		metricsPort: config.MetricsPort,
		paths:       config.Paths,
		analyzer:    analyzer,
		store:       store,
		metrics:     metrics,
		logger:      telemetry.NewLogger("daemon"),
		startTime:   time.Now(),
	}, nil
}

// Start begins the sweep loop. The first sweep runs immediately so a
// fresh daemon exports data before the first tick.
func (d *Daemon) Start(ctx context.Context) error {
	d.runSweep(ctx)

	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			d.runSweep(ctx)
		}
	}
}

func (d *Daemon) runSweep(ctx context.Context) {
	d.sweepCount.Add(1)
	start := time.Now()

	var all []types.AnalysisResult
	status := "success"

	for _, path := range d.paths {
		results, err := d.analyzer.AnalyzePath(ctx, path)
		if err != nil {
			status = "error"
			d.logger.WithContext(ctx).Error().
				Err(err).
				Str("path", path).
				Msg("sweep analysis failed")
			continue
		}
		all = append(all, results...)
	}

	if d.store != nil && len(all) > 0 {
		if _, err := d.store.RecordRun(all); err != nil {
			status = "error"
			d.logger.LogStorageError(ctx, "record_run", err)
		}
	}

	d.metrics.RecordSweep(ctx, status)
	d.metrics.RecordSweepDuration(ctx, time.Since(start).Seconds(), status)
	d.metrics.RecordFunctionsScanned(ctx, int64(len(all)))

	d.logger.WithContext(ctx).Info().
		Int("functions", len(all)).
		Str("status", status).
		Dur("duration", time.Since(start)).
		Msg("sweep complete")
}

// Health returns daemon health status
func (d *Daemon) Health() HealthStatus {
	return HealthStatus{
		Status: "healthy",
		Uptime: int64(time.Since(d.startTime).Seconds()),
	}
}

// HealthStatus represents daemon health
type HealthStatus struct {
	Status string
	Uptime int64
}

// SweepCount returns total sweeps run
func (d *Daemon) SweepCount() int64 {
	return d.sweepCount.Load()
}
