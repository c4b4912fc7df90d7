package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"syscall"
	"time"

	"github.com/oklog/run"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/vihrea/vihrea/engine"
	"github.com/vihrea/vihrea/internal/daemon"
	"github.com/vihrea/vihrea/storage"
	"github.com/vihrea/vihrea/telemetry"
)

var (
	daemonInterval    time.Duration
	daemonMetricsPort int
)

// daemonCmd represents the daemon command
var daemonCmd = &cobra.Command{
	Use:   "daemon",
	Short: "Run continuous sustainability sweeps",
	Long: `Run Vihrea in daemon mode for continuous sustainability analysis.

The daemon re-analyzes the configured source trees at an interval,
persisting every run so score trends accumulate, and exporting
Prometheus metrics.

Features:
- Continuous analysis sweeps over configured paths
- Prometheus metrics on /metrics endpoint
- Health checks on /health, /-/healthy, /-/ready
- Revisioned storage for full score history
- Graceful shutdown on SIGTERM/SIGINT`,
	Example: `  vihrea daemon                          # Run with defaults
  vihrea daemon --interval 5m            # Sweep every 5 minutes
  vihrea daemon --metrics-port 9090      # Custom metrics port
  vihrea daemon --config vihrea.yaml     # Paths and keywords from config`,
	RunE: runDaemonCmd,
}

func init() {
	rootCmd.AddCommand(daemonCmd)

	daemonCmd.Flags().DurationVar(&daemonInterval, "interval", 0, "Sweep interval (overrides config)")
	daemonCmd.Flags().IntVar(&daemonMetricsPort, "metrics-port", 0, "Metrics HTTP server port (overrides config)")
}

func runDaemonCmd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if daemonInterval > 0 {
		cfg.Daemon.Interval = daemonInterval
	}
	if daemonMetricsPort > 0 {
		cfg.Daemon.MetricsPort = daemonMetricsPort
	}

	ctx := context.Background()

	shutdown, err := telemetry.InitOTEL(ctx, telemetry.Config{
		ServiceName:    "vihrea",
		ServiceVersion: version,
		OTELEndpoint:   cfg.Telemetry.Endpoint,
		Insecure:       cfg.Telemetry.Insecure,
	})
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdown(shutdownCtx)
	}()

	store, err := storage.NewResultStore(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to open result store: %w", err)
	}
	defer func() { _ = store.Close() }()

	d, err := daemon.NewDaemon(daemon.Config{
		Interval:    cfg.Daemon.Interval,
		MetricsPort: cfg.Daemon.MetricsPort,
		Paths:       cfg.Paths,
	}, engine.NewAnalyzerWithKeywords(cfg.Keywords), store)
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}

	fmt.Printf("Starting Vihrea daemon\n")
	fmt.Printf("   Paths: %v\n", cfg.Paths)
	fmt.Printf("   Interval: %s\n", cfg.Daemon.Interval)
	fmt.Printf("   Metrics: http://localhost:%d/metrics\n\n", cfg.Daemon.MetricsPort)

	var g run.Group

	// Signal handler
	g.Add(run.SignalHandler(ctx, syscall.SIGINT, syscall.SIGTERM))

	// Metrics and health HTTP server
	server := metricsServer(cfg.Daemon.MetricsPort, d)
	g.Add(func() error {
		err := server.ListenAndServe()
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}, func(error) {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = server.Shutdown(shutdownCtx)
	})

	// Sweep loop
	sweepCtx, sweepCancel := context.WithCancel(ctx)
	g.Add(func() error {
		return d.Start(sweepCtx)
	}, func(error) {
		sweepCancel()
	})

	err = g.Run()
	if _, ok := err.(run.SignalError); ok {
		fmt.Fprintf(os.Stderr, "\n%v, shutting down\n", err)
		return nil
	}
	return err
}

// metricsServer serves Prometheus metrics and health endpoints.
func metricsServer(port int, d *daemon.Daemon) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(
		telemetry.PrometheusRegistry,
		promhttp.HandlerOpts{},
	))

	healthy := func(w http.ResponseWriter, r *http.Request) {
		health := d.Health()
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "%s uptime=%ds sweeps=%d\n", health.Status, health.Uptime, d.SweepCount())
	}
	mux.HandleFunc("/health", healthy)
	mux.HandleFunc("/-/healthy", healthy)
	mux.HandleFunc("/-/ready", healthy)

	return &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
}
