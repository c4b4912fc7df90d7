package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "vihrea.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig_Full(t *testing.T) {
	path := writeConfig(t, `
version: "1"
paths:
  - ./internal
  - ./cmd
keywords:
  network:
    - dial
analysis:
  max_energy_kwh: 5.0
  max_network_calls: 10
storage:
  dir: /tmp/vihrea
telemetry:
  endpoint: localhost:4317
  insecure: true
daemon:
  interval: 1m
  metrics_port: 9090
`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"./internal", "./cmd"}, cfg.Paths)
	assert.Equal(t, []string{"dial"}, cfg.Keywords.Network)
	assert.Equal(t, 5.0, cfg.Analysis.MaxEnergyKWh)
	assert.Equal(t, 10, cfg.Analysis.MaxNetworkCalls)
	assert.Equal(t, "/tmp/vihrea", cfg.Storage.Dir)
	assert.Equal(t, "localhost:4317", cfg.Telemetry.Endpoint)
	assert.True(t, cfg.Telemetry.Insecure)
	assert.Equal(t, time.Minute, cfg.Daemon.Interval)
	assert.Equal(t, 9090, cfg.Daemon.MetricsPort)
}

func TestLoadConfig_DefaultsApply(t *testing.T) {
	path := writeConfig(t, `version: "1"`)

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"."}, cfg.Paths)
	assert.Equal(t, ".vihrea", cfg.Storage.Dir)
	assert.Equal(t, 5*time.Minute, cfg.Daemon.Interval)
	assert.Equal(t, 2112, cfg.Daemon.MetricsPort)
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/vihrea.yaml")
	assert.Error(t, err)
}

func TestLoadConfig_BadYAML(t *testing.T) {
	path := writeConfig(t, "version: [unclosed")
	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"valid defaults", func(c *Config) {}, false},
		{"missing version", func(c *Config) { c.Version = "" }, true},
		{"no paths", func(c *Config) { c.Paths = nil }, true},
		{"negative energy threshold", func(c *Config) { c.Analysis.MaxEnergyKWh = -1 }, true},
		{"negative network threshold", func(c *Config) { c.Analysis.MaxNetworkCalls = -1 }, true},
		{"negative interval", func(c *Config) { c.Daemon.Interval = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
