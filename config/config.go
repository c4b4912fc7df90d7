// Package config loads the vihrea configuration file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vihrea/vihrea/estimator"
)

// Config represents the main configuration
type Config struct {
	Version  string                 `yaml:"version"`
	Paths    []string               `yaml:"paths,omitempty"`
	Keywords estimator.KeywordTable `yaml:"keywords,omitempty"`
	Analysis Analysis               `yaml:"analysis,omitempty"`
	Storage  Storage                `yaml:"storage,omitempty"`
	Telemetry Telemetry             `yaml:"telemetry,omitempty"`
	Daemon   Daemon                 `yaml:"daemon,omitempty"`
}

// Analysis holds style-check thresholds handed to external consumers.
type Analysis struct {
	MaxEnergyKWh    float64 `yaml:"max_energy_kwh"`
	MaxNetworkCalls int     `yaml:"max_network_calls"`
}

// Storage configures the result history store.
type Storage struct {
	Dir string `yaml:"dir"`
}

// Telemetry configures OTEL export.
type Telemetry struct {
	Endpoint string `yaml:"endpoint"`
	Insecure bool   `yaml:"insecure"`
}

// Daemon configures watch mode.
type Daemon struct {
	Interval    time.Duration `yaml:"interval"`
	MetricsPort int           `yaml:"metrics_port"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Version: "1",
		Paths:   []string{"."},
		Storage: Storage{Dir: ".vihrea"},
		Daemon:  Daemon{Interval: 5 * time.Minute, MetricsPort: 2112},
	}
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- path is intentional user input
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate ensures config has required fields
func (c *Config) Validate() error {
	if c.Version == "" {
		return fmt.Errorf("version is required")
	}
	if len(c.Paths) == 0 {
		return fmt.Errorf("at least one path is required")
	}
	if c.Analysis.MaxEnergyKWh < 0 {
		return fmt.Errorf("max_energy_kwh must be non-negative")
	}
	if c.Analysis.MaxNetworkCalls < 0 {
		return fmt.Errorf("max_network_calls must be non-negative")
	}
	if c.Daemon.Interval < 0 {
		return fmt.Errorf("daemon interval must be non-negative")
	}
	return nil
}
