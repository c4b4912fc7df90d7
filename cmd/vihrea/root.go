package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vihrea/vihrea/config"
)

var (
	version    = "0.1.0"
	configPath string
	rootCmd    = &cobra.Command{
		Use:   "vihrea",
		Short: "Sustainability Cost Estimator",
		Long: `Vihrea - Sustainability Cost Estimator

Vihrea estimates the energy and carbon footprint of your Go functions
from their source alone. Annotate functions with sustainability goals
and carbon budgets, and Vihrea reports violations, compliance scores,
and trends over time.`,
		Version: version,
	}
)

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// init sets up the root command
func init() {
	rootCmd.SetVersionTemplate(`Vihrea {{.Version}} - Sustainability Cost Estimator
`)
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (YAML)")
}

// loadConfig reads the configured file, or returns defaults when no
// file was given.
func loadConfig() (*config.Config, error) {
	if configPath == "" {
		return config.Default(), nil
	}
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
