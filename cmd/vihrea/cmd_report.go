package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vihrea/vihrea/storage"
)

var (
	reportWorst    int
	reportFunction string
)

// reportCmd represents the report command
var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Report trends from saved analysis runs",
	Long: `Report on persisted analysis results.

Shows the worst-scoring functions across the latest revision, or the
full score history of a single function. Results must first be saved
with 'vihrea analyze --save'.`,
	Example: `  vihrea report                       # Worst 10 functions
  vihrea report --worst 25            # Worst 25 functions
  vihrea report --function fetchUser  # History of one function`,
	RunE: runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)

	reportCmd.Flags().IntVar(&reportWorst, "worst", 10, "Number of worst-scoring functions to show")
	reportCmd.Flags().StringVar(&reportFunction, "function", "", "Show score history for one function ID")
}

func runReport(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := storage.NewResultStore(cfg.Storage.Dir)
	if err != nil {
		return fmt.Errorf("failed to open result store: %w", err)
	}
	defer func() { _ = store.Close() }()

	if store.CurrentRevision() == 0 {
		fmt.Println("No saved runs yet. Run 'vihrea analyze --save' first.")
		return nil
	}

	if reportFunction != "" {
		return printHistory(store, reportFunction)
	}
	return printWorst(store, reportWorst)
}

func printWorst(store *storage.ResultStore, n int) error {
	fmt.Printf("Revision %d, worst %d functions by score:\n\n", store.CurrentRevision(), n)
	fmt.Printf("%-40s %-30s %8s %12s\n", "FUNCTION", "FILE", "SCORE", "VIOLATIONS")

	for _, state := range store.WorstOffenders(n) {
		fmt.Printf("%-40s %-30s %8.0f %12d\n",
			state.FunctionID, state.File, state.Score, state.Violations)
	}
	return nil
}

func printHistory(store *storage.ResultStore, functionID string) error {
	history, err := store.History(functionID)
	if err != nil {
		return fmt.Errorf("failed to load history: %w", err)
	}
	if len(history) == 0 {
		fmt.Printf("No saved results for %s\n", functionID)
		return nil
	}

	fmt.Printf("History for %s:\n\n", functionID)
	fmt.Printf("%8s %-25s %8s %14s %12s\n", "REV", "TIMESTAMP", "SCORE", "ENERGY (kWh)", "VIOLATIONS")
	for _, h := range history {
		fmt.Printf("%8d %-25s %8.0f %14.3f %12d\n",
			h.Revision, h.Timestamp.Format("2006-01-02 15:04:05"),
			h.Result.Score, h.Result.Metrics.Energy, len(h.Result.Violations))
	}
	return nil
}
