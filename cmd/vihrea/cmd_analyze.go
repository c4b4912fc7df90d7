package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vihrea/vihrea/engine"
	"github.com/vihrea/vihrea/policy"
	"github.com/vihrea/vihrea/report"
	"github.com/vihrea/vihrea/storage"
	"github.com/vihrea/vihrea/types"
)

var (
	analyzeOutput    string
	analyzePolicyDir string
	analyzePersist   bool
	analyzeFailOn    string
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [paths...]",
	Short: "Analyze Go sources for sustainability violations",
	Long: `Analyze Go source files or directories, estimating energy use and
carbon emissions per function and reporting annotation violations.

Each function gets a compliance score from 0 to 100. Functions with a
@carbonBudget annotation are checked against their budget; deeply
nested loops and heavy unannotated functions are flagged.`,
	Example: `  vihrea analyze .                       # Analyze current directory
  vihrea analyze ./internal ./cmd        # Analyze multiple trees
  vihrea analyze -o json .               # JSON output
  vihrea analyze --policy-dir policies . # Apply Rego policies
  vihrea analyze --save .                # Persist results for trend reports
  vihrea analyze --fail-on error .       # Nonzero exit on budget violations`,
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeCmd.Flags().StringVarP(&analyzeOutput, "output", "o", "text", "Output format: text, json, markdown, html")
	analyzeCmd.Flags().StringVar(&analyzePolicyDir, "policy-dir", "", "Directory of .rego policies to evaluate")
	analyzeCmd.Flags().BoolVar(&analyzePersist, "save", false, "Persist results to the result store")
	analyzeCmd.Flags().StringVar(&analyzeFailOn, "fail-on", "", "Exit nonzero when violations reach this severity: warning, error")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	paths := args
	if len(paths) == 0 {
		paths = cfg.Paths
	}

	if analyzeFailOn != "" && analyzeFailOn != "warning" && analyzeFailOn != "error" {
		return fmt.Errorf("invalid --fail-on value: %s (must be warning or error)", analyzeFailOn)
	}

	ctx := context.Background()
	analyzer := engine.NewAnalyzerWithKeywords(cfg.Keywords)

	var results []types.AnalysisResult
	for _, path := range paths {
		r, err := analyzer.AnalyzePath(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to analyze %s: %w", path, err)
		}
		results = append(results, r...)
	}

	if analyzePersist {
		store, err := storage.NewResultStore(cfg.Storage.Dir)
		if err != nil {
			return fmt.Errorf("failed to open result store: %w", err)
		}
		defer func() { _ = store.Close() }()

		rev, err := store.RecordRun(results)
		if err != nil {
			return fmt.Errorf("failed to persist results: %w", err)
		}
		fmt.Fprintf(os.Stderr, "Saved %d results as revision %d\n", len(results), rev)
	}

	if analyzePolicyDir != "" {
		if err := applyPolicies(ctx, analyzePolicyDir, results); err != nil {
			return err
		}
	}

	if err := renderResults(results); err != nil {
		return err
	}

	return checkFailOn(results)
}

// applyPolicies evaluates the policy directory against every result and
// prints non-allow decisions.
func applyPolicies(ctx context.Context, dir string, results []types.AnalysisResult) error {
	eng := policy.NewEngine()
	if err := eng.LoadDir(ctx, dir); err != nil {
		return fmt.Errorf("failed to load policies: %w", err)
	}
	if eng.PolicyCount() == 0 {
		return nil
	}

	for _, r := range results {
		decision, err := eng.Evaluate(ctx, r)
		if err != nil {
			return fmt.Errorf("policy evaluation failed for %s: %w", r.FunctionID, err)
		}
		if decision.Decision != "allow" {
			fmt.Fprintf(os.Stderr, "policy %s: %s (%s)\n",
				decision.Decision, r.FunctionID, decision.Reason)
		}
	}
	return nil
}

func renderResults(results []types.AnalysisResult) error {
	switch analyzeOutput {
	case "text":
		printText(results)
		return nil
	case "json":
		return report.Render(os.Stdout, report.FormatJSON, results)
	case "markdown":
		return report.Render(os.Stdout, report.FormatMarkdown, results)
	case "html":
		return report.Render(os.Stdout, report.FormatHTML, results)
	default:
		return fmt.Errorf("invalid output format: %s (must be one of: text, json, markdown, html)", analyzeOutput)
	}
}

func printText(results []types.AnalysisResult) {
	for _, r := range results {
		fmt.Printf("%-40s %s  energy=%.3f kWh  emissions=%.1f gCO2  score=%.0f\n",
			r.FunctionID, r.Location, r.Metrics.Energy, r.Metrics.Emissions, r.Score)
		for _, v := range r.Violations {
			fmt.Printf("  [%s] %s: %s\n", strings.ToUpper(string(v.Severity)), v.Kind, v.Message)
			if v.Suggestion != "" {
				fmt.Printf("         %s\n", v.Suggestion)
			}
		}
	}

	s := report.Summarize(results)
	fmt.Printf("\n%d functions, %d violations (%d errors, %d warnings), total %.3f kWh / %.1f gCO2, average score %.1f\n",
		s.Functions, s.Violations, s.Errors, s.Warnings,
		s.TotalEnergyKWh, s.TotalEmissions, s.AverageScore)
}

func checkFailOn(results []types.AnalysisResult) error {
	if analyzeFailOn == "" {
		return nil
	}
	errors, warnings := 0, 0
	for _, r := range results {
		errors += r.ErrorCount()
		warnings += r.WarningCount()
	}
	if errors > 0 {
		return fmt.Errorf("%d error-severity violations found", errors)
	}
	if analyzeFailOn == "warning" && warnings > 0 {
		return fmt.Errorf("%d warning-severity violations found", warnings)
	}
	return nil
}
