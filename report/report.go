// Package report renders analysis results. Renderers consume results
// read-only; all analytical logic lives upstream.
package report

import (
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"strings"

	"github.com/vihrea/vihrea/types"
)

// Format selects an output renderer.
type Format string

const (
	FormatJSON     Format = "json"
	FormatMarkdown Format = "markdown"
	FormatHTML     Format = "html"
)

// Render writes results to w in the requested format.
func Render(w io.Writer, format Format, results []types.AnalysisResult) error {
	switch format {
	case FormatJSON:
		return renderJSON(w, results)
	case FormatMarkdown:
		return renderMarkdown(w, results)
	case FormatHTML:
		return renderHTML(w, results)
	default:
		return fmt.Errorf("unknown report format: %s", format)
	}
}

func renderJSON(w io.Writer, results []types.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}

func renderMarkdown(w io.Writer, results []types.AnalysisResult) error {
	var b strings.Builder
	b.WriteString("# Sustainability Report\n\n")
	b.WriteString("| Function | Location | Energy (kWh) | Emissions (gCO2) | Violations | Score |\n")
	b.WriteString("|---|---|---|---|---|---|\n")
	for _, r := range results {
		fmt.Fprintf(&b, "| %s | %s | %.3f | %.1f | %d | %.0f |\n",
			r.FunctionID, r.Location, r.Metrics.Energy, r.Metrics.Emissions,
			len(r.Violations), r.Score)
	}

	for _, r := range results {
		if len(r.Violations) == 0 {
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n\n", r.FunctionID)
		for _, v := range r.Violations {
			fmt.Fprintf(&b, "- **%s** (%s): %s\n", v.Kind, v.Severity, v.Message)
			if v.Suggestion != "" {
				fmt.Fprintf(&b, "  - Suggestion: %s\n", v.Suggestion)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var htmlTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head><title>Sustainability Report</title></head>
<body>
<h1>Sustainability Report</h1>
<table border="1">
<tr><th>Function</th><th>Location</th><th>Energy (kWh)</th><th>Emissions (gCO2)</th><th>Violations</th><th>Score</th></tr>
{{range .}}<tr>
<td>{{.FunctionID}}</td>
<td>{{.Location}}</td>
<td>{{printf "%.3f" .Metrics.Energy}}</td>
<td>{{printf "%.1f" .Metrics.Emissions}}</td>
<td>{{len .Violations}}</td>
<td>{{printf "%.0f" .Score}}</td>
</tr>
{{end}}</table>
{{range .}}{{if .Violations}}
<h2>{{.FunctionID}}</h2>
<ul>
{{range .Violations}}<li><strong>{{.Kind}}</strong> ({{.Severity}}): {{.Message}}</li>
{{end}}</ul>
{{end}}{{end}}</body>
</html>
`))

func renderHTML(w io.Writer, results []types.AnalysisResult) error {
	return htmlTemplate.Execute(w, results)
}

// Summary aggregates a result set for CLI display.
type Summary struct {
	Functions       int
	Violations      int
	Errors          int
	Warnings        int
	TotalEnergyKWh  float64
	TotalEmissions  float64
	AverageScore    float64
}

// Summarize folds results into totals.
func Summarize(results []types.AnalysisResult) Summary {
	s := Summary{Functions: len(results)}
	for _, r := range results {
		s.Violations += len(r.Violations)
		s.Errors += r.ErrorCount()
		s.Warnings += r.WarningCount()
		s.TotalEnergyKWh += r.Metrics.Energy
		s.TotalEmissions += r.Metrics.Emissions
		s.AverageScore += r.Score
	}
	if len(results) > 0 {
		s.AverageScore /= float64(len(results))
	}
	return s
}
