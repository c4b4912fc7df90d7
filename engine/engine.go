// Package engine drives the static analysis pipeline: annotation
// extraction and metric estimation per declaration, violation
// detection, and score calculation.
package engine

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/vihrea/vihrea/annotation"
	"github.com/vihrea/vihrea/detector"
	"github.com/vihrea/vihrea/estimator"
	"github.com/vihrea/vihrea/loader"
	"github.com/vihrea/vihrea/scoring"
	"github.com/vihrea/vihrea/telemetry"
	"github.com/vihrea/vihrea/types"
)

// Analyzer combines the core subsystems into one pass per declaration.
type Analyzer struct {
	extractor *annotation.Extractor
	estimator *estimator.Estimator
	detector  *detector.Detector
	loader    *loader.Loader
	logger    *telemetry.Logger
	tracer    trace.Tracer
}

// NewAnalyzer creates an analyzer with default keyword tables.
func NewAnalyzer() *Analyzer {
	return NewAnalyzerWithKeywords(estimator.DefaultKeywords())
}

// NewAnalyzerWithKeywords creates an analyzer with custom call-site
// keyword tables (typically loaded from config).
func NewAnalyzerWithKeywords(kw estimator.KeywordTable) *Analyzer {
	return &Analyzer{
		extractor: annotation.NewExtractor(),
		estimator: estimator.NewEstimatorWithKeywords(kw),
		detector:  detector.NewDetector(),
		loader:    loader.NewLoader(),
		logger:    telemetry.NewLogger("engine"),
		tracer:    telemetry.Tracer,
	}
}

// AnalyzeDecl runs the full static pipeline for one declaration.
func (a *Analyzer) AnalyzeDecl(decl loader.FunctionDecl) types.AnalysisResult {
	annotations := a.extractor.Extract(decl.DocBlocks)
	metrics := a.estimator.Estimate(decl.Body)
	violations := a.detector.Detect(metrics, annotations)
	score := scoring.Calculate(metrics, violations, annotations)

	return types.AnalysisResult{
		FunctionID:  decl.Name,
		Location:    decl.Location,
		Annotations: annotations,
		Metrics:     metrics,
		Violations:  violations,
		Score:       score,
	}
}

// AnalyzeDecls analyzes an ordered declaration list, one result per
// declaration.
func (a *Analyzer) AnalyzeDecls(decls []loader.FunctionDecl) []types.AnalysisResult {
	results := make([]types.AnalysisResult, 0, len(decls))
	for _, decl := range decls {
		results = append(results, a.AnalyzeDecl(decl))
	}
	return results
}

// AnalyzePath loads and analyzes a file or directory tree.
func (a *Analyzer) AnalyzePath(ctx context.Context, path string) ([]types.AnalysisResult, error) {
	ctx, span := a.tracer.Start(ctx, "engine.analyze_path",
		trace.WithAttributes(attribute.String("path", path)))
	defer span.End()

	start := time.Now()

	decls, err := a.load(path)
	if err != nil {
		a.logger.WithContext(ctx).Error().
			Err(err).
			Str("path", path).
			Msg("source loading failed")
		return nil, err
	}

	a.logger.LogAnalysisStart(ctx, path, len(decls))
	results := a.AnalyzeDecls(decls)
	a.record(ctx, span, path, results, time.Since(start))

	return results, nil
}

// AnalyzeSource analyzes in-memory Go source. Used by editor-style
// consumers that hold unsaved buffers.
func (a *Analyzer) AnalyzeSource(ctx context.Context, filename, src string) ([]types.AnalysisResult, error) {
	decls, err := a.loader.LoadSource(filename, src)
	if err != nil {
		return nil, err
	}
	return a.AnalyzeDecls(decls), nil
}

func (a *Analyzer) load(path string) ([]loader.FunctionDecl, error) {
	if isDir(path) {
		return a.loader.LoadDir(path)
	}
	return a.loader.LoadFile(path)
}

// record pushes run telemetry: counters, histogram, span events.
func (a *Analyzer) record(ctx context.Context, span trace.Span, path string, results []types.AnalysisResult, elapsed time.Duration) {
	totalViolations := 0
	totalEnergy := 0.0
	for _, result := range results {
		totalViolations += len(result.Violations)
		totalEnergy += result.Metrics.Energy
		for _, v := range result.Violations {
			telemetry.RecordViolationEvent(span,
				string(v.Kind), string(v.Severity),
				result.FunctionID, result.Location.String(), v.Message)
		}
	}

	if telemetry.FunctionsAnalyzed != nil {
		telemetry.FunctionsAnalyzed.Add(ctx, int64(len(results)))
		telemetry.ViolationsFound.Add(ctx, int64(totalViolations))
		telemetry.EnergyEstimated.Add(ctx, totalEnergy)
		telemetry.AnalysisDuration.Record(ctx, elapsed.Seconds())
	}

	telemetry.RecordAnalysisCompletedEvent(span, path,
		int64(len(results)), int64(totalViolations), totalEnergy, elapsed.Seconds())
	a.logger.LogAnalysisComplete(ctx, len(results), totalViolations,
		float64(elapsed.Milliseconds()))
}
