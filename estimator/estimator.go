// Package estimator derives a heuristic resource-metric estimate from a
// function body's structure. Estimates are structural proxies, not
// measurements: identical body structure always yields identical metrics.
package estimator

import (
	"go/ast"
	"math"

	"github.com/vihrea/vihrea/types"
)

// Energy model constants. Heuristic cost weights, applied once after
// all detection passes.
const (
	baseEnergyKWh      = 0.01
	networkCallKWh     = 0.001
	ioOperationKWh     = 0.0005
	complexityLogKWh   = 0.01
	inferenceEnergyKWh = 50.0

	loopDepthFactor     = 10.0
	inferenceComplexity = 1000.0
)

// Estimator scans function bodies and estimates resource metrics.
type Estimator struct {
	keywords KeywordTable
}

// NewEstimator creates an estimator with the built-in keyword tables.
func NewEstimator() *Estimator {
	return NewEstimatorWithKeywords(DefaultKeywords())
}

// NewEstimatorWithKeywords creates an estimator with custom tables.
// Empty sets fall back to the defaults so a partial config override
// never disables a whole pass.
func NewEstimatorWithKeywords(kw KeywordTable) *Estimator {
	defaults := DefaultKeywords()
	if len(kw.Network) == 0 {
		kw.Network = defaults.Network
	}
	if len(kw.IO) == 0 {
		kw.IO = defaults.IO
	}
	if len(kw.Inference) == 0 {
		kw.Inference = defaults.Inference
	}
	return &Estimator{keywords: kw}
}

// Estimate computes metrics for one function body. A nil body estimates
// as an empty body: zero calls, unit complexity, baseline energy.
func (e *Estimator) Estimate(body *ast.BlockStmt) types.ResourceMetrics {
	metrics := types.NewResourceMetrics()
	if body == nil {
		metrics.SetEnergy(baseEnergyKWh)
		return metrics
	}

	inferenceCalls := 0
	ast.Inspect(body, func(n ast.Node) bool {
		call, ok := n.(*ast.CallExpr)
		if !ok {
			return true
		}
		callee := calleeText(call)
		if callee == "" {
			return true
		}
		if matches(callee, e.keywords.Network) {
			metrics.NetworkCalls++
		}
		if matches(callee, e.keywords.IO) {
			metrics.IOOperations++
		}
		if matches(callee, e.keywords.Inference) {
			inferenceCalls++
		}
		return true
	})

	depth := maxLoopDepth(body)
	metrics.ComputeComplexity = math.Pow(loopDepthFactor, float64(depth)) *
		math.Pow(inferenceComplexity, float64(inferenceCalls))

	energy := baseEnergyKWh +
		float64(metrics.NetworkCalls)*networkCallKWh +
		float64(metrics.IOOperations)*ioOperationKWh +
		math.Log10(metrics.ComputeComplexity)*complexityLogKWh +
		float64(inferenceCalls)*inferenceEnergyKWh
	metrics.SetEnergy(energy)

	return metrics
}

// calleeText renders the callee of a call expression as a dotted path:
// Get -> "Get", http.Get -> "http.Get", s.client.Do -> "s.client.Do".
// Callees that are not identifier chains (e.g. immediately invoked
// function literals) render empty and match nothing.
func calleeText(call *ast.CallExpr) string {
	return exprPath(call.Fun)
}

func exprPath(expr ast.Expr) string {
	switch x := expr.(type) {
	case *ast.Ident:
		return x.Name
	case *ast.SelectorExpr:
		base := exprPath(x.X)
		if base == "" {
			return x.Sel.Name
		}
		return base + "." + x.Sel.Name
	case *ast.IndexExpr:
		return exprPath(x.X)
	case *ast.IndexListExpr:
		return exprPath(x.X)
	default:
		return ""
	}
}

// maxLoopDepth computes the maximum lexical nesting depth of iteration
// constructs anywhere in the body, including inside nested function
// literals.
func maxLoopDepth(body *ast.BlockStmt) int {
	max := 0
	ast.Walk(loopDepthVisitor{max: &max}, body)
	return max
}

type loopDepthVisitor struct {
	depth int
	max   *int
}

func (v loopDepthVisitor) Visit(n ast.Node) ast.Visitor {
	switch n.(type) {
	case *ast.ForStmt, *ast.RangeStmt:
		d := v.depth + 1
		if d > *v.max {
			*v.max = d
		}
		return loopDepthVisitor{depth: d, max: v.max}
	}
	return v
}
