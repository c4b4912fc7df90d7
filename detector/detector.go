// Package detector compares estimated or accumulated resource metrics
// against declared budgets and flags violations.
package detector

import (
	"fmt"

	"github.com/vihrea/vihrea/types"
)

// Thresholds crossed by the fixed rules.
const (
	complexityWarnThreshold = 1000.0
	highImpactEnergyKWh     = 10.0
)

// Fixed suggestion texts attached to violations.
const (
	suggestCarbonBudget = "Reduce network calls, cache intermediate results, or raise the declared carbon budget"
	suggestComplexity   = "Reduce loop nesting or replace heavy inference calls with a lighter model"
	suggestAnnotate     = "Add an @sdg annotation declaring the function's sustainability goal and budget"
	suggestContext      = "Wrap the work in a tracking context so resource use can be attributed"
)

// Detector evaluates the fixed violation rules in order.
type Detector struct{}

// NewDetector creates a violation detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect runs all rules against one metric set and its function's
// ordered annotations. Output order is fixed: budget checks in
// annotation order, then complexity, then missing-annotation. Rules are
// independent; one function can collect violations from several rules.
func (d *Detector) Detect(metrics types.ResourceMetrics, annotations []types.Annotation) []types.Violation {
	var violations []types.Violation

	for _, ann := range annotations {
		if ann.CarbonBudget == nil {
			continue
		}
		if metrics.Energy > *ann.CarbonBudget {
			violations = append(violations, types.Violation{
				Kind:     types.ViolationCarbonBudgetExceeded,
				Severity: types.SeverityError,
				Message: fmt.Sprintf("estimated energy %.3f kWh exceeds carbon budget %.3f kWh",
					metrics.Energy, *ann.CarbonBudget),
				Suggestion: suggestCarbonBudget,
			})
		}
	}

	if metrics.ComputeComplexity > complexityWarnThreshold {
		violations = append(violations, types.Violation{
			Kind:     types.ViolationInefficientAlgorithm,
			Severity: types.SeverityWarning,
			Message: fmt.Sprintf("compute complexity %.0f suggests an inefficient algorithm",
				metrics.ComputeComplexity),
			Suggestion: suggestComplexity,
		})
	}

	if metrics.Energy > highImpactEnergyKWh && len(annotations) == 0 {
		violations = append(violations, types.Violation{
			Kind:     types.ViolationHighImpactNoAnnotation,
			Severity: types.SeverityWarning,
			Message: fmt.Sprintf("high estimated energy %.3f kWh without any sustainability annotation",
				metrics.Energy),
			Suggestion: suggestAnnotate,
		})
	}

	return violations
}

// MissingContext builds the violation raised when resource use is
// recorded with no live tracking context to attribute it to.
func MissingContext(detail string) types.Violation {
	return types.Violation{
		Kind:       types.ViolationMissingContext,
		Severity:   types.SeverityWarning,
		Message:    fmt.Sprintf("resource use recorded outside any tracking context: %s", detail),
		Suggestion: suggestContext,
	}
}
