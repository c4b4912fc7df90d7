package engine

import (
	"os"

	"github.com/vihrea/vihrea/loader"
)

// Thresholds are caller-supplied limits for style-checking consumers.
// Zero values disable the corresponding check.
type Thresholds struct {
	MaxEnergyKWh    float64
	MaxNetworkCalls int
}

// StyleDecision carries boolean violation decisions only. Diagnostic
// text and auto-fixes are the consumer's concern.
type StyleDecision struct {
	EnergyExceeded       bool
	NetworkCallsExceeded bool
	BudgetExceeded       bool
}

// Exceeded reports whether any threshold was crossed.
func (d StyleDecision) Exceeded() bool {
	return d.EnergyExceeded || d.NetworkCallsExceeded || d.BudgetExceeded
}

// CheckThresholds runs extraction and estimation for one declaration
// and compares the estimate against the supplied thresholds and any
// carbon budget the declaration itself declares.
func (a *Analyzer) CheckThresholds(decl loader.FunctionDecl, th Thresholds) StyleDecision {
	annotations := a.extractor.Extract(decl.DocBlocks)
	metrics := a.estimator.Estimate(decl.Body)

	var decision StyleDecision
	if th.MaxEnergyKWh > 0 && metrics.Energy > th.MaxEnergyKWh {
		decision.EnergyExceeded = true
	}
	if th.MaxNetworkCalls > 0 && metrics.NetworkCalls > th.MaxNetworkCalls {
		decision.NetworkCallsExceeded = true
	}
	for _, ann := range annotations {
		if ann.CarbonBudget != nil && metrics.Energy > *ann.CarbonBudget {
			decision.BudgetExceeded = true
		}
	}
	return decision
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
