// Package scoring folds violations, annotations and metrics into a
// 0-100 sustainability compliance score.
package scoring

import "github.com/vihrea/vihrea/types"

// Score weights.
const (
	baseScore         = 100.0
	errorPenalty      = 20.0
	warningPenalty    = 10.0
	annotationBonus   = 5.0
	lowEnergyBonus    = 10.0
	highEnergyPenalty = 15.0

	lowEnergyKWh  = 0.1
	highEnergyKWh = 10.0
)

// Calculate computes the compliance score, clamped to [0,100].
func Calculate(metrics types.ResourceMetrics, violations []types.Violation, annotations []types.Annotation) float64 {
	score := baseScore

	for _, v := range violations {
		if v.IsError() {
			score -= errorPenalty
		} else {
			score -= warningPenalty
		}
	}

	score += energyAdjustment(metrics.Energy)
	score += annotationBonus * float64(len(annotations))

	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// energyAdjustment rewards frugal functions and penalizes heavy ones.
func energyAdjustment(energy float64) float64 {
	switch {
	case energy < lowEnergyKWh:
		return lowEnergyBonus
	case energy > highEnergyKWh:
		return -highEnergyPenalty
	default:
		return 0
	}
}
