package types

// ViolationKind categorizes sustainability violations.
type ViolationKind string

const (
	ViolationCarbonBudgetExceeded   ViolationKind = "carbon_budget_exceeded"
	ViolationInefficientAlgorithm   ViolationKind = "inefficient_algorithm"
	ViolationHighImpactNoAnnotation ViolationKind = "high_impact_no_annotation"
	ViolationMissingContext         ViolationKind = "missing_context"
)

// Severity levels for violations.
type Severity string

const (
	SeverityWarning Severity = "warning"
	SeverityError   Severity = "error"
)

// Violation flags a budget or efficiency problem found during analysis
// or runtime tracking.
type Violation struct {
	Kind       ViolationKind `json:"kind"`
	Severity   Severity      `json:"severity"`
	Message    string        `json:"message"`
	Suggestion string        `json:"suggestion,omitempty"`
}

// IsError reports whether the violation carries error severity.
func (v Violation) IsError() bool {
	return v.Severity == SeverityError
}
