package types

import "fmt"

// Location points at the declaration in source.
type Location struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

func (l Location) String() string {
	return fmt.Sprintf("%s:%d", l.File, l.Line)
}

// AnalysisResult is the read-only outcome of analyzing one declaration.
type AnalysisResult struct {
	FunctionID  string          `json:"function_id"`
	Location    Location        `json:"location"`
	Annotations []Annotation    `json:"annotations"`
	Metrics     ResourceMetrics `json:"metrics"`
	Violations  []Violation     `json:"violations"`
	Score       float64         `json:"score"`
}

// ErrorCount returns the number of error-severity violations.
func (r AnalysisResult) ErrorCount() int {
	n := 0
	for _, v := range r.Violations {
		if v.IsError() {
			n++
		}
	}
	return n
}

// WarningCount returns the number of warning-severity violations.
func (r AnalysisResult) WarningCount() int {
	n := 0
	for _, v := range r.Violations {
		if !v.IsError() {
			n++
		}
	}
	return n
}
