package policy

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vihrea/vihrea/types"
)

const lowScorePolicy = `package vihrea

decision := "flag" if {
	input.result.score < 60
}

reason := "score below team floor" if {
	input.result.score < 60
}
`

const denyBudgetPolicy = `package vihrea

decision := "deny" if {
	some v in input.result.violations
	v.kind == "carbon_budget_exceeded"
}

reason := "carbon budget exceeded" if {
	some v in input.result.violations
	v.kind == "carbon_budget_exceeded"
}
`

func resultWithScore(score float64) types.AnalysisResult {
	return types.AnalysisResult{
		FunctionID: "F",
		Metrics:    types.NewResourceMetrics(),
		Score:      score,
	}
}

func TestEngine_LoadAndEvaluate(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()

	require.NoError(t, e.LoadPolicy(ctx, "low_score", lowScorePolicy))
	assert.Equal(t, 1, e.PolicyCount())

	flagged, err := e.Evaluate(ctx, resultWithScore(40))
	require.NoError(t, err)
	assert.Equal(t, "flag", flagged.Decision)
	assert.Contains(t, flagged.Reason, "score below team floor")
	assert.Equal(t, []string{"low_score"}, flagged.Policies)

	clean, err := e.Evaluate(ctx, resultWithScore(95))
	require.NoError(t, err)
	assert.Equal(t, "allow", clean.Decision)
	assert.Empty(t, clean.Policies)
}

func TestEngine_StrictestDecisionWins(t *testing.T) {
	e := NewEngine()
	ctx := context.Background()

	require.NoError(t, e.LoadPolicy(ctx, "low_score", lowScorePolicy))
	require.NoError(t, e.LoadPolicy(ctx, "deny_budget", denyBudgetPolicy))

	result := resultWithScore(40)
	result.Violations = []types.Violation{{
		Kind:     types.ViolationCarbonBudgetExceeded,
		Severity: types.SeverityError,
	}}

	out, err := e.Evaluate(ctx, result)
	require.NoError(t, err)
	assert.Equal(t, "deny", out.Decision)
	assert.Len(t, out.Policies, 2)
}

func TestEngine_BadPolicyFailsToLoad(t *testing.T) {
	e := NewEngine()

	err := e.LoadPolicy(context.Background(), "broken", "package vihrea\n\ndecision := {{{")
	assert.Error(t, err)
	assert.Equal(t, 0, e.PolicyCount())
}

func TestEngine_LoadDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "low_score.rego"), []byte(lowScorePolicy), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not a policy"), 0644))

	e := NewEngine()
	require.NoError(t, e.LoadDir(context.Background(), dir))
	assert.Equal(t, 1, e.PolicyCount())
}

func TestEngine_LoadDirMissingIsNoop(t *testing.T) {
	e := NewEngine()
	require.NoError(t, e.LoadDir(context.Background(), "/nonexistent/policies"))
	assert.Equal(t, 0, e.PolicyCount())
}
