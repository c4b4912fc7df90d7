package annotation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vihrea/vihrea/types"
)

func TestExtract_NoBlocks(t *testing.T) {
	e := NewExtractor()

	assert.Empty(t, e.Extract(nil))
	assert.Empty(t, e.Extract([]string{}))
}

func TestExtract_BlockWithoutGoalYieldsNothing(t *testing.T) {
	e := NewExtractor()

	annotations := e.Extract([]string{
		"fetchUsers loads all users from the directory service.",
		"@carbonBudget 2.0 kWh",
	})

	assert.Empty(t, annotations)
}

func TestExtract_FullBlock(t *testing.T) {
	e := NewExtractor()

	annotations := e.Extract([]string{
		"@sdg Goal13\n@carbonBudget 1.5 kWh\n@impact compute high\n@description Optimizes delivery routes\n@tags routing, optimization , ml",
	})

	require.Len(t, annotations, 1)
	ann := annotations[0]
	assert.Equal(t, types.GoalClimateAction, ann.Goal)
	require.NotNil(t, ann.CarbonBudget)
	assert.Equal(t, 1.5, *ann.CarbonBudget)
	require.NotNil(t, ann.Impact)
	assert.Equal(t, types.ImpactCompute, ann.Impact.Category)
	assert.Equal(t, types.ImpactHigh, ann.Impact.Level)
	assert.Equal(t, "Optimizes delivery routes", ann.Description)
	assert.Equal(t, []string{"routing", "optimization", "ml"}, ann.Tags)
}

func TestExtract_GoalOnly(t *testing.T) {
	e := NewExtractor()

	annotations := e.Extract([]string{"@sdg Goal7"})

	require.Len(t, annotations, 1)
	assert.Equal(t, types.GoalAffordableEnergy, annotations[0].Goal)
	assert.Nil(t, annotations[0].CarbonBudget)
	assert.Nil(t, annotations[0].Impact)
	assert.Empty(t, annotations[0].Description)
	assert.Empty(t, annotations[0].Tags)
}

func TestExtract_UnrecognizedGoalNumberIgnored(t *testing.T) {
	e := NewExtractor()

	assert.Empty(t, e.Extract([]string{"@sdg Goal18"}))
	assert.Empty(t, e.Extract([]string{"@sdg Goal0"}))
}

func TestExtract_MalformedFieldsDegradeToAbsent(t *testing.T) {
	e := NewExtractor()

	annotations := e.Extract([]string{
		"@sdg Goal12\n@carbonBudget lots kWh\n@impact bananas extreme",
	})

	require.Len(t, annotations, 1)
	assert.Equal(t, types.GoalResponsibleConsumption, annotations[0].Goal)
	assert.Nil(t, annotations[0].CarbonBudget)
	assert.Nil(t, annotations[0].Impact)
}

func TestExtract_CarbonBudgetRequiresUnit(t *testing.T) {
	e := NewExtractor()

	annotations := e.Extract([]string{"@sdg Goal13\n@carbonBudget 1.5"})

	require.Len(t, annotations, 1)
	assert.Nil(t, annotations[0].CarbonBudget)
}

func TestExtract_StackedBlocksPreserveOrder(t *testing.T) {
	e := NewExtractor()

	annotations := e.Extract([]string{
		"@sdg Goal13\n@carbonBudget 1.0 kWh",
		"not an annotation block",
		"@sdg Goal9\n@tags infra",
	})

	require.Len(t, annotations, 2)
	assert.Equal(t, types.GoalClimateAction, annotations[0].Goal)
	assert.Equal(t, types.GoalIndustryInnovation, annotations[1].Goal)
	assert.Equal(t, []string{"infra"}, annotations[1].Tags)
}
