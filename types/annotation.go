package types

// Goal identifies one of the 17 UN Sustainable Development Goals a
// function declares itself to serve.
type Goal string

const (
	GoalNoPoverty                Goal = "no_poverty"                // Goal1
	GoalZeroHunger               Goal = "zero_hunger"               // Goal2
	GoalGoodHealth               Goal = "good_health"               // Goal3
	GoalQualityEducation         Goal = "quality_education"         // Goal4
	GoalGenderEquality           Goal = "gender_equality"           // Goal5
	GoalCleanWater               Goal = "clean_water"               // Goal6
	GoalAffordableEnergy         Goal = "affordable_energy"         // Goal7
	GoalDecentWork               Goal = "decent_work"               // Goal8
	GoalIndustryInnovation       Goal = "industry_innovation"       // Goal9
	GoalReducedInequalities      Goal = "reduced_inequalities"      // Goal10
	GoalSustainableCities        Goal = "sustainable_cities"        // Goal11
	GoalResponsibleConsumption   Goal = "responsible_consumption"   // Goal12
	GoalClimateAction            Goal = "climate_action"            // Goal13
	GoalLifeBelowWater           Goal = "life_below_water"          // Goal14
	GoalLifeOnLand               Goal = "life_on_land"              // Goal15
	GoalPeaceJustice             Goal = "peace_justice"             // Goal16
	GoalPartnershipsForTheGoals  Goal = "partnerships_for_the_goals" // Goal17
)

// goalByNumber maps the literal Goal<N> tag numbers to goals.
var goalByNumber = map[int]Goal{
	1:  GoalNoPoverty,
	2:  GoalZeroHunger,
	3:  GoalGoodHealth,
	4:  GoalQualityEducation,
	5:  GoalGenderEquality,
	6:  GoalCleanWater,
	7:  GoalAffordableEnergy,
	8:  GoalDecentWork,
	9:  GoalIndustryInnovation,
	10: GoalReducedInequalities,
	11: GoalSustainableCities,
	12: GoalResponsibleConsumption,
	13: GoalClimateAction,
	14: GoalLifeBelowWater,
	15: GoalLifeOnLand,
	16: GoalPeaceJustice,
	17: GoalPartnershipsForTheGoals,
}

// GoalFromNumber resolves Goal<N> to a goal. Unrecognized numbers
// return false so malformed tags degrade to "no annotation".
func GoalFromNumber(n int) (Goal, bool) {
	g, ok := goalByNumber[n]
	return g, ok
}

// ImpactCategory classifies where a function's resource impact lands.
type ImpactCategory string

const (
	ImpactCompute ImpactCategory = "compute"
	ImpactMemory  ImpactCategory = "memory"
	ImpactNetwork ImpactCategory = "network"
	ImpactStorage ImpactCategory = "storage"
	ImpactEnergy  ImpactCategory = "energy"
)

// ImpactLevel grades declared impact severity.
type ImpactLevel string

const (
	ImpactLow      ImpactLevel = "low"
	ImpactMedium   ImpactLevel = "medium"
	ImpactHigh     ImpactLevel = "high"
	ImpactCritical ImpactLevel = "critical"
)

// ValidImpactCategory reports whether s is a recognized category.
func ValidImpactCategory(s string) bool {
	switch ImpactCategory(s) {
	case ImpactCompute, ImpactMemory, ImpactNetwork, ImpactStorage, ImpactEnergy:
		return true
	}
	return false
}

// ValidImpactLevel reports whether s is a recognized level.
func ValidImpactLevel(s string) bool {
	switch ImpactLevel(s) {
	case ImpactLow, ImpactMedium, ImpactHigh, ImpactCritical:
		return true
	}
	return false
}

// Impact is a declared {category, level} pair.
type Impact struct {
	Category ImpactCategory `json:"category"`
	Level    ImpactLevel    `json:"level"`
}

// Annotation is one typed intent record extracted from a documentation
// block. Immutable once extracted; scoped to one function's analysis.
type Annotation struct {
	Goal         Goal     `json:"goal"`
	CarbonBudget *float64 `json:"carbon_budget_kwh,omitempty"`
	Impact       *Impact  `json:"impact,omitempty"`
	Description  string   `json:"description,omitempty"`
	Tags         []string `json:"tags,omitempty"`
}
