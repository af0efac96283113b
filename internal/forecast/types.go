package forecast

import "github.com/shopspring/decimal"

// LowConfidenceExperiments is the sample size below which a profile's averages
// are considered statistically weak.
const LowConfidenceExperiments = 3

// DefaultPropagationMethod is used when a profile lists no methods.
const DefaultPropagationMethod = "Seed"

// DefaultCalculatedBy attributes forecasts computed without an explicit author.
const DefaultCalculatedBy = "System"

// SpeciesProfile summarizes the observed growth behaviour of one species.
// Rates are percentages in [0, 100] except AvgMultiplicationRate, which is a
// per-cycle factor.
type SpeciesProfile struct {
	SpeciesID             string   `json:"species_id" yaml:"species_id"`
	SpeciesName           string   `json:"species_name" yaml:"species_name"`
	CommonName            string   `json:"common_name,omitempty" yaml:"common_name,omitempty"`
	AvgMultiplicationRate float64  `json:"avg_multiplication_rate" yaml:"avg_multiplication_rate"`
	AvgSurvivalRate       float64  `json:"avg_survival_rate" yaml:"avg_survival_rate"`
	StdDevSurvival        float64  `json:"std_dev_survival" yaml:"std_dev_survival"`
	AvgCycleDurationWeeks int      `json:"avg_cycle_duration_weeks" yaml:"avg_cycle_duration_weeks"`
	CompletedExperiments  int      `json:"completed_experiments" yaml:"completed_experiments"`
	PropagationMethods    []string `json:"propagation_methods,omitempty" yaml:"propagation_methods,omitempty"`
}

// LowConfidence reports whether too few experiments back the profile averages.
func (p SpeciesProfile) LowConfidence() bool {
	return p.CompletedExperiments < LowConfidenceExperiments
}

// DefaultMethod returns the first listed propagation method, or "Seed".
func (p SpeciesProfile) DefaultMethod() string {
	if len(p.PropagationMethods) == 0 || p.PropagationMethods[0] == "" {
		return DefaultPropagationMethod
	}
	return p.PropagationMethods[0]
}

// Milestone is a sampled point on the projected production curve.
type Milestone struct {
	Week      int `json:"week"`
	Projected int `json:"projected"`
}

// ResourceRequirements estimates the facilities and effort a run needs.
type ResourceRequirements struct {
	Greenhouses   int             `json:"greenhouses"`
	LaborHours    int             `json:"labor_hours"`
	EstimatedCost decimal.Decimal `json:"estimated_cost"`
}

// Forecast is the result of one Compute call. It is never mutated after creation.
type Forecast struct {
	ID                          string               `json:"id"`
	SpeciesID                   string               `json:"species_id"`
	SpeciesName                 string               `json:"species_name,omitempty"`
	DesiredQuantity             int                  `json:"desired_quantity"`
	RecommendedInitialStock     int                  `json:"recommended_initial_stock"`
	EstimatedWeeks              int                  `json:"estimated_weeks"`
	ConfidenceLowerWeeks        int                  `json:"confidence_lower_weeks"`
	ConfidenceUpperWeeks        int                  `json:"confidence_upper_weeks"`
	EstimatedCycles             int                  `json:"estimated_cycles"`
	EstimatedSurvivalRate       float64              `json:"estimated_survival_rate"`
	EstimatedMultiplicationRate float64              `json:"estimated_multiplication_rate"`
	WeeklyMilestones            []Milestone          `json:"weekly_milestones"`
	ResourceRequirements        ResourceRequirements `json:"resource_requirements"`
	PropagationMethod           string               `json:"propagation_method"`
	CreatedAt                   string               `json:"created_at"`
	CalculatedBy                string               `json:"calculated_by"`
}
