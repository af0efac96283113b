// Package forecast projects seedling production for a species growth profile.
package forecast

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidQuantity is returned when the desired quantity is not positive.
	ErrInvalidQuantity = errors.New("invalid desired quantity")
	// ErrDegenerateProfile is returned when a growth profile cannot drive the model.
	ErrDegenerateProfile = errors.New("degenerate growth profile")
)

const (
	bufferFraction   = 0.15
	confidenceZ      = 1.645
	milestoneCeiling = 1.05
	unitsPerHouse    = 5000
	laborPerThousand = 32
	costPerUnit      = 0.85
	denseSampleWeeks = 4
)

// MaxCycleDurationWeeks bounds a profile's cycle length (ten years).
const MaxCycleDurationWeeks = 520

// maxDesiredQuantity keeps quantities exactly representable as float64.
const maxDesiredQuantity = 1 << 53

// Options carries the optional inputs of Compute.
type Options struct {
	// PropagationMethod overrides the profile's default method.
	PropagationMethod string
	// CalculatedBy attributes the forecast; defaults to "System".
	CalculatedBy string
	// Now and NewID are injectable for tests.
	Now   func() time.Time
	NewID func() string
}

// Compute validates its inputs and returns the production forecast for
// desiredQuantity units of the profile's species.
func Compute(profile SpeciesProfile, desiredQuantity int, opts Options) (*Forecast, error) {
	if err := ValidateQuantity(desiredQuantity); err != nil {
		return nil, err
	}
	if err := ValidateProfile(profile); err != nil {
		return nil, err
	}

	survivalRate := profile.AvgSurvivalRate / 100
	multRate := profile.AvgMultiplicationRate
	cycleWeeks := float64(profile.AvgCycleDurationWeeks)
	stdDev := profile.StdDevSurvival / 100
	desired := float64(desiredQuantity)

	initialStock := math.Ceil(desired / (multRate * survivalRate))
	if initialStock >= float64(math.MaxInt) {
		return nil, fmt.Errorf("%w: %s initial stock for %d units exceeds the representable range", ErrDegenerateProfile, profile.SpeciesID, desiredQuantity)
	}
	cycles := math.Max(1, math.Ceil(math.Log(desired/initialStock)/math.Log(multRate)))
	bufferWeeks := math.Ceil(cycleWeeks * bufferFraction)
	// cycles/max(cycles,1) is always 1 here; kept so output matches existing forecasts.
	estimatedWeeks := math.Ceil(cycleWeeks*(cycles/math.Max(cycles, 1))) + bufferWeeks

	weekVariance := cycleWeeks * stdDev * confidenceZ
	lowerWeeks := math.Max(1, math.Floor(estimatedWeeks-weekVariance))
	upperWeeks := math.Ceil(estimatedWeeks + weekVariance)

	milestones := simulate(int(initialStock), int(estimatedWeeks), int(cycles), cycleWeeks, multRate, survivalRate, desired)
	milestones[len(milestones)-1].Projected = desiredQuantity

	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}
	method := strings.TrimSpace(opts.PropagationMethod)
	if method == "" {
		method = profile.DefaultMethod()
	}
	calculatedBy := strings.TrimSpace(opts.CalculatedBy)
	if calculatedBy == "" {
		calculatedBy = DefaultCalculatedBy
	}

	return &Forecast{
		ID:                          newID(opts),
		SpeciesID:                   profile.SpeciesID,
		SpeciesName:                 profile.SpeciesName,
		DesiredQuantity:             desiredQuantity,
		RecommendedInitialStock:     int(initialStock),
		EstimatedWeeks:              int(estimatedWeeks),
		ConfidenceLowerWeeks:        int(lowerWeeks),
		ConfidenceUpperWeeks:        int(upperWeeks),
		EstimatedCycles:             int(cycles),
		EstimatedSurvivalRate:       profile.AvgSurvivalRate,
		EstimatedMultiplicationRate: profile.AvgMultiplicationRate,
		WeeklyMilestones:            milestones,
		ResourceRequirements:        estimateResources(desired),
		PropagationMethod:           method,
		CreatedAt:                   now().UTC().Format(time.RFC3339),
		CalculatedBy:                calculatedBy,
	}, nil
}

// simulate walks the timeline week by week, spreading each cycle's losses
// evenly and multiplying the survivors at cycle boundaries.
func simulate(initialStock, weeks, cycles int, cycleWeeks, multRate, survivalRate, desired float64) []Milestone {
	boundary := int(math.Ceil(cycleWeeks / float64(cycles)))
	ceiling := int(math.Ceil(desired * milestoneCeiling))
	weeklyRetention := 1 - (1-survivalRate)/cycleWeeks

	milestones := make([]Milestone, 0, weeks)
	current := float64(initialStock)
	for week := 1; week <= weeks; week++ {
		current = math.Floor(current * weeklyRetention)
		if week%boundary == 0 {
			current = math.Floor(current * multRate * survivalRate)
		}
		if week <= denseSampleWeeks || week%2 == 0 || week == weeks {
			milestones = append(milestones, Milestone{
				Week:      week,
				Projected: min(int(current), ceiling),
			})
		}
	}
	return milestones
}

func estimateResources(desired float64) ResourceRequirements {
	return ResourceRequirements{
		Greenhouses:   int(math.Max(1, math.Ceil(desired/unitsPerHouse))),
		LaborHours:    int(math.Ceil(desired / 1000 * laborPerThousand)),
		EstimatedCost: decimal.NewFromFloat(math.Ceil(desired * costPerUnit)),
	}
}

func newID(opts Options) string {
	if opts.NewID != nil {
		return opts.NewID()
	}
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// ValidateQuantity rejects non-positive quantities and quantities too large to project.
func ValidateQuantity(desiredQuantity int) error {
	if desiredQuantity <= 0 {
		return fmt.Errorf("%w: %d (must be a positive integer)", ErrInvalidQuantity, desiredQuantity)
	}
	if int64(desiredQuantity) > maxDesiredQuantity || math.Ceil(float64(desiredQuantity)*milestoneCeiling) >= float64(math.MaxInt) {
		return fmt.Errorf("%w: %d (must not exceed %d)", ErrInvalidQuantity, desiredQuantity, int64(maxDesiredQuantity))
	}
	return nil
}

// ValidateProfile rejects profiles for which the growth model is undefined.
func ValidateProfile(p SpeciesProfile) error {
	rates := []struct {
		name  string
		value float64
	}{
		{"avg_multiplication_rate", p.AvgMultiplicationRate},
		{"avg_survival_rate", p.AvgSurvivalRate},
		{"std_dev_survival", p.StdDevSurvival},
	}
	for _, r := range rates {
		if math.IsNaN(r.value) || math.IsInf(r.value, 0) {
			return fmt.Errorf("%w: %s %s is not a finite number", ErrDegenerateProfile, p.SpeciesID, r.name)
		}
	}
	switch {
	case p.AvgMultiplicationRate <= 1:
		return fmt.Errorf("%w: %s avg_multiplication_rate %v must be greater than 1", ErrDegenerateProfile, p.SpeciesID, p.AvgMultiplicationRate)
	case p.AvgCycleDurationWeeks <= 0 || p.AvgCycleDurationWeeks > MaxCycleDurationWeeks:
		return fmt.Errorf("%w: %s avg_cycle_duration_weeks %d must be in [1, %d]", ErrDegenerateProfile, p.SpeciesID, p.AvgCycleDurationWeeks, MaxCycleDurationWeeks)
	case p.AvgSurvivalRate <= 0 || p.AvgSurvivalRate > 100:
		return fmt.Errorf("%w: %s avg_survival_rate %v must be in (0, 100]", ErrDegenerateProfile, p.SpeciesID, p.AvgSurvivalRate)
	case p.StdDevSurvival < 0 || p.StdDevSurvival > 100:
		return fmt.Errorf("%w: %s std_dev_survival %v must be in [0, 100]", ErrDegenerateProfile, p.SpeciesID, p.StdDevSurvival)
	}
	return nil
}
