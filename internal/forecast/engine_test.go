package forecast

import (
	"errors"
	"math"
	"reflect"
	"testing"
	"time"
)

func orchidProfile() SpeciesProfile {
	return SpeciesProfile{
		SpeciesID:             "SPC-001",
		SpeciesName:           "Phalaenopsis amabilis",
		CommonName:            "Moth orchid",
		AvgMultiplicationRate: 9.8,
		AvgSurvivalRate:       93.2,
		StdDevSurvival:        5,
		AvgCycleDurationWeeks: 4,
		CompletedExperiments:  12,
		PropagationMethods:    []string{"Tissue culture", "Division"},
	}
}

func fixedOptions() Options {
	return Options{
		Now:   func() time.Time { return time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC) },
		NewID: func() string { return "fc-test" },
	}
}

func TestComputeReferenceExample(t *testing.T) {
	f, err := Compute(orchidProfile(), 10000, fixedOptions())
	if err != nil {
		t.Fatalf("Compute returned error: %v", err)
	}

	if got, want := f.RecommendedInitialStock, 1095; got != want {
		t.Fatalf("initial stock = %d, want %d", got, want)
	}
	if got, want := f.EstimatedCycles, 1; got != want {
		t.Fatalf("cycles = %d, want %d", got, want)
	}
	if got, want := f.EstimatedWeeks, 5; got != want {
		t.Fatalf("estimated weeks = %d, want %d", got, want)
	}
	if f.ConfidenceLowerWeeks != 4 || f.ConfidenceUpperWeeks != 6 {
		t.Fatalf("confidence = %d-%d, want 4-6", f.ConfidenceLowerWeeks, f.ConfidenceUpperWeeks)
	}

	wantMilestones := []Milestone{
		{Week: 1, Projected: 1076},
		{Week: 2, Projected: 1057},
		{Week: 3, Projected: 1039},
		{Week: 4, Projected: 9325},
		{Week: 5, Projected: 10000},
	}
	if !reflect.DeepEqual(f.WeeklyMilestones, wantMilestones) {
		t.Fatalf("milestones = %#v, want %#v", f.WeeklyMilestones, wantMilestones)
	}

	res := f.ResourceRequirements
	if res.Greenhouses != 2 || res.LaborHours != 320 || res.EstimatedCost.IntPart() != 8500 {
		t.Fatalf("resources = %+v, want 2/320/8500", res)
	}

	if f.PropagationMethod != "Tissue culture" {
		t.Fatalf("method = %q, want profile default", f.PropagationMethod)
	}
	if f.CalculatedBy != DefaultCalculatedBy {
		t.Fatalf("calculated by = %q, want %q", f.CalculatedBy, DefaultCalculatedBy)
	}
	if f.CreatedAt != "2026-03-02T09:30:00Z" || f.ID != "fc-test" {
		t.Fatalf("identity = %q @ %q", f.ID, f.CreatedAt)
	}
	if f.EstimatedSurvivalRate != 93.2 || f.EstimatedMultiplicationRate != 9.8 {
		t.Fatalf("rates not echoed: %v / %v", f.EstimatedSurvivalRate, f.EstimatedMultiplicationRate)
	}
}

func TestComputeOverridesAndDefaults(t *testing.T) {
	opts := fixedOptions()
	opts.PropagationMethod = "Cuttings"
	opts.CalculatedBy = "dr.ramos"
	f, err := Compute(orchidProfile(), 500, opts)
	if err != nil {
		t.Fatal(err)
	}
	if f.PropagationMethod != "Cuttings" || f.CalculatedBy != "dr.ramos" {
		t.Fatalf("overrides ignored: %q / %q", f.PropagationMethod, f.CalculatedBy)
	}

	profile := orchidProfile()
	profile.PropagationMethods = nil
	f, err = Compute(profile, 500, fixedOptions())
	if err != nil {
		t.Fatal(err)
	}
	if f.PropagationMethod != DefaultPropagationMethod {
		t.Fatalf("method = %q, want %q", f.PropagationMethod, DefaultPropagationMethod)
	}
}

func TestComputeGeneratesTimeOrderedIDs(t *testing.T) {
	a, err := Compute(orchidProfile(), 100, Options{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Compute(orchidProfile(), 100, Options{})
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == "" || a.ID == b.ID {
		t.Fatalf("expected distinct ids, got %q and %q", a.ID, b.ID)
	}
	if _, err := time.Parse(time.RFC3339, a.CreatedAt); err != nil {
		t.Fatalf("created_at %q is not RFC3339: %v", a.CreatedAt, err)
	}
}

func TestComputeValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*SpeciesProfile)
		quantity int
		want     error
	}{
		{name: "zero quantity", quantity: 0, want: ErrInvalidQuantity},
		{name: "negative quantity", quantity: -5, want: ErrInvalidQuantity},
		{name: "multiplication at one", quantity: 10, mutate: func(p *SpeciesProfile) { p.AvgMultiplicationRate = 1 }, want: ErrDegenerateProfile},
		{name: "multiplication below one", quantity: 10, mutate: func(p *SpeciesProfile) { p.AvgMultiplicationRate = 0.5 }, want: ErrDegenerateProfile},
		{name: "zero cycle", quantity: 10, mutate: func(p *SpeciesProfile) { p.AvgCycleDurationWeeks = 0 }, want: ErrDegenerateProfile},
		{name: "zero survival", quantity: 10, mutate: func(p *SpeciesProfile) { p.AvgSurvivalRate = 0 }, want: ErrDegenerateProfile},
		{name: "survival over 100", quantity: 10, mutate: func(p *SpeciesProfile) { p.AvgSurvivalRate = 140 }, want: ErrDegenerateProfile},
		{name: "negative deviation", quantity: 10, mutate: func(p *SpeciesProfile) { p.StdDevSurvival = -1 }, want: ErrDegenerateProfile},
		{name: "nan multiplication", quantity: 10, mutate: func(p *SpeciesProfile) { p.AvgMultiplicationRate = math.NaN() }, want: ErrDegenerateProfile},
		{name: "nan survival", quantity: 10, mutate: func(p *SpeciesProfile) { p.AvgSurvivalRate = math.NaN() }, want: ErrDegenerateProfile},
		{name: "infinite multiplication", quantity: 10, mutate: func(p *SpeciesProfile) { p.AvgMultiplicationRate = math.Inf(1) }, want: ErrDegenerateProfile},
		{name: "infinite deviation", quantity: 10, mutate: func(p *SpeciesProfile) { p.StdDevSurvival = math.Inf(1) }, want: ErrDegenerateProfile},
		{name: "deviation over 100", quantity: 10, mutate: func(p *SpeciesProfile) { p.StdDevSurvival = 100.5 }, want: ErrDegenerateProfile},
		{name: "negative cycle", quantity: 10, mutate: func(p *SpeciesProfile) { p.AvgCycleDurationWeeks = -3 }, want: ErrDegenerateProfile},
		{name: "cycle over ten years", quantity: 10, mutate: func(p *SpeciesProfile) { p.AvgCycleDurationWeeks = 1_000_000_000 }, want: ErrDegenerateProfile},
		{name: "initial stock overflows", quantity: 1_000_000_000, mutate: func(p *SpeciesProfile) { p.AvgSurvivalRate = 1e-12 }, want: ErrDegenerateProfile},
		{name: "quantity at max int", quantity: math.MaxInt, want: ErrInvalidQuantity},
		{name: "quantity beyond float precision", quantity: maxDesiredQuantity + 1, want: ErrInvalidQuantity},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			profile := orchidProfile()
			if tt.mutate != nil {
				tt.mutate(&profile)
			}
			f, err := Compute(profile, tt.quantity, fixedOptions())
			if !errors.Is(err, tt.want) {
				t.Fatalf("err = %v, want %v", err, tt.want)
			}
			if f != nil {
				t.Fatalf("expected no forecast on error, got %+v", f)
			}
		})
	}
}

func TestComputeProperties(t *testing.T) {
	t.Parallel()

	profiles := []SpeciesProfile{
		orchidProfile(),
		{SpeciesID: "SPC-002", AvgMultiplicationRate: 1.4, AvgSurvivalRate: 61.5, StdDevSurvival: 18, AvgCycleDurationWeeks: 11},
		{SpeciesID: "SPC-003", AvgMultiplicationRate: 3.2, AvgSurvivalRate: 100, StdDevSurvival: 0, AvgCycleDurationWeeks: 1},
		{SpeciesID: "SPC-004", AvgMultiplicationRate: 25, AvgSurvivalRate: 12, StdDevSurvival: 40, AvgCycleDurationWeeks: 26},
	}
	quantities := []int{1, 2, 7, 99, 1000, 4999, 5001, 123457}

	for _, profile := range profiles {
		for _, q := range quantities {
			first, err := Compute(profile, q, fixedOptions())
			if err != nil {
				t.Fatalf("%s q=%d: %v", profile.SpeciesID, q, err)
			}
			second, err := Compute(profile, q, fixedOptions())
			if err != nil {
				t.Fatalf("%s q=%d: %v", profile.SpeciesID, q, err)
			}
			if !reflect.DeepEqual(first, second) {
				t.Fatalf("%s q=%d: results differ between calls", profile.SpeciesID, q)
			}

			ms := first.WeeklyMilestones
			if len(ms) == 0 {
				t.Fatalf("%s q=%d: no milestones", profile.SpeciesID, q)
			}
			if got := ms[len(ms)-1].Projected; got != q {
				t.Fatalf("%s q=%d: final milestone = %d", profile.SpeciesID, q, got)
			}
			if got := ms[len(ms)-1].Week; got != first.EstimatedWeeks {
				t.Fatalf("%s q=%d: final week = %d, want %d", profile.SpeciesID, q, got, first.EstimatedWeeks)
			}
			for i := 1; i < len(ms); i++ {
				if ms[i].Week <= ms[i-1].Week {
					t.Fatalf("%s q=%d: weeks not increasing: %#v", profile.SpeciesID, q, ms)
				}
			}
			if !(first.ConfidenceLowerWeeks <= first.EstimatedWeeks && first.EstimatedWeeks <= first.ConfidenceUpperWeeks) {
				t.Fatalf("%s q=%d: bounds %d <= %d <= %d violated", profile.SpeciesID, q,
					first.ConfidenceLowerWeeks, first.EstimatedWeeks, first.ConfidenceUpperWeeks)
			}
			if first.ConfidenceLowerWeeks < 1 {
				t.Fatalf("%s q=%d: lower bound %d < 1", profile.SpeciesID, q, first.ConfidenceLowerWeeks)
			}
			if first.ResourceRequirements.Greenhouses < 1 {
				t.Fatalf("%s q=%d: greenhouses %d < 1", profile.SpeciesID, q, first.ResourceRequirements.Greenhouses)
			}
			if first.RecommendedInitialStock < 1 || first.EstimatedCycles < 1 {
				t.Fatalf("%s q=%d: stock=%d cycles=%d", profile.SpeciesID, q, first.RecommendedInitialStock, first.EstimatedCycles)
			}
		}
	}
}

func TestComputeSingleUnit(t *testing.T) {
	f, err := Compute(orchidProfile(), 1, fixedOptions())
	if err != nil {
		t.Fatal(err)
	}
	res := f.ResourceRequirements
	if res.Greenhouses != 1 || res.LaborHours != 1 || res.EstimatedCost.IntPart() != 1 {
		t.Fatalf("resources = %+v, want 1/1/1", res)
	}
	if f.RecommendedInitialStock != 1 {
		t.Fatalf("initial stock = %d, want 1", f.RecommendedInitialStock)
	}
}

func TestMilestoneSampling(t *testing.T) {
	profile := SpeciesProfile{
		SpeciesID:             "SPC-010",
		AvgMultiplicationRate: 2,
		AvgSurvivalRate:       90,
		StdDevSurvival:        10,
		AvgCycleDurationWeeks: 9,
	}
	f, err := Compute(profile, 1000, fixedOptions())
	if err != nil {
		t.Fatal(err)
	}
	// 9 cycle weeks + ceil(1.35) buffer = 11 weeks: 1-4 dense, then even weeks, then the last.
	if f.EstimatedWeeks != 11 {
		t.Fatalf("estimated weeks = %d, want 11", f.EstimatedWeeks)
	}
	var weeks []int
	for _, m := range f.WeeklyMilestones {
		weeks = append(weeks, m.Week)
	}
	want := []int{1, 2, 3, 4, 6, 8, 10, 11}
	if !reflect.DeepEqual(weeks, want) {
		t.Fatalf("sampled weeks = %v, want %v", weeks, want)
	}
	ceiling := int(math.Ceil(1000 * 1.05))
	for _, m := range f.WeeklyMilestones {
		if m.Projected > ceiling {
			t.Fatalf("week %d projected %d above ceiling %d", m.Week, m.Projected, ceiling)
		}
	}
}

func TestLowConfidence(t *testing.T) {
	p := orchidProfile()
	p.CompletedExperiments = 2
	if !p.LowConfidence() {
		t.Fatalf("expected 2 experiments to be low confidence")
	}
	p.CompletedExperiments = LowConfidenceExperiments
	if p.LowConfidence() {
		t.Fatalf("expected %d experiments to be sufficient", LowConfidenceExperiments)
	}
}
