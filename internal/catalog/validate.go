package catalog

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"labdesk/internal/forecast"
)

type rawDocument struct {
	Species []rawSpecies `yaml:"species"`
}

type rawSpecies struct {
	ID                    string   `yaml:"species_id"`
	Name                  string   `yaml:"species_name"`
	CommonName            string   `yaml:"common_name"`
	AvgMultiplicationRate *float64 `yaml:"avg_multiplication_rate"`
	AvgSurvivalRate       *float64 `yaml:"avg_survival_rate"`
	StdDevSurvival        *float64 `yaml:"std_dev_survival"`
	AvgCycleDurationWeeks *int     `yaml:"avg_cycle_duration_weeks"`
	CompletedExperiments  int      `yaml:"completed_experiments"`
	PropagationMethods    []string `yaml:"propagation_methods"`
}

// ValidationError captures a single field-specific validation issue.
type ValidationError struct {
	File    string
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("%s: %s", e.File, e.Message)
	}
	return fmt.Sprintf("%s: %s: %s", e.File, e.Field, e.Message)
}

// ValidationErrors aggregates multiple validation problems.
type ValidationErrors []ValidationError

func (errs ValidationErrors) Error() string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, e.Error())
	}
	return strings.Join(parts, "\n")
}

// ParseAndValidateDocument unmarshals and validates a species catalog file.
func ParseAndValidateDocument(data []byte, source string) (Document, error) {
	var raw rawDocument
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Document{}, ValidationErrors{{
			File:    source,
			Field:   "yaml",
			Message: err.Error(),
		}}
	}

	var errs ValidationErrors
	if len(raw.Species) == 0 {
		errs = append(errs, ValidationError{
			File:    source,
			Field:   "species",
			Message: "must contain at least one species",
		})
	}

	seen := make(map[string]struct{})
	profiles := make([]forecast.SpeciesProfile, 0, len(raw.Species))
	for idx, rs := range raw.Species {
		path := fmt.Sprintf("species[%d]", idx)
		profile, speciesErrs := validateSpecies(rs, path, source)
		errs = append(errs, speciesErrs...)

		if profile.SpeciesID != "" {
			if _, exists := seen[profile.SpeciesID]; exists {
				errs = append(errs, ValidationError{
					File:    source,
					Field:   path + ".species_id",
					Message: fmt.Sprintf("duplicate species_id %q within file", profile.SpeciesID),
				})
			} else {
				seen[profile.SpeciesID] = struct{}{}
			}
		}
		profiles = append(profiles, profile)
	}

	if len(errs) > 0 {
		return Document{}, errs
	}
	return Document{Species: profiles, Source: source}, nil
}

func validateSpecies(raw rawSpecies, fieldPath, source string) (forecast.SpeciesProfile, ValidationErrors) {
	var errs ValidationErrors
	fail := func(field, msg string) {
		errs = append(errs, ValidationError{File: source, Field: fieldPath + "." + field, Message: msg})
	}

	if strings.TrimSpace(raw.ID) == "" {
		fail("species_id", "species_id is required")
	}
	if strings.TrimSpace(raw.Name) == "" {
		fail("species_name", "species_name is required")
	}
	if raw.AvgMultiplicationRate == nil {
		fail("avg_multiplication_rate", "avg_multiplication_rate is required")
	}
	if raw.AvgSurvivalRate == nil {
		fail("avg_survival_rate", "avg_survival_rate is required")
	} else if *raw.AvgSurvivalRate < 0 || *raw.AvgSurvivalRate > 100 {
		fail("avg_survival_rate", "must be between 0 and 100")
	}
	if raw.StdDevSurvival == nil {
		fail("std_dev_survival", "std_dev_survival is required")
	} else if *raw.StdDevSurvival < 0 || *raw.StdDevSurvival > 100 {
		fail("std_dev_survival", "must be between 0 and 100")
	}
	if raw.AvgCycleDurationWeeks == nil {
		fail("avg_cycle_duration_weeks", "avg_cycle_duration_weeks is required")
	} else if *raw.AvgCycleDurationWeeks < 0 {
		fail("avg_cycle_duration_weeks", "cannot be negative")
	} else if *raw.AvgCycleDurationWeeks > forecast.MaxCycleDurationWeeks {
		fail("avg_cycle_duration_weeks", fmt.Sprintf("must not exceed %d", forecast.MaxCycleDurationWeeks))
	}
	if raw.CompletedExperiments < 0 {
		fail("completed_experiments", "cannot be negative")
	}
	for i, m := range raw.PropagationMethods {
		if strings.TrimSpace(m) == "" {
			fail(fmt.Sprintf("propagation_methods[%d]", i), "propagation methods cannot be empty")
		}
	}

	profile := forecast.SpeciesProfile{
		SpeciesID:            strings.TrimSpace(raw.ID),
		SpeciesName:          strings.TrimSpace(raw.Name),
		CommonName:           strings.TrimSpace(raw.CommonName),
		CompletedExperiments: raw.CompletedExperiments,
	}
	for _, m := range raw.PropagationMethods {
		profile.PropagationMethods = append(profile.PropagationMethods, strings.TrimSpace(m))
	}
	if raw.AvgMultiplicationRate != nil {
		profile.AvgMultiplicationRate = *raw.AvgMultiplicationRate
	}
	if raw.AvgSurvivalRate != nil {
		profile.AvgSurvivalRate = *raw.AvgSurvivalRate
	}
	if raw.StdDevSurvival != nil {
		profile.StdDevSurvival = *raw.StdDevSurvival
	}
	if raw.AvgCycleDurationWeeks != nil {
		profile.AvgCycleDurationWeeks = *raw.AvgCycleDurationWeeks
	}

	return profile, errs
}
