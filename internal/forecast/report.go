package forecast

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// RenderReport writes a human-readable summary of f followed by its milestone table.
func RenderReport(w io.Writer, f *Forecast) error {
	if f == nil {
		return fmt.Errorf("forecast is required")
	}
	p := message.NewPrinter(language.English)
	res := f.ResourceRequirements

	lines := []string{
		p.Sprintf("Forecast %s", f.ID),
		p.Sprintf("  species:            %s %s", f.SpeciesID, f.SpeciesName),
		p.Sprintf("  method:             %s", f.PropagationMethod),
		p.Sprintf("  desired quantity:   %d", f.DesiredQuantity),
		p.Sprintf("  initial stock:      %d", f.RecommendedInitialStock),
		p.Sprintf("  estimated weeks:    %d (90%% interval %d-%d)", f.EstimatedWeeks, f.ConfidenceLowerWeeks, f.ConfidenceUpperWeeks),
		p.Sprintf("  cycles:             %d", f.EstimatedCycles),
		p.Sprintf("  survival / mult:    %.1f%% / %.2fx", f.EstimatedSurvivalRate, f.EstimatedMultiplicationRate),
		p.Sprintf("  greenhouses:        %d", res.Greenhouses),
		p.Sprintf("  labor hours:        %d", res.LaborHours),
		p.Sprintf("  estimated cost:     %d", res.EstimatedCost.IntPart()),
		p.Sprintf("  calculated by:      %s at %s", f.CalculatedBy, f.CreatedAt),
		"",
		"  week   projected",
	}
	for _, m := range f.WeeklyMilestones {
		lines = append(lines, p.Sprintf("  %4d  %10d", m.Week, m.Projected))
	}

	_, err := io.WriteString(w, strings.Join(lines, "\n")+"\n")
	return err
}

// Compare returns a unified diff between the reports of two forecasts. The
// identity lines are left out so only the projection itself is compared.
func Compare(a, b *Forecast, nameA, nameB string) (string, error) {
	left, err := comparableReport(a)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", nameA, err)
	}
	right, err := comparableReport(b)
	if err != nil {
		return "", fmt.Errorf("render %s: %w", nameB, err)
	}

	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(left),
		B:        difflib.SplitLines(right),
		FromFile: nameA,
		ToFile:   nameB,
		Context:  3,
	}
	text, err := difflib.GetUnifiedDiffString(diff)
	if err != nil {
		return "", fmt.Errorf("diff forecasts: %w", err)
	}
	return text, nil
}

func comparableReport(f *Forecast) (string, error) {
	if f == nil {
		return "", fmt.Errorf("forecast is required")
	}
	stripped := *f
	stripped.ID = ""
	stripped.CreatedAt = ""
	var buf bytes.Buffer
	if err := RenderReport(&buf, &stripped); err != nil {
		return "", err
	}
	return buf.String(), nil
}
