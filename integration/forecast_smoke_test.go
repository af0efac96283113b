package integration_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"labdesk/integration/harness"
)

func TestForecastSmoke(t *testing.T) {
	binPath := harness.BuildBinary(t)
	runDir := t.TempDir()
	workspace := harness.FixtureWorkspace(t, "workspace-min")
	forecastsDir := filepath.Join(workspace, "artifacts", "forecasts")

	args := []string{
		"--workspace", workspace,
		"forecast", "compute",
		"--species", "SPC-001",
		"--quantity", "10000",
	}
	stdout, stderr, code := harness.Run(t, binPath, runDir, args)
	if code != 0 {
		t.Fatalf("labdesk forecast compute exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	for _, want := range []string{"initial stock:      1,095", "90% interval 4-6", "Tissue culture", "Wrote forecast:"} {
		if !strings.Contains(stdout, want) {
			t.Fatalf("forecast output missing %q\n%s", want, stdout)
		}
	}

	entries, err := os.ReadDir(forecastsDir)
	if err != nil {
		t.Fatalf("read forecasts dir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("forecast artifacts = %d, want 1", len(entries))
	}
	first := filepath.Join("artifacts", "forecasts", entries[0].Name())

	stdout, stderr, code = harness.RunWithEnv(t, binPath, runDir, []string{
		"--workspace", workspace,
		"forecast", "compute",
		"--species", "SPC-001",
		"--quantity", "20000",
		"--json",
	}, map[string]string{"LABDESK_CALCULATED_BY": "Greenhouse Ops"})
	if code != 0 {
		t.Fatalf("labdesk forecast compute --json exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	var doc struct {
		DesiredQuantity int    `json:"desired_quantity"`
		CalculatedBy    string `json:"calculated_by"`
	}
	if err := json.Unmarshal([]byte(stdout), &doc); err != nil {
		t.Fatalf("decode forecast json: %v\n%s", err, stdout)
	}
	if doc.DesiredQuantity != 20000 || doc.CalculatedBy != "Greenhouse Ops" {
		t.Fatalf("unexpected forecast %+v", doc)
	}

	entries, err = os.ReadDir(forecastsDir)
	if err != nil {
		t.Fatalf("read forecasts dir: %v", err)
	}
	var second string
	for _, entry := range entries {
		name := filepath.Join("artifacts", "forecasts", entry.Name())
		if name != first {
			second = name
		}
	}
	if second == "" {
		t.Fatalf("second forecast artifact not written")
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{"--workspace", workspace, "forecast", "compare", first, second})
	if code != 0 {
		t.Fatalf("labdesk forecast compare exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "+  desired quantity:   20,000") {
		t.Fatalf("compare output missing quantity change\n%s", stdout)
	}

	stdout, stderr, code = harness.Run(t, binPath, runDir, []string{"--workspace", workspace, "forecast", "show", first})
	if code != 0 {
		t.Fatalf("labdesk forecast show exit code %d\nstdout:\n%s\nstderr:\n%s", code, stdout, stderr)
	}
	if !strings.Contains(stdout, "desired quantity:   10,000") {
		t.Fatalf("forecast show output unexpected\n%s", stdout)
	}

	_, stderr, code = harness.Run(t, binPath, runDir, []string{
		"--workspace", workspace,
		"forecast", "compute",
		"--species", "SPC-001",
		"--quantity", "0",
	})
	if code != 1 || !strings.Contains(stderr, "invalid desired quantity") {
		t.Fatalf("expected invalid quantity failure, code %d\nstderr:\n%s", code, stderr)
	}

	_, stderr, code = harness.Run(t, binPath, runDir, []string{
		"--workspace", workspace,
		"forecast", "compute",
		"--species", "SPC-002",
		"--quantity", "500",
	})
	if code != 0 || !strings.Contains(stderr, "forecast based on few experiments") {
		t.Fatalf("expected low-confidence warning, code %d\nstderr:\n%s", code, stderr)
	}

	requireAuditEvents(t, filepath.Join(workspace, "audit", "audit.sqlite"), []string{
		"forecast_compute_started",
		"forecast_compute_finished",
	})
}
