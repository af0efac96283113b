package main

import (
	"bytes"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"labdesk/internal/config"
	"labdesk/internal/records"
)

type cliRun struct {
	t      *testing.T
	cfg    config.Config
	stdout bytes.Buffer
	stderr bytes.Buffer
}

func (r *cliRun) run(args ...string) error {
	r.t.Helper()
	r.stdout.Reset()
	r.stderr.Reset()
	app := newApp(r.cfg, &r.stdout, &r.stderr)
	return app.Run(append([]string{appName}, args...))
}

func newRun(t *testing.T) *cliRun {
	t.Helper()
	cfg, err := config.LoadFrom(map[string]string{
		"LABDESK_WORKSPACE": filepath.Join(t.TempDir(), "lab"),
		"LABDESK_LOG_LEVEL": "warn",
	})
	if err != nil {
		t.Fatalf("config: %v", err)
	}
	r := &cliRun{t: t, cfg: cfg}
	if err := r.run("init"); err != nil {
		t.Fatalf("init: %v\n%s", err, r.stderr.String())
	}
	return r
}

func TestForecastComputeAndShowLatest(t *testing.T) {
	t.Parallel()

	r := newRun(t)
	if err := r.run("forecast", "compute", "--species", "SPC-001", "--quantity", "10000", "--by", "Lab Manager"); err != nil {
		t.Fatalf("compute: %v\n%s", err, r.stderr.String())
	}
	if !strings.Contains(r.stdout.String(), "calculated by:      Lab Manager") {
		t.Fatalf("attribution missing:\n%s", r.stdout.String())
	}

	if err := r.run("forecast", "show"); err != nil {
		t.Fatalf("show: %v", err)
	}
	if !strings.Contains(r.stdout.String(), "greenhouses:        2") {
		t.Fatalf("latest forecast not rendered:\n%s", r.stdout.String())
	}

	if err := r.run("forecast", "compute", "--species", "SPC-404", "--quantity", "10"); err == nil {
		t.Fatalf("expected unknown species error")
	}
}

func TestRecordCommands(t *testing.T) {
	t.Parallel()

	r := newRun(t)
	if err := r.run("payment", "create", "--contract", "CTR-001", "--amount", "250.50", "--due", "2026-07-01"); err != nil {
		t.Fatalf("create payment: %v", err)
	}
	if !strings.Contains(r.stdout.String(), "id: PAY-001") || !strings.Contains(r.stdout.String(), "status: pending") {
		t.Fatalf("unexpected payment:\n%s", r.stdout.String())
	}

	if err := r.run("payment", "update", "--method", "", "PAY-001"); err != nil {
		t.Fatalf("no-op update: %v", err)
	}
	if !strings.Contains(r.stdout.String(), "No changes to PAY-001.") {
		t.Fatalf("expected no-op update, got:\n%s", r.stdout.String())
	}

	if err := r.run("payment", "update", "--status", "paid", "PAY-001"); err != nil {
		t.Fatalf("update: %v", err)
	}
	if !strings.Contains(r.stdout.String(), "+status: paid") {
		t.Fatalf("missing diff:\n%s", r.stdout.String())
	}

	if err := r.run("payment", "update", "--amount", "abc", "PAY-001"); err == nil {
		t.Fatalf("expected decimal parse error")
	}

	err := r.run("payment", "delete", "PAY-009")
	if !errors.Is(err, records.ErrNotFound) {
		t.Fatalf("delete missing = %v, want ErrNotFound", err)
	}

	if err := r.run("payment", "list"); err != nil {
		t.Fatalf("list: %v", err)
	}
	if !strings.Contains(r.stdout.String(), "250.50") {
		t.Fatalf("list missing amount:\n%s", r.stdout.String())
	}

	if err := r.run("audit", "tail", "--kind", "payments", "--limit", "1"); err != nil {
		t.Fatalf("audit tail --kind: %v", err)
	}
	if !strings.Contains(r.stdout.String(), "record_updated") || strings.Contains(r.stdout.String(), "record_created") {
		t.Fatalf("kind filter output:\n%s", r.stdout.String())
	}
	if err := r.run("audit", "tail", "--kind", "greenhouse"); err == nil {
		t.Fatalf("expected unknown kind error")
	}

	if err := r.run("audit", "tail", "--limit", "0"); err != nil {
		t.Fatalf("audit tail: %v", err)
	}
	out := r.stdout.String()
	if !strings.Contains(out, "record_created") || !strings.Contains(out, "record_updated") {
		t.Fatalf("audit tail missing record events:\n%s", out)
	}
}

func TestInitRequiresWorkspace(t *testing.T) {
	t.Parallel()

	r := &cliRun{t: t, cfg: config.Config{LogLevel: "info", LogFormat: "text", CalculatedBy: "System"}}
	if err := r.run("init"); err == nil || !strings.Contains(err.Error(), "--workspace is required") {
		t.Fatalf("init without workspace = %v", err)
	}
}
