package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"labdesk/internal/business"
	"labdesk/internal/workspace"
)

func initCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:  "init",
		Usage: "Initialize a new workspace",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "template",
				Value: "sample",
				Usage: "Workspace template (sample, empty)",
			},
		},
		Action: func(c *cli.Context) error {
			return runInit(c, s)
		},
	}
}

func runInit(c *cli.Context, s *session) error {
	template := c.String("template")
	if template != "sample" && template != "empty" {
		return fmt.Errorf("unknown template: %s", template)
	}
	root := strings.TrimSpace(c.String("workspace"))
	if root == "" {
		return fmt.Errorf("--workspace is required")
	}

	ws, err := workspace.Open(root)
	if err != nil {
		return err
	}
	if err := ws.EnsureDirs(); err != nil {
		return err
	}
	resolved, err := withAuditDB(c, ws)
	if err != nil {
		return err
	}

	logger := auditLogger(resolved)
	payload := map[string]any{
		"workspace": ws.Root,
		"template":  template,
	}
	s.logEvent(logger, "workspace_init_started", payload)
	var finishErr error
	defer func() {
		finishPayload := map[string]any{
			"workspace": ws.Root,
			"template":  template,
		}
		if finishErr != nil {
			finishPayload["error"] = finishErr.Error()
		}
		s.logEvent(logger, "workspace_init_finished", finishPayload)
	}()

	if template == "sample" {
		if err := writeFileIfMissing(filepath.Join(ws.SpeciesDir, "catalog.yml"), sampleCatalogTemplate); err != nil {
			finishErr = err
			return finishErr
		}
	}
	for _, kind := range business.Kinds() {
		if err := writeFileIfMissing(ws.DatasetPath(kind.Dataset), "[]\n"); err != nil {
			finishErr = err
			return finishErr
		}
	}

	s.logger.Debug("workspace initialized", "root", ws.Root, "template", template)
	fmt.Fprintf(s.stdout, "Initialized workspace: %s\n", ws.Root)
	fmt.Fprintln(s.stdout, "Next steps:")
	fmt.Fprintf(s.stdout, "  %s --workspace %s species list\n", appName, ws.Root)
	fmt.Fprintf(s.stdout, "  %s --workspace %s forecast compute --species SPC-001 --quantity 10000\n", appName, ws.Root)
	return nil
}

func writeFileIfMissing(path string, contents string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !os.IsNotExist(err) {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure dir for %s: %w", path, err)
	}
	return os.WriteFile(path, []byte(contents), 0o644)
}

const sampleCatalogTemplate = `# Growth profiles aggregated from completed propagation experiments.
species:
  - species_id: SPC-001
    species_name: Phalaenopsis amabilis
    common_name: Moth orchid
    avg_multiplication_rate: 9.8
    avg_survival_rate: 93.2
    std_dev_survival: 5
    avg_cycle_duration_weeks: 4
    completed_experiments: 12
    propagation_methods: ["Tissue culture", "Division"]
  - species_id: SPC-002
    species_name: Vanilla planifolia
    common_name: Flat-leaved vanilla
    avg_multiplication_rate: 3.1
    avg_survival_rate: 78
    std_dev_survival: 11.5
    avg_cycle_duration_weeks: 10
    completed_experiments: 2
    propagation_methods: ["Cutting"]
  - species_id: SPC-003
    species_name: Nephrolepis exaltata
    common_name: Boston fern
    avg_multiplication_rate: 14
    avg_survival_rate: 88
    std_dev_survival: 6
    avg_cycle_duration_weeks: 6
    completed_experiments: 5
`
