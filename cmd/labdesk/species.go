package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"labdesk/internal/catalog"
)

func speciesCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:  "species",
		Usage: "Inspect the species growth catalog",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "List species profiles",
				Action: func(c *cli.Context) error {
					return runSpeciesList(c, s)
				},
			},
			{
				Name:      "show",
				Usage:     "Show one species profile",
				ArgsUsage: "<species-id>",
				Action: func(c *cli.Context) error {
					return runSpeciesShow(c, s)
				},
			},
		},
	}
}

func loadCatalog(c *cli.Context) (*resolvedWorkspace, *catalog.Catalog, error) {
	ws, err := resolveWorkspace(c)
	if err != nil {
		return nil, nil, err
	}
	cat, err := catalog.LoadFromDir(ws.SpeciesDir)
	if err != nil {
		return nil, nil, fmt.Errorf("load species catalog: %w", err)
	}
	return ws, cat, nil
}

func runSpeciesList(c *cli.Context, s *session) error {
	_, cat, err := loadCatalog(c)
	if err != nil {
		return err
	}
	profiles := cat.List()
	if len(profiles) == 0 {
		fmt.Fprintln(s.stdout, "No species profiles.")
		return nil
	}

	tw := tabwriter.NewWriter(s.stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSPECIES\tMULT\tSURVIVAL\tCYCLE WEEKS\tEXPERIMENTS")
	for _, p := range profiles {
		experiments := fmt.Sprintf("%d", p.CompletedExperiments)
		if p.LowConfidence() {
			experiments += " (low)"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.2f\t%.1f%%\t%d\t%s\n",
			p.SpeciesID, p.SpeciesName, p.AvgMultiplicationRate, p.AvgSurvivalRate, p.AvgCycleDurationWeeks, experiments)
	}
	return tw.Flush()
}

func runSpeciesShow(c *cli.Context, s *session) error {
	id := strings.TrimSpace(c.Args().First())
	if id == "" {
		return fmt.Errorf("species id is required")
	}
	_, cat, err := loadCatalog(c)
	if err != nil {
		return err
	}
	rec, ok := cat.Record(id)
	if !ok {
		return fmt.Errorf("unknown species %q", id)
	}

	fmt.Fprintf(s.stdout, "# source: %s\n", rec.Source)
	enc := yaml.NewEncoder(s.stdout)
	enc.SetIndent(2)
	if err := enc.Encode(rec.Profile); err != nil {
		return fmt.Errorf("encode profile: %w", err)
	}
	return enc.Close()
}
