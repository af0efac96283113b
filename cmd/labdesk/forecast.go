package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"labdesk/internal/catalog"
	"labdesk/internal/forecast"
	"labdesk/internal/notify"
)

func forecastCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:  "forecast",
		Usage: "Compute and inspect production forecasts",
		Subcommands: []*cli.Command{
			{
				Name:  "compute",
				Usage: "Forecast production for a species",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "species", Usage: "Species id", Required: true},
					&cli.IntFlag{Name: "quantity", Usage: "Desired number of units", Required: true},
					&cli.StringFlag{Name: "method", Usage: "Propagation method (default: first listed for the species)"},
					&cli.StringFlag{Name: "by", Usage: "Attribution recorded on the forecast"},
					&cli.BoolFlag{Name: "json", Usage: "Print the forecast as JSON"},
				},
				Action: func(c *cli.Context) error {
					return runForecastCompute(c, s)
				},
			},
			{
				Name:      "show",
				Usage:     "Render a forecast artifact (default: latest)",
				ArgsUsage: "[path]",
				Action: func(c *cli.Context) error {
					return runForecastShow(c, s)
				},
			},
			{
				Name:      "compare",
				Usage:     "Diff the reports of two forecast artifacts",
				ArgsUsage: "<a> <b>",
				Action: func(c *cli.Context) error {
					return runForecastCompare(c, s)
				},
			},
		},
	}
}

func runForecastCompute(c *cli.Context, s *session) error {
	ws, cat, err := loadCatalog(c)
	if err != nil {
		return err
	}
	speciesID := strings.TrimSpace(c.String("species"))
	quantity := c.Int("quantity")

	logger := auditLogger(ws)
	s.logEvent(logger, "forecast_compute_started", map[string]any{
		"species":  speciesID,
		"quantity": quantity,
	})

	f, path, runErr := computeForecast(c, s, cat, ws.ForecastsDir, speciesID, quantity)

	finishPayload := map[string]any{
		"species":  speciesID,
		"quantity": quantity,
	}
	if f != nil {
		finishPayload["forecast_id"] = f.ID
		finishPayload["estimated_weeks"] = f.EstimatedWeeks
		finishPayload["artifact"] = path
	}
	if runErr != nil {
		finishPayload["error"] = runErr.Error()
	}
	s.logEvent(logger, "forecast_compute_finished", finishPayload)
	if runErr != nil {
		return runErr
	}

	s.notify(notify.FormatForecastComputed(f))
	if c.Bool("json") {
		enc := json.NewEncoder(s.stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(f)
	}
	if err := forecast.RenderReport(s.stdout, f); err != nil {
		return err
	}
	fmt.Fprintf(s.stdout, "\nWrote forecast: %s\n", path)
	return nil
}

func computeForecast(c *cli.Context, s *session, profiles catalog.Source, dir, speciesID string, quantity int) (*forecast.Forecast, string, error) {
	profile, ok := profiles.Lookup(speciesID)
	if !ok {
		return nil, "", fmt.Errorf("unknown species %q", speciesID)
	}

	by := c.String("by")
	if strings.TrimSpace(by) == "" {
		by = s.cfg.CalculatedBy
	}
	f, err := forecast.Compute(profile, quantity, forecast.Options{
		PropagationMethod: c.String("method"),
		CalculatedBy:      by,
	})
	if err != nil {
		return nil, "", err
	}
	if profile.LowConfidence() {
		s.logger.Warn("forecast based on few experiments",
			"species", profile.SpeciesID,
			"experiments", profile.CompletedExperiments,
			"threshold", forecast.LowConfidenceExperiments)
		s.notify(notify.FormatLowConfidence(f, profile.CompletedExperiments))
	}

	path := forecast.PathFor(dir, f)
	if err := forecast.WriteForecast(path, f); err != nil {
		return f, "", err
	}
	s.logger.Debug("forecast written", "id", f.ID, "path", path)
	return f, path, nil
}

func runForecastShow(c *cli.Context, s *session) error {
	ws, err := resolveWorkspace(c)
	if err != nil {
		return err
	}
	path := c.Args().First()
	if path == "" {
		path, err = forecast.LatestForecastPath(ws.ForecastsDir)
		if err != nil {
			return err
		}
	} else if path, err = ws.ResolvePath(path); err != nil {
		return fmt.Errorf("resolve forecast path: %w", err)
	}

	f, err := forecast.LoadForecast(path)
	if err != nil {
		return err
	}
	return forecast.RenderReport(s.stdout, f)
}

func runForecastCompare(c *cli.Context, s *session) error {
	if c.NArg() != 2 {
		return fmt.Errorf("forecast compare requires two artifact paths")
	}
	ws, err := resolveWorkspace(c)
	if err != nil {
		return err
	}

	loaded := make([]*forecast.Forecast, 0, 2)
	names := make([]string, 0, 2)
	for _, arg := range c.Args().Slice() {
		path, err := ws.ResolvePath(arg)
		if err != nil {
			return fmt.Errorf("resolve forecast path: %w", err)
		}
		f, err := forecast.LoadForecast(path)
		if err != nil {
			return err
		}
		loaded = append(loaded, f)
		names = append(names, filepath.Base(path))
	}

	diff, err := forecast.Compare(loaded[0], loaded[1], names[0], names[1])
	if err != nil {
		return err
	}
	if diff == "" {
		fmt.Fprintln(s.stdout, "No differences.")
		return nil
	}
	fmt.Fprint(s.stdout, diff)
	return nil
}
