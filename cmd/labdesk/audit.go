package main

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"labdesk/internal/audit"
	"labdesk/internal/business"
)

func auditCommand(s *session) *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Inspect the audit log",
		Subcommands: []*cli.Command{
			{
				Name:  "tail",
				Usage: "Print the most recent audit events",
				Flags: []cli.Flag{
					&cli.IntFlag{Name: "limit", Value: 20, Usage: "Number of events (0 for all)"},
					&cli.StringFlag{Name: "kind", Usage: "Only record events for this entity kind"},
				},
				Action: func(c *cli.Context) error {
					return runAuditTail(c, s)
				},
			},
		},
	}
}

func runAuditTail(c *cli.Context, s *session) error {
	ws, err := resolveWorkspace(c)
	if err != nil {
		return err
	}
	limit := c.Int("limit")
	filter := c.String("kind")
	if filter != "" {
		kind, err := business.LookupKind(filter)
		if err != nil {
			return err
		}
		filter = kind.Name
		limit = 0
	}
	events, err := auditLogger(ws).Events(limit)
	if err != nil {
		return err
	}
	if filter != "" {
		events = eventsForKind(events, filter, c.Int("limit"))
	}
	if len(events) == 0 {
		fmt.Fprintln(s.stdout, "No audit events.")
		return nil
	}
	for _, ev := range events {
		fmt.Fprintf(s.stdout, "%s  %-4s %-28s %s\n", ev.Time.Local().Format(time.DateTime), ev.Actor, ev.Type, ev.Payload)
	}
	return nil
}

// eventsForKind keeps the last limit events whose payload names kind.
func eventsForKind(events []audit.Event, kind string, limit int) []audit.Event {
	var out []audit.Event
	for _, ev := range events {
		var payload struct {
			Kind string `json:"kind"`
		}
		if err := json.Unmarshal(ev.Payload, &payload); err != nil || payload.Kind != kind {
			continue
		}
		out = append(out, ev)
	}
	if limit > 0 && len(out) > limit {
		out = out[len(out)-limit:]
	}
	return out
}
