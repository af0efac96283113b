// Package notify formats labdesk events for people and, on macOS, shows them
// as desktop notifications.
package notify

import (
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"labdesk/internal/forecast"
)

// Notifier sends system notifications. Every message is logged regardless of
// whether desktop delivery is enabled.
type Notifier struct {
	Enabled bool
	Logger  *slog.Logger

	// run executes the platform command; tests replace it.
	run func(name string, args ...string) error
}

// New returns a Notifier logging to logger.
func New(enabled bool, logger *slog.Logger) *Notifier {
	return &Notifier{Enabled: enabled, Logger: logger}
}

// Send logs the message and, when enabled on macOS, displays it via osascript.
func (n *Notifier) Send(title, message string) error {
	if n == nil {
		return nil
	}
	if n.Logger != nil {
		n.Logger.Info("notification", "title", title, "message", message)
	}
	if !n.Enabled || runtime.GOOS != "darwin" {
		return nil
	}
	return n.sendMacOS(title, message)
}

func (n *Notifier) sendMacOS(title, message string) error {
	title = strings.ReplaceAll(title, `"`, `\"`)
	message = strings.ReplaceAll(message, `"`, `\"`)

	script := fmt.Sprintf(`display notification "%s" with title "%s"`, message, title)
	run := n.run
	if run == nil {
		run = func(name string, args ...string) error { return exec.Command(name, args...).Run() }
	}
	if err := run("osascript", "-e", script); err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	return nil
}

// FormatRecordChange formats a notification for a created, updated or deleted record.
func FormatRecordChange(op, kind, id string) (title, message string) {
	switch op {
	case "created":
		title = "Labdesk record created"
	case "updated":
		title = "Labdesk record updated"
	case "deleted":
		title = "Labdesk record deleted"
	default:
		title = "Labdesk record " + op
	}
	return title, fmt.Sprintf("%s %s", kind, id)
}

// FormatForecastComputed formats a forecast completion notification.
func FormatForecastComputed(f *forecast.Forecast) (title, message string) {
	title = "Labdesk forecast ready"
	message = fmt.Sprintf("%s: %d units in %d weeks (%d-%d)",
		f.SpeciesName, f.DesiredQuantity, f.EstimatedWeeks, f.ConfidenceLowerWeeks, f.ConfidenceUpperWeeks)
	return title, message
}

// FormatLowConfidence formats a warning for a forecast built on too few experiments.
func FormatLowConfidence(f *forecast.Forecast, experiments int) (title, message string) {
	title = "Labdesk low-confidence forecast"
	message = fmt.Sprintf("%s is based on %d experiment(s)", f.SpeciesName, experiments)
	return title, message
}
