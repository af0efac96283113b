package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v2"

	"labdesk/internal/audit"
	"labdesk/internal/config"
	"labdesk/internal/logging"
	"labdesk/internal/notify"
	"labdesk/internal/workspace"
)

const appName = "labdesk"

var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := newApp(cfg, os.Stdout, os.Stderr).Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(cfg config.Config, stdout, stderr io.Writer) *cli.App {
	s := &session{
		cfg:    cfg,
		stdout: stdout,
		logger: logging.Discard(),
	}
	return &cli.App{
		Name:      appName,
		Usage:     "Propagation forecasting and lab business records",
		Version:   version,
		Writer:    stdout,
		ErrWriter: stderr,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "workspace",
				Value: cfg.Workspace,
				Usage: "Path to workspace root",
			},
			&cli.StringFlag{
				Name:  "audit-db",
				Value: cfg.AuditDB,
				Usage: "Audit database path (default: <workspace>/audit/audit.sqlite)",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Value: cfg.LogLevel,
				Usage: "Log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Value: cfg.LogFormat,
				Usage: "Log format (text, json)",
			},
			&cli.BoolFlag{
				Name:  "notify",
				Value: cfg.Notifications,
				Usage: "Send desktop notifications (macOS)",
			},
		},
		Before: func(c *cli.Context) error {
			logger, err := logging.New(c.String("log-level"), c.String("log-format"), stderr)
			if err != nil {
				return err
			}
			s.logger = logger
			s.notifier = notify.New(c.Bool("notify"), logger)
			return nil
		},
		Commands: []*cli.Command{
			initCommand(s),
			speciesCommand(s),
			forecastCommand(s),
			entityCommand(s, clientEntity()),
			entityCommand(s, contractEntity()),
			entityCommand(s, paymentEntity()),
			auditCommand(s),
		},
	}
}

// session carries the per-invocation dependencies shared by every command.
// Before fills in the logger and notifier once global flags are parsed.
type session struct {
	cfg      config.Config
	stdout   io.Writer
	logger   *slog.Logger
	notifier sender
}

type sender interface {
	Send(title, message string) error
}

type resolvedWorkspace struct {
	*workspace.Workspace
	AuditDB string
}

func resolveWorkspace(c *cli.Context) (*resolvedWorkspace, error) {
	root := strings.TrimSpace(c.String("workspace"))
	if root == "" {
		return nil, fmt.Errorf("--workspace is required")
	}
	ws, err := workspace.Resolve(root)
	if err != nil {
		return nil, err
	}
	return withAuditDB(c, ws)
}

func withAuditDB(c *cli.Context, ws *workspace.Workspace) (*resolvedWorkspace, error) {
	resolved := &resolvedWorkspace{Workspace: ws, AuditDB: ws.AuditDBPath}
	if override := c.String("audit-db"); override != "" {
		path, err := ws.ResolvePath(override)
		if err != nil {
			return nil, fmt.Errorf("resolve --audit-db: %w", err)
		}
		resolved.AuditDB = path
	}
	return resolved, nil
}

// logEvent records an audit event. Failures are reported but never fatal.
func (s *session) logEvent(logger *audit.Logger, eventType string, payload map[string]any) {
	if err := logger.LogEvent("cli", eventType, payload); err != nil {
		s.logger.Warn("audit log failed", "event", eventType, "error", err)
	}
}

func auditLogger(ws *resolvedWorkspace) *audit.Logger {
	return audit.NewLogger(ws.AuditDB)
}

// notify sends a notification. Failures are logged but never fatal.
func (s *session) notify(title, message string) {
	if err := s.notifier.Send(title, message); err != nil {
		s.logger.Warn("notification failed", "title", title, "error", err)
	}
}
