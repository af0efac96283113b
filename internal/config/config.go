// Package config loads labdesk settings from the environment.
package config

import (
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// Config holds the environment-level defaults. CLI flags override these.
type Config struct {
	Workspace     string `env:"LABDESK_WORKSPACE"`
	AuditDB       string `env:"LABDESK_AUDIT_DB"`
	CalculatedBy  string `env:"LABDESK_CALCULATED_BY" envDefault:"System"`
	LogLevel      string `env:"LABDESK_LOG_LEVEL"     envDefault:"info"`
	LogFormat     string `env:"LABDESK_LOG_FORMAT"    envDefault:"text"`
	Notifications bool   `env:"LABDESK_NOTIFICATIONS" envDefault:"false"`
}

// Load parses the process environment.
func Load() (Config, error) {
	return parse(env.Options{})
}

// LoadFrom parses an explicit environment map instead of the process environment.
func LoadFrom(environ map[string]string) (Config, error) {
	return parse(env.Options{Environment: environ})
}

func parse(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	cfg.LogFormat = strings.ToLower(strings.TrimSpace(cfg.LogFormat))
	if strings.TrimSpace(cfg.CalculatedBy) == "" {
		cfg.CalculatedBy = "System"
	}
	return cfg, nil
}
