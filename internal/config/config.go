// Package config loads the settings of the GoDaily binaries.
//
// The server and the tools read GODAILY_* environment variables through the env
// package. The CLI first reads an optional TOML file and then applies the same
// environment overrides.
package config

import (
	"fmt"
	"log/slog"
	"strings"
)

// ObservabilityConfig holds logging and OpenTelemetry configuration.
type ObservabilityConfig struct {
	OTelEnabled bool   `env:"GODAILY_OTEL_ENABLED" toml:"otel_enabled"`
	ServiceName string `env:"OTEL_SERVICE_NAME" toml:"service_name"`
	LogLevel    string `env:"GODAILY_LOG_LEVEL" toml:"log_level" default:"info"`
}

// Validate checks the log level.
func (c *ObservabilityConfig) Validate() error {
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

// Level returns the configured slog level, info when unset.
func (c *ObservabilityConfig) Level() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if strings.TrimSpace(s) == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid GODAILY_LOG_LEVEL %q: %w", s, err)
	}
	return level, nil
}
