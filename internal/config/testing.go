package config

import (
	"fmt"

	"github.com/godaily/godaily/internal/env"
)

// TestConfig holds the optional external resources integration tests run against.
// Tests skip themselves when the resource they need is not configured.
type TestConfig struct {
	Database  DatabaseConfig
	GCSBucket string `env:"TEST_GCS_BUCKET"`
}

// LoadTestConfig loads test configuration from environment.
func LoadTestConfig() (*TestConfig, error) {
	cfg := &TestConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load test config: %w", err)
	}

	return cfg, nil
}
