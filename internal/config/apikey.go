package config

import (
	"fmt"

	"github.com/godaily/godaily/internal/env"
)

// APIKeyGenConfig holds all configuration for the apikey binary.
type APIKeyGenConfig struct {
	Database DatabaseConfig

	Email     string
	Name      string
	DaysValid int
}

// LoadAPIKeyGenConfig loads and validates apikey generation configuration.
func LoadAPIKeyGenConfig(email, name string, daysValid int) (*APIKeyGenConfig, error) {
	cfg := &APIKeyGenConfig{
		Email:     email,
		Name:      name,
		DaysValid: daysValid,
	}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load apikey config: %w", err)
	}

	return cfg, nil
}

// Validate validates apikey generation configuration.
func (c *APIKeyGenConfig) Validate() error {
	if err := c.Database.RequireDSN(); err != nil {
		return err
	}

	if c.Email == "" {
		return fmt.Errorf("email is required (use -email flag)")
	}

	if c.Name == "" {
		return fmt.Errorf("name is required (use -name flag)")
	}

	if c.DaysValid < 0 {
		return fmt.Errorf("days must be >= 0 (0 = never expires)")
	}

	return nil
}
