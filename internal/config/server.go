package config

import (
	"fmt"
	"time"

	"github.com/godaily/godaily/internal/env"
)

// ServerConfig holds all configuration for the server binary.
type ServerConfig struct {
	Database        DatabaseConfig
	HTTP            HTTPConfig
	Auth            AuthConfig
	Observability   ObservabilityConfig
	ShutdownTimeout time.Duration `env:"GODAILY_SHUTDOWN_TIMEOUT" default:"10s"`
}

// HTTPConfig holds HTTP server configuration. Zero values take the server defaults.
type HTTPConfig struct {
	Host              string        `env:"GODAILY_HTTP_HOST"`
	Port              string        `env:"GODAILY_HTTP_PORT"`
	ReadTimeout       time.Duration `env:"GODAILY_HTTP_READ_TIMEOUT"`
	WriteTimeout      time.Duration `env:"GODAILY_HTTP_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `env:"GODAILY_HTTP_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `env:"GODAILY_HTTP_READ_HEADER_TIMEOUT"`
	MaxHeaderBytes    int           `env:"GODAILY_HTTP_MAX_HEADER_BYTES"`
	MaxBodyBytes      int64         `env:"GODAILY_HTTP_MAX_BODY_BYTES"`
}

// AuthConfig holds authenticator and account configuration.
type AuthConfig struct {
	OperationTimeout time.Duration `env:"GODAILY_AUTH_OPERATION_TIMEOUT"`
	UpdateQueueSize  int           `env:"GODAILY_AUTH_UPDATE_QUEUE_SIZE"`

	// TokenTTL is the lifetime of tokens issued by /auth/login; zero never expires.
	TokenTTL   time.Duration `env:"GODAILY_TOKEN_TTL" default:"720h"`
	BcryptCost int           `env:"GODAILY_BCRYPT_COST" default:"12"`
}

// Validate checks the auth settings.
func (c *AuthConfig) Validate() error {
	if c.TokenTTL < 0 {
		return fmt.Errorf("GODAILY_TOKEN_TTL must be >= 0")
	}
	if c.BcryptCost < 4 || c.BcryptCost > 31 {
		return fmt.Errorf("GODAILY_BCRYPT_COST must be between 4 and 31, got %d", c.BcryptCost)
	}
	return nil
}

// LoadServerConfig loads and validates server configuration from environment.
func LoadServerConfig() (*ServerConfig, error) {
	cfg := &ServerConfig{}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load server config: %w", err)
	}

	return cfg, nil
}
