package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/godaily/godaily/internal/env"
)

// Task backends.
const (
	BackendLocal  = "local"
	BackendRemote = "remote"
)

// Device storage drivers.
const (
	StorageFS     = "fs"
	StorageSQLite = "sqlite"
	StorageGCS    = "gcs"
)

const appDirName = "godaily"

// ClientConfig holds the configuration of the godaily CLI.
type ClientConfig struct {
	// Backend selects where tasks live: "local" (device storage) or "remote".
	Backend string `toml:"backend" env:"GODAILY_BACKEND" default:"local"`

	Storage       DeviceStorageConfig `toml:"storage"`
	Remote        RemoteConfig        `toml:"remote"`
	Observability ObservabilityConfig `toml:"observability"`
}

// DeviceStorageConfig selects the key/value store behind settings and local tasks.
type DeviceStorageConfig struct {
	Driver     string `toml:"driver" env:"GODAILY_STORAGE" default:"fs"`
	Dir        string `toml:"dir" env:"GODAILY_DATA_DIR"`
	SQLitePath string `toml:"sqlite_path" env:"GODAILY_SQLITE_PATH"`
	GCSBucket  string `toml:"gcs_bucket" env:"GODAILY_GCS_BUCKET"`
	GCSPrefix  string `toml:"gcs_prefix" env:"GODAILY_GCS_PREFIX" default:"godaily"`
}

// RemoteConfig points the CLI at a GoDaily server.
type RemoteConfig struct {
	URL string `toml:"url" env:"GODAILY_API_URL" default:"http://localhost:8000"`
}

// Validate checks the backend and storage choices.
func (c *ClientConfig) Validate() error {
	switch c.Backend {
	case BackendLocal:
	case BackendRemote:
		u, err := url.Parse(c.Remote.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("GODAILY_API_URL must be an http(s) URL, got %q", c.Remote.URL)
		}
	default:
		return fmt.Errorf("unknown GODAILY_BACKEND %q (want %s or %s)", c.Backend, BackendLocal, BackendRemote)
	}

	switch c.Storage.Driver {
	case StorageFS, StorageSQLite:
	case StorageGCS:
		if c.Storage.GCSBucket == "" {
			return fmt.Errorf("GODAILY_GCS_BUCKET is required when GODAILY_STORAGE is %q", StorageGCS)
		}
	default:
		return fmt.Errorf("unknown GODAILY_STORAGE %q", c.Storage.Driver)
	}
	return nil
}

// DataDir returns the configured directory, or <user config dir>/godaily.
func (c *DeviceStorageConfig) DataDir() (string, error) {
	if c.Dir != "" {
		return c.Dir, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, appDirName), nil
}

// SQLiteFile returns the configured database path, or godaily.db in DataDir.
func (c *DeviceStorageConfig) SQLiteFile() (string, error) {
	if c.SQLitePath != "" {
		return c.SQLitePath, nil
	}
	dir, err := c.DataDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "godaily.db"), nil
}

// DefaultClientConfigPath returns <user config dir>/godaily/config.toml.
func DefaultClientConfigPath() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate user config directory: %w", err)
	}
	return filepath.Join(base, appDirName, "config.toml"), nil
}

// LoadClientConfig reads the TOML file at path and applies environment overrides.
// An empty path means the default location, where a missing file is not an error.
func LoadClientConfig(path string) (*ClientConfig, error) {
	cfg := &ClientConfig{}

	explicit := path != ""
	if !explicit {
		p, err := DefaultClientConfigPath()
		if err == nil {
			path = p
		}
	}

	if path != "" {
		_, err := toml.DecodeFile(path, cfg)
		switch {
		case err == nil:
		case errors.Is(err, fs.ErrNotExist) && !explicit:
		default:
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	}

	if err := env.Load(cfg); err != nil {
		return nil, fmt.Errorf("failed to load client config: %w", err)
	}
	return cfg, nil
}
