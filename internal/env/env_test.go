package env

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errPortRequired = errors.New("port required")

type listenConfig struct {
	Port string `env:"TEST_GODAILY_PORT"`
}

func (c *listenConfig) Validate() error {
	if c.Port == "" {
		return errPortRequired
	}
	return nil
}

type testConfig struct {
	Host    string        `env:"TEST_GODAILY_HOST" default:"localhost"`
	Retries int           `env:"TEST_GODAILY_RETRIES" default:"3"`
	Enabled bool          `env:"TEST_GODAILY_ENABLED" default:"true"`
	Timeout time.Duration `env:"TEST_GODAILY_TIMEOUT"`
	Name    string        `env:"TEST_GODAILY_NAME"`
	Listen  listenConfig
	ignored string
}

func TestLoad(t *testing.T) {
	t.Setenv("TEST_GODAILY_HOST", "example.com")
	t.Setenv("TEST_GODAILY_RETRIES", "7")
	t.Setenv("TEST_GODAILY_ENABLED", "false")
	t.Setenv("TEST_GODAILY_TIMEOUT", "1m30s")
	t.Setenv("TEST_GODAILY_PORT", "8000")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "example.com", cfg.Host)
	assert.Equal(t, 7, cfg.Retries)
	assert.False(t, cfg.Enabled)
	assert.Equal(t, 90*time.Second, cfg.Timeout)
	assert.Equal(t, "8000", cfg.Listen.Port)
	assert.Empty(t, cfg.ignored)
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("TEST_GODAILY_PORT", "8000")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "localhost", cfg.Host)
	assert.Equal(t, 3, cfg.Retries)
	assert.True(t, cfg.Enabled)
	assert.Zero(t, cfg.Timeout)
	assert.Empty(t, cfg.Name)
}

func TestLoad_EmptyStringRespected(t *testing.T) {
	t.Setenv("TEST_GODAILY_HOST", "")
	t.Setenv("TEST_GODAILY_PORT", "8000")

	var cfg testConfig
	require.NoError(t, Load(&cfg))

	assert.Equal(t, "", cfg.Host)
	assert.Equal(t, 3, cfg.Retries)
}

func TestLoad_PrefilledValuesBeatDefaults(t *testing.T) {
	t.Setenv("TEST_GODAILY_PORT", "8000")

	cfg := testConfig{Host: "from-file"}
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "from-file", cfg.Host)

	t.Setenv("TEST_GODAILY_HOST", "from-env")
	require.NoError(t, Load(&cfg))
	assert.Equal(t, "from-env", cfg.Host)
}

func TestLoad_NestedValidation(t *testing.T) {
	var cfg testConfig
	assert.ErrorIs(t, Load(&cfg), errPortRequired)
}

func TestLoad_InvalidValue(t *testing.T) {
	t.Setenv("TEST_GODAILY_PORT", "8000")
	t.Setenv("TEST_GODAILY_RETRIES", "many")

	var cfg testConfig
	err := Load(&cfg)

	var invalid ErrInvalidValue
	require.ErrorAs(t, err, &invalid)
	assert.Equal(t, "TEST_GODAILY_RETRIES", invalid.EnvVar)
	assert.Equal(t, "Retries", invalid.Field)
}

func TestLoad_RequiresStructPointer(t *testing.T) {
	var cfg testConfig
	err := Load(cfg)

	var notPtr ErrNotStructPointer
	assert.ErrorAs(t, err, &notPtr)
}

func TestLoad_UnsupportedType(t *testing.T) {
	t.Setenv("TEST_GODAILY_RATIO", "0.5")

	var cfg struct {
		Ratio float64 `env:"TEST_GODAILY_RATIO"`
	}
	var unsupported ErrUnsupportedType
	assert.ErrorAs(t, Load(&cfg), &unsupported)
}
