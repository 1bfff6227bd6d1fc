package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	seed := uint64(1711)
	cfg := &Config{
		Method:      "hare",
		Seats:       3,
		QuotaRule:   "droop",
		Seed:        &seed,
		DatabaseURL: "postgres://localhost/stv",
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_MinimalConfig(t *testing.T) {
	cfg := &Config{
		Method: "gregory",
		Seats:  1,
	}

	err := Validate(cfg)
	assert.NoError(t, err)
}

func TestValidate_UnknownMethod(t *testing.T) {
	cfg := &Config{
		Method: "meek",
		Seats:  3,
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_MissingSeats(t *testing.T) {
	cfg := &Config{
		Method: "hare",
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_UnknownQuotaRule(t *testing.T) {
	cfg := &Config{
		Method:    "gregory",
		Seats:     2,
		QuotaRule: "imperiali",
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestValidate_SeedWithGregory(t *testing.T) {
	seed := uint64(42)
	cfg := &Config{
		Method: "gregory",
		Seats:  2,
		Seed:   &seed,
	}

	err := Validate(cfg)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "seed is only meaningful")
}

func TestLoadFromPath_ValidConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "test_config.yaml")

	validConfig := `
method: hare
seats: 3
quotaRule: droop
seed: 1711
databaseURL: "postgres://localhost/stv"
`

	err := os.WriteFile(configPath, []byte(validConfig), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "hare", cfg.Method)
	assert.Equal(t, 3, cfg.Seats)
	assert.Equal(t, "droop", cfg.QuotaRule)
	require.NotNil(t, cfg.Seed)
	assert.Equal(t, uint64(1711), *cfg.Seed)
	assert.Equal(t, "postgres://localhost/stv", cfg.DatabaseURL)
}

func TestLoadFromPath_MinimalConfig(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "minimal_config.yaml")

	minimalConfig := `
method: gregory
seats: 2
`

	err := os.WriteFile(configPath, []byte(minimalConfig), 0644)
	require.NoError(t, err)

	cfg, err := LoadFromPath(configPath)
	require.NoError(t, err)

	assert.Equal(t, "gregory", cfg.Method)
	assert.Equal(t, 2, cfg.Seats)
	assert.Empty(t, cfg.QuotaRule)
	assert.Nil(t, cfg.Seed)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadFromPath_MissingMethod(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_config.yaml")

	invalidConfig := `
seats: 2
`

	err := os.WriteFile(configPath, []byte(invalidConfig), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoadFromPath_InvalidYAML(t *testing.T) {
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "invalid_yaml.yaml")

	invalidYAML := `
method: "hare"
  invalid indentation
seats: 2
`

	err := os.WriteFile(configPath, []byte(invalidYAML), 0644)
	require.NoError(t, err)

	_, err = LoadFromPath(configPath)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse config file")
}

func TestLoadFromPath_FileNotFound(t *testing.T) {
	_, err := LoadFromPath("/nonexistent/path/config.yaml")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config file")
}
