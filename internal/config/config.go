package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const configFileName = "stv_config.yaml"

// Config represents the application configuration
type Config struct {
	// Method is the vote transfer method: "hare" or "gregory"
	Method string `yaml:"method" validate:"required,oneof=hare gregory"`

	// Seats is the number of seats to fill
	Seats int `yaml:"seats" validate:"required,min=1"`

	// QuotaRule selects the election quota: "droop" (default) or "hare"
	QuotaRule string `yaml:"quotaRule,omitempty" validate:"omitempty,oneof=droop hare"`

	// Seed fixes the random seed for Hare counts so results reproduce.
	// Leave unset for a fresh entropy seed per draw.
	Seed *uint64 `yaml:"seed,omitempty"`

	// DatabaseURL is the postgres connection string for storing results.
	// Leave unset to skip persistence.
	DatabaseURL string `yaml:"databaseURL,omitempty"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from stv_config.yaml.
// It looks for the config file in the current directory first, then in the
// user's home directory.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if cfg.Seed != nil && cfg.Method != "hare" {
		return fmt.Errorf("seed is only meaningful for the hare method, not %q", cfg.Method)
	}

	return nil
}

// findConfigFile searches for stv_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
