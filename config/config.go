// Package config loads and validates the server configuration from a
// YAML file, with sensible defaults for local development.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	ListenAddr     string   `yaml:"listenAddr" validate:"required"`
	DatabasePath   string   `yaml:"databasePath" validate:"required"`
	LogLevel       string   `yaml:"logLevel" validate:"oneof=debug info warn error"`
	AllowedOrigins []string `yaml:"allowedOrigins,omitempty" validate:"dive,required"`
}

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		ListenAddr:     ":8080",
		DatabasePath:   "roster.db",
		LogLevel:       "info",
		AllowedOrigins: []string{"http://localhost:5173", "http://localhost:8080"},
	}
}

// Load loads and validates the configuration from roster_config.yaml.
// It looks in the current directory first, then in the user's home
// directory, and falls back to defaults when no file exists.
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return Default(), nil
	}
	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate validates the configuration struct.
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// findConfigFile searches for roster_config.yaml in the current directory
// and the home directory.
func findConfigFile() (string, error) {
	configFileName := "roster_config.yaml"

	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

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
