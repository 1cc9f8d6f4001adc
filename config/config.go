// Package config loads server settings from an optional YAML file with
// environment-variable overrides.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all settings for the backend.
type Config struct {
	// Port the HTTP server listens on.
	Port string `yaml:"port" validate:"required,numeric"`
	// FixturesDir optionally overrides the embedded fixture catalog.
	FixturesDir string `yaml:"fixtures_dir"`
	// GinMode is gin's run mode: debug, release or test.
	GinMode string `yaml:"gin_mode" validate:"omitempty,oneof=debug release test"`
}

// Load reads the config from path, falling back to defaults when the file
// does not exist, then applies environment overrides and validates.
// An empty path skips the file entirely.
func Load(path string) (*Config, error) {
	cfg := defaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parse config %s: %w", path, err)
			}
		case errors.Is(err, os.ErrNotExist):
			// Defaults apply.
		default:
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	applyEnvOverrides(cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func defaultConfig() *Config {
	return &Config{
		Port:    "3000",
		GinMode: "release",
	}
}

func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Port = v
	}
	if v := os.Getenv("DVZ_FIXTURES_DIR"); v != "" {
		cfg.FixturesDir = v
	}
	if v := os.Getenv("GIN_MODE"); v != "" {
		cfg.GinMode = v
	}
}
