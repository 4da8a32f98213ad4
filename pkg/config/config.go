// Package config provides YAML-based configuration loading with environment variable expansion.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"gopkg.in/yaml.v3"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a YAML file with environment variable expansion.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	if err := yaml.Unmarshal([]byte(expandedData), target); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// LoadOrWarn loads configuration from filename into target. A missing file is
// not an error: target keeps its defaults. A file that is present but fails to
// parse or validate logs a warning and restores target to fallback, so a broken
// config never aborts startup.
func LoadOrWarn[T any](filename string, target *T, fallback T) {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return
	}
	if err := Load(filename, target); err != nil {
		slog.Warn("config file ignored, using defaults",
			slog.String("file", filename),
			slog.String("error", err.Error()))
		*target = fallback
	}
}

// MustLoad loads configuration and panics on failure.
func MustLoad[T any](filename string, target *T) {
	if err := Load(filename, target); err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}
}
