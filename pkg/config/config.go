// Package config provides TOML-based configuration loading with environment
// variable expansion.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/BurntSushi/toml"
)

// Validator is an interface for configuration validation.
type Validator interface {
	Validate() error
}

// Load loads configuration from a TOML file with environment variable
// expansion. Unrecognised keys are logged and ignored, never fatal.
func Load[T any](filename string, target *T) error {
	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", filename, err)
	}

	expandedData := os.ExpandEnv(string(data))

	md, err := toml.Decode(expandedData, target)
	if err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", filename, err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("config: unknown key ignored",
			slog.String("file", filename),
			slog.String("key", key.String()))
	}

	if validator, ok := any(target).(Validator); ok {
		if err := validator.Validate(); err != nil {
			return fmt.Errorf("config validation failed: %w", err)
		}
	}

	return nil
}

// LoadIfExists loads configuration when the file is present and is a no-op
// otherwise.
func LoadIfExists[T any](filename string, target *T) error {
	if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return Load(filename, target)
}
