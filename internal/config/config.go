// Package config provides TOML configuration for hosts embedding the
// transaction stack, with optional live reload.
package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Config holds host-tunable settings for the transaction stack.
type Config struct {
	// MaxEntries caps the applied range of the stack.
	// Zero means unlimited.
	MaxEntries int `toml:"max_entries"`

	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `toml:"log_level"`

	// ScriptDir is a directory of Lua transaction scripts to load.
	ScriptDir string `toml:"script_dir"`

	// Notify configures change notification delivery.
	Notify NotifyConfig `toml:"notify"`
}

// NotifyConfig configures the stack's change notifier.
type NotifyConfig struct {
	// Async enables asynchronous observer delivery.
	Async bool `toml:"async"`

	// Buffer is the async delivery buffer size.
	Buffer int `toml:"buffer"`
}

// Default returns the default configuration.
func Default() Config {
	return Config{
		MaxEntries: 0,
		LogLevel:   "info",
		Notify: NotifyConfig{
			Async:  false,
			Buffer: 64,
		},
	}
}

// Load reads configuration from a TOML file. A missing file is not an
// error; defaults are returned.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config file %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Default(), fmt.Errorf("parsing config file %s: %w", path, err)
	}

	return cfg, nil
}
