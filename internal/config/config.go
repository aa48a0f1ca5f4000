// SPDX-License-Identifier: MPL-2.0

// Package config resolves deckhand's runtime configuration from defaults,
// an optional config file, and DECKHAND_* environment variables, in that
// order of increasing precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/viper"
)

const (
	// AppName is the application name.
	AppName = "deckhand"
	// ConfigFileName is the name of the config file (without extension).
	ConfigFileName = "config"
	// ConfigFileExt is the config file extension.
	ConfigFileExt = "yml"
	// EnvPrefix is the prefix for environment variable overrides.
	EnvPrefix = "DECKHAND"
)

// ErrInvalidConfig is the sentinel error wrapped by InvalidConfigError.
var ErrInvalidConfig = errors.New("invalid config")

type (
	// Config is deckhand's resolved runtime configuration.
	Config struct {
		// RegistryPath is the path to the registry document.
		RegistryPath string `mapstructure:"registry_path"`
		// ModulesDir is the directory holding per-module definition
		// directories, each with a module.yml.
		ModulesDir string `mapstructure:"modules_dir"`
		// OutputDir is where generated artifacts are written.
		OutputDir string `mapstructure:"output_dir"`
		// DefaultNetwork is the shared bridge network name for Compose output.
		DefaultNetwork string `mapstructure:"default_network"`
		// Verbose enables debug logging.
		Verbose bool `mapstructure:"verbose"`
	}

	// InvalidConfigError reports a config field that failed validation.
	InvalidConfigError struct {
		Field  string
		Reason string
	}

	// LoadOptions control config resolution.
	LoadOptions struct {
		// ConfigFilePath, when set, is used exclusively instead of the
		// platform config directory lookup.
		ConfigFilePath string
	}
)

// Error implements the error interface.
func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("config field %s: %s", e.Field, e.Reason)
}

// Unwrap returns ErrInvalidConfig so callers can use errors.Is for
// programmatic detection.
func (e *InvalidConfigError) Unwrap() error { return ErrInvalidConfig }

// DefaultConfig returns the built-in defaults.
func DefaultConfig() Config {
	return Config{
		RegistryPath:   "registry.yml",
		ModulesDir:     "modules",
		OutputDir:      ".",
		DefaultNetwork: "deckhand",
	}
}

// Validate returns nil if every field is usable.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.RegistryPath) == "" {
		return &InvalidConfigError{Field: "registry_path", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.ModulesDir) == "" {
		return &InvalidConfigError{Field: "modules_dir", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.OutputDir) == "" {
		return &InvalidConfigError{Field: "output_dir", Reason: "must not be empty"}
	}
	if strings.TrimSpace(c.DefaultNetwork) == "" {
		return &InvalidConfigError{Field: "default_network", Reason: "must not be empty"}
	}
	return nil
}

// ConfigDir returns the deckhand configuration directory using
// platform-specific conventions: Windows uses %APPDATA%, macOS uses
// ~/Library/Application Support, and Linux/others use $XDG_CONFIG_HOME
// (defaulting to ~/.config).
//
//nolint:revive // ConfigDir is more descriptive than Dir for external callers
func ConfigDir() (string, error) {
	var configDir string

	switch runtime.GOOS {
	case "windows":
		configDir = os.Getenv("APPDATA")
		if configDir == "" {
			configDir = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
	case "darwin":
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		configDir = filepath.Join(home, "Library", "Application Support")
	default: // Linux and others
		configDir = os.Getenv("XDG_CONFIG_HOME")
		if configDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				return "", fmt.Errorf("failed to get home directory: %w", err)
			}
			configDir = filepath.Join(home, ".config")
		}
	}

	return filepath.Join(configDir, AppName), nil
}

// Load resolves the configuration. A missing config file is not an error;
// defaults and environment variables still apply.
func Load(opts LoadOptions) (*Config, error) {
	v := viper.New()

	defaults := DefaultConfig()
	v.SetDefault("registry_path", defaults.RegistryPath)
	v.SetDefault("modules_dir", defaults.ModulesDir)
	v.SetDefault("output_dir", defaults.OutputDir)
	v.SetDefault("default_network", defaults.DefaultNetwork)
	v.SetDefault("verbose", defaults.Verbose)

	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	if opts.ConfigFilePath != "" {
		v.SetConfigFile(opts.ConfigFilePath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", opts.ConfigFilePath, err)
		}
	} else {
		cfgDir, err := ConfigDir()
		if err != nil {
			return nil, err
		}
		v.SetConfigName(ConfigFileName)
		v.SetConfigType(ConfigFileExt)
		v.AddConfigPath(cfgDir)
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
			// No config file is fine; defaults apply.
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
