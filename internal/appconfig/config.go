// Package appconfig loads relcheck's configuration from
// ~/.config/relcheck/config.yaml, with RELCHECK_* environment overrides.
package appconfig

import (
	"os"
	"path/filepath"
)

// Config is the top-level application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" yaml:"server"`
	Defaults DefaultsConfig `mapstructure:"defaults" yaml:"defaults"`
	UI       UIConfig       `mapstructure:"ui" yaml:"ui"`
}

// ServerConfig points the client at a checklist server.
type ServerConfig struct {
	BaseURL        string `mapstructure:"base_url" yaml:"base_url"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultsConfig holds values used when the command line leaves them out.
type DefaultsConfig struct {
	Stage string `mapstructure:"stage" yaml:"stage"`
}

// UIConfig tunes the terminal view.
type UIConfig struct {
	// ASCII swaps the checkbox glyphs for plain [x]/[ ] markers.
	ASCII bool `mapstructure:"ascii" yaml:"ascii"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() Config {
	return Config{
		Server: ServerConfig{
			BaseURL:        "http://localhost:8080",
			TimeoutSeconds: 30,
		},
	}
}

// DefaultConfigPath returns ~/.config/relcheck/config.yaml, honoring
// XDG_CONFIG_HOME.
func DefaultConfigPath() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "relcheck", "config.yaml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "relcheck", "config.yaml"), nil
}
