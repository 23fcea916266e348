// Package config handles global tool configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents configuration stored in ~/.config/bibfix/config.yml.
type Config struct {
	// Mailto is the contact address sent to the registry's polite pool.
	Mailto string `yaml:"mailto,omitempty"`
	// APIURL overrides the registry works endpoint.
	APIURL string `yaml:"api_url,omitempty"`
	// RateLimit overrides the requests-per-second throttle.
	RateLimit float64 `yaml:"rate_limit,omitempty"`
}

const (
	// ConfigDir is the directory name under XDG_CONFIG_HOME.
	ConfigDir = "bibfix"
	// ConfigFile is the config file name.
	ConfigFile = "config.yml"

	// MailtoEnv overrides the configured mailto address.
	MailtoEnv = "BIBFIX_MAILTO"
)

// configCache caches the loaded config.
var configCache *Config

// Path returns the path to the global config file. Respects
// XDG_CONFIG_HOME, defaults to ~/.config/bibfix/config.yml.
func Path() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, ConfigDir, ConfigFile)
}

// Load loads the configuration file. Returns an empty config (not an
// error) if the file doesn't exist. Environment variables override
// file values.
func Load() (*Config, error) {
	if configCache != nil {
		return configCache, nil
	}

	cfg := &Config{}

	if path := Path(); path != "" {
		data, err := os.ReadFile(path)
		if err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err == nil {
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("parsing config: %w", err)
			}
		}
	}

	if mailto := os.Getenv(MailtoEnv); mailto != "" {
		cfg.Mailto = mailto
	}

	configCache = cfg
	return cfg, nil
}

// ResetCache clears the cached config. Useful for testing.
func ResetCache() {
	configCache = nil
}
