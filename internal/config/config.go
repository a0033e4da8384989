// Package config handles TOML-based configuration loading and validation.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"urlembed/internal/markup"
	"urlembed/internal/provider"
)

// Config holds all application configuration.
type Config struct {
	TimeoutMs   int                   `toml:"timeout_ms"`
	Referrer    string                `toml:"referrer"`
	UserAgent   string                `toml:"user_agent"`
	Concurrency int                   `toml:"concurrency"`
	Debug       bool                  `toml:"debug"`
	History     bool                  `toml:"history"`
	Filters     []string              `toml:"filters"`
	Disable     []string              `toml:"disable"`
	Providers   []provider.Definition `toml:"providers"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		TimeoutMs: int(provider.DefaultTimeout / time.Millisecond),
		History:   true,
	}
}

// configDir returns the XDG-compliant config directory.
func configDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "urlembed"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".config", "urlembed"), nil
}

// ConfigPath returns the path to the config file.
func ConfigPath() (string, error) {
	dir, err := configDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads the config file and merges with defaults.
// If the config file doesn't exist, defaults are returned.
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile reads the config at path over the defaults.
// A missing file yields the defaults.
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks config values are within acceptable bounds.
func (c *Config) Validate() error {
	if c.TimeoutMs < 0 {
		return fmt.Errorf("timeout_ms cannot be negative, got %d", c.TimeoutMs)
	}
	if c.Concurrency < 0 {
		return fmt.Errorf("concurrency cannot be negative, got %d", c.Concurrency)
	}
	if _, err := markup.Chain(c.Filters); err != nil {
		return err
	}

	known := make(map[string]bool)
	for _, f := range provider.Defaults() {
		known[f.Name] = true
	}

	seen := make(map[string]bool)
	for _, d := range c.Providers {
		if err := d.Validate(); err != nil {
			return err
		}
		if seen[d.Name] {
			return fmt.Errorf("provider %q is defined more than once", d.Name)
		}
		seen[d.Name] = true
		known[d.Name] = true
	}

	for _, name := range c.Disable {
		if !known[name] {
			return fmt.Errorf("cannot disable unknown provider %q", name)
		}
	}

	return nil
}

// ProviderOptions returns the options handed to every registered provider.
func (c *Config) ProviderOptions(version string) provider.Options {
	ua := c.UserAgent
	if ua == "" {
		ua = provider.UserAgent(version)
	}
	return provider.Options{
		Timeout:   time.Duration(c.TimeoutMs) * time.Millisecond,
		Referrer:  c.Referrer,
		UserAgent: ua,
	}
}

// Factories returns the default providers followed by the configured ones,
// minus anything listed in disable. A configured provider sharing a default's
// name replaces it in place when registered.
func (c *Config) Factories() []provider.Factory {
	disabled := make(map[string]bool, len(c.Disable))
	for _, name := range c.Disable {
		disabled[name] = true
	}

	var out []provider.Factory
	for _, f := range provider.Defaults() {
		if !disabled[f.Name] {
			out = append(out, f)
		}
	}
	for _, d := range c.Providers {
		if !disabled[d.Name] {
			out = append(out, d.Factory())
		}
	}
	return out
}

// HistoryPath returns the path to the history database.
func HistoryPath() (string, error) {
	dataDir := os.Getenv("XDG_DATA_HOME")
	if dataDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("getting home directory: %w", err)
		}
		dataDir = filepath.Join(home, ".local", "share")
	}
	return filepath.Join(dataDir, "urlembed", "history.db"), nil
}

// String renders the config as TOML, as it would be written to disk.
func (c *Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
