package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/lu-zhengda/ports/internal/port"
)

// Output formats accepted by DefaultFormat.
const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// Config holds all ports configuration.
type Config struct {
	ColorEnabled   bool     `yaml:"color_enabled"`
	DefaultFormat  string   `yaml:"default_format"`  // "table" or "json"
	Exclude        []string `yaml:"exclude"`         // process names to hide
	CommandWidth   int      `yaml:"command_width"`   // display cells
	CommandTimeout int      `yaml:"command_timeout"` // seconds, 0 = no limit
}

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		ColorEnabled:   true,
		DefaultFormat:  FormatTable,
		Exclude:        []string{},
		CommandWidth:   60,
		CommandTimeout: 0,
	}
}

// Load loads config from the given path. If path is empty, it uses the
// default location (~/.config/ports/config.yaml). If the file does not
// exist, it returns defaults without creating the file.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
		if path == "" {
			return Default(), nil
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return Default(), nil
		}
	}

	return LoadFrom(path)
}

// LoadFrom loads and parses config from the given path. Missing fields
// keep their default values.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, port.IOError("failed to read config file", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file %s: %w", path, err)
	}

	return cfg, nil
}

// Validate reports the first field holding an unusable value.
func (c *Config) Validate() error {
	switch c.DefaultFormat {
	case FormatTable, FormatJSON:
	default:
		return fmt.Errorf("default_format must be %q or %q, got %q", FormatTable, FormatJSON, c.DefaultFormat)
	}
	if c.CommandWidth < 4 {
		return fmt.Errorf("command_width must be at least 4, got %d", c.CommandWidth)
	}
	if c.CommandTimeout < 0 {
		return fmt.Errorf("command_timeout must not be negative, got %d", c.CommandTimeout)
	}
	return nil
}

// Timeout returns CommandTimeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.CommandTimeout) * time.Second
}

// Save marshals the config to YAML and writes it to the given path,
// creating parent directories as needed.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return port.IOError("failed to create config directory", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return port.IOError("failed to write config file", err)
	}

	return nil
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "ports", "config.yaml")
}
