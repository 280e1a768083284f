// Package config loads praefixum.yaml and applies environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/praefixum/praefixum/internal/group"
	"github.com/praefixum/praefixum/internal/idformat"
	"gopkg.in/yaml.v3"
)

// FileName is the config file looked up at the scan root.
const FileName = "praefixum.yaml"

// Config holds praefixum settings.
type Config struct {
	// Output is the directory generated units are written to, relative to
	// the scan root unless absolute.
	Output string `yaml:"output"`

	// Namespace is the namespace the UniqueId attribute is declared in.
	Namespace string `yaml:"namespace"`

	// DefaultFormat is used by `praefixum id` when --format is not given.
	DefaultFormat idformat.Format `yaml:"default_format"`

	// Duplicates is the policy for two sites producing the same constant.
	Duplicates group.DuplicatePolicy `yaml:"duplicates"`

	// Workers bounds parallel fingerprinting; 0 means one per CPU.
	Workers int `yaml:"workers"`

	// Ignore holds extra ignore rules on top of .praefixumignore.
	Ignore []string `yaml:"ignore"`
}

// DefaultConfig returns the built-in settings.
func DefaultConfig() *Config {
	return &Config{
		Output:        "Generated",
		Namespace:     "Praefixum",
		DefaultFormat: idformat.Default,
		Duplicates:    group.DuplicatesFail,
	}
}

// Load reads path over the defaults. A missing file yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return cfg, nil
}

// LoadDir loads FileName from root.
func LoadDir(root string) (*Config, error) {
	return Load(filepath.Join(root, FileName))
}

// Save writes the config as YAML.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}

func (c *Config) applyEnvOverrides() {
	if out := os.Getenv("PRAEFIXUM_OUTPUT"); out != "" {
		c.Output = out
	}
	if raw := os.Getenv("PRAEFIXUM_WORKERS"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			c.Workers = n
		}
	}
}

// Validate checks the settings for consistency.
func (c *Config) Validate() error {
	if c.Output == "" {
		return fmt.Errorf("output directory must not be empty")
	}
	if c.Namespace == "" {
		return fmt.Errorf("attribute namespace must not be empty")
	}
	if !c.DefaultFormat.Valid() {
		return fmt.Errorf("unknown default_format %s", c.DefaultFormat)
	}
	if _, err := group.ParseDuplicatePolicy(string(c.Duplicates)); err != nil {
		return err
	}
	if c.Workers < 0 {
		return fmt.Errorf("workers must not be negative")
	}
	return nil
}

// OutputDir resolves the output directory against root.
func (c *Config) OutputDir(root string) string {
	if filepath.IsAbs(c.Output) {
		return c.Output
	}
	return filepath.Join(root, c.Output)
}
