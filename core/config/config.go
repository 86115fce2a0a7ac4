// Package config loads the drawer's YAML configuration.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level drawer configuration.
type Config struct {
	Scan   ScanConfig   `yaml:"scan"`
	Watch  WatchConfig  `yaml:"watch"`
	Drawer DrawerConfig `yaml:"drawer"`
}

// ScanConfig controls directory enumeration.
type ScanConfig struct {
	ShowHidden      bool     `yaml:"show_hidden"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

// WatchConfig controls change notification.
type WatchConfig struct {
	// Debounce is the batch quiet window, as a duration string ("100ms").
	Debounce        string   `yaml:"debounce"`
	ExcludePatterns []string `yaml:"exclude_patterns"`
}

// DrawerConfig controls the controller itself.
type DrawerConfig struct {
	// ExpansionMemorySize bounds how many roots keep a remembered
	// expansion state.
	ExpansionMemorySize int `yaml:"expansion_memory_size"`
}

// DebounceDuration parses the configured debounce, falling back to the
// default for empty or malformed values.
func (w WatchConfig) DebounceDuration() time.Duration {
	if w.Debounce == "" {
		return 100 * time.Millisecond
	}
	d, err := time.ParseDuration(w.Debounce)
	if err != nil || d <= 0 {
		return 100 * time.Millisecond
	}
	return d
}

// Default returns the configuration used when no file is supplied.
func Default() *Config {
	return &Config{
		Scan: ScanConfig{
			ShowHidden: false,
		},
		Watch: WatchConfig{
			Debounce: "100ms",
		},
		Drawer: DrawerConfig{
			ExpansionMemorySize: 16,
		},
	}
}

// Load reads a YAML config file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if config.Drawer.ExpansionMemorySize <= 0 {
		config.Drawer.ExpansionMemorySize = 16
	}

	return config, nil
}
