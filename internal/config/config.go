// Package config provides configuration loading and validation for the
// scoring service.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Defaults applied when neither the config file nor the environment sets
// a value.
const (
	DefaultListenAddr         = ":8080"
	DefaultWorkers            = 4
	DefaultSectionConcurrency = 3
	DefaultReconcileSeconds   = 60
)

// Config represents the service configuration. Values can come from a JSON
// file, with environment variables taking precedence.
type Config struct {
	// Connections
	DatabaseURL string `json:"database_url,omitempty"` // PostgreSQL connection URL
	APIKey      string `json:"api_key,omitempty"`      // Gemini API key

	// Server
	ListenAddr string `json:"listen_addr,omitempty"` // HTTP listen address

	// Processing
	Workers            int `json:"workers,omitempty"`             // Dispatcher worker count
	SectionConcurrency int `json:"section_concurrency,omitempty"` // Parallel section scoring bound
	ReconcileSeconds   int `json:"reconcile_seconds,omitempty"`   // Stuck-job sweep interval

	Verbose bool `json:"verbose,omitempty"` // Print detailed debug information
}

// LoadConfig loads configuration from a JSON file when path is non-empty,
// then applies environment overrides and defaults.
func LoadConfig(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if !filepath.IsAbs(path) {
			cwd, err := os.Getwd()
			if err != nil {
				return nil, fmt.Errorf("failed to get current directory: %w", err)
			}
			path = filepath.Join(cwd, path)
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := json.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config JSON: %w", err)
		}
	}

	cfg.applyEnv()
	cfg.applyDefaults()
	return &cfg, nil
}

// applyEnv overrides config file values with environment variables.
func (c *Config) applyEnv() {
	if v := os.Getenv("DATABASE_URL"); v != "" {
		c.DatabaseURL = v
	}
	if v := os.Getenv("GEMINI_API_KEY"); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv("LISTEN_ADDR"); v != "" {
		c.ListenAddr = v
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Workers = n
		}
	}
	if v := os.Getenv("SECTION_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.SectionConcurrency = n
		}
	}
}

// applyDefaults fills unset values.
func (c *Config) applyDefaults() {
	if c.ListenAddr == "" {
		c.ListenAddr = DefaultListenAddr
	}
	if c.Workers == 0 {
		c.Workers = DefaultWorkers
	}
	if c.SectionConcurrency == 0 {
		c.SectionConcurrency = DefaultSectionConcurrency
	}
	if c.ReconcileSeconds == 0 {
		c.ReconcileSeconds = DefaultReconcileSeconds
	}
}

// Validate checks that the configuration has valid values.
func (c *Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("config error: 'workers' must be at least 1")
	}
	if c.SectionConcurrency < 1 {
		return fmt.Errorf("config error: 'section_concurrency' must be at least 1")
	}
	if c.ReconcileSeconds < 1 {
		return fmt.Errorf("config error: 'reconcile_seconds' must be at least 1")
	}
	return nil
}
