// Package config provides configuration management for the analytics service.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

const (
	// defaultHTTPTimeout is used when tradier.timeout is unset
	defaultHTTPTimeout = 10 * time.Second
	// defaultShutdownTimeout is used when server.shutdown_timeout is unset
	defaultShutdownTimeout = 15 * time.Second
	// defaultMaxRetries bounds upstream retry attempts when tradier.retry.max_retries is unset
	defaultMaxRetries = 3
	// defaultInitialBackoff is the first retry delay when tradier.retry.initial_backoff is unset
	defaultInitialBackoff = 500 * time.Millisecond
	// defaultMaxBackoff caps the retry delay when tradier.retry.max_backoff is unset
	defaultMaxBackoff = 10 * time.Second
)

// Config represents the complete application configuration.
type Config struct {
	Environment EnvironmentConfig `yaml:"environment"`
	Server      ServerConfig      `yaml:"server"`
	Tradier     TradierConfig     `yaml:"tradier"`
	Storage     StorageConfig     `yaml:"storage"`
}

// EnvironmentConfig defines the environment settings.
type EnvironmentConfig struct {
	Mode     string `yaml:"mode"`      // live | sandbox
	LogLevel string `yaml:"log_level"` // debug | info | warn | error
}

// ServerConfig defines HTTP server settings.
type ServerConfig struct {
	Port            int    `yaml:"port"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// TradierConfig defines market data API settings.
type TradierConfig struct {
	APIKey  string      `yaml:"api_key"`
	BaseURL string      `yaml:"base_url"` // optional; defaults by mode
	Timeout string      `yaml:"timeout"`
	Retry   RetryConfig `yaml:"retry"`
}

// RetryConfig bounds retries against the upstream market data API.
// MaxRetries is a pointer so an explicit 0 (retries disabled) is
// distinguishable from the field being unset.
type RetryConfig struct {
	MaxRetries     *int   `yaml:"max_retries"`
	InitialBackoff string `yaml:"initial_backoff"`
	MaxBackoff     string `yaml:"max_backoff"`
}

// StorageConfig defines persistence settings for backtest results and trades.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// Load reads and parses the configuration file from the specified path.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	data, err := os.ReadFile(configPath) // #nosec G304 -- configPath is a user-provided config file path
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var config Config
	dec := yaml.NewDecoder(strings.NewReader(expanded))
	dec.KnownFields(true)
	if err := dec.Decode(&config); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// Validate checks that all configuration values are valid and consistent.
func (c *Config) Validate() error {
	if c.Environment.Mode != "live" && c.Environment.Mode != "sandbox" {
		return fmt.Errorf("environment.mode must be 'live' or 'sandbox'")
	}
	switch c.Environment.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("environment.log_level must be one of debug, info, warn, error")
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535]")
	}
	if c.Server.ShutdownTimeout != "" {
		if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
			return fmt.Errorf("server.shutdown_timeout invalid: %w", err)
		}
	}

	if c.Tradier.APIKey == "" {
		return fmt.Errorf("tradier.api_key is required")
	}
	if c.Tradier.Timeout != "" {
		if _, err := time.ParseDuration(c.Tradier.Timeout); err != nil {
			return fmt.Errorf("tradier.timeout invalid: %w", err)
		}
	}
	if c.Tradier.Retry.MaxRetries != nil && *c.Tradier.Retry.MaxRetries < 0 {
		return fmt.Errorf("tradier.retry.max_retries must be >= 0")
	}
	if c.Tradier.Retry.InitialBackoff != "" {
		if _, err := time.ParseDuration(c.Tradier.Retry.InitialBackoff); err != nil {
			return fmt.Errorf("tradier.retry.initial_backoff invalid: %w", err)
		}
	}
	if c.Tradier.Retry.MaxBackoff != "" {
		if _, err := time.ParseDuration(c.Tradier.Retry.MaxBackoff); err != nil {
			return fmt.Errorf("tradier.retry.max_backoff invalid: %w", err)
		}
	}

	if c.Storage.Path == "" {
		return fmt.Errorf("storage.path is required")
	}

	return nil
}

// IsSandbox returns true if the service targets the Tradier sandbox environment.
func (c *Config) IsSandbox() bool {
	return c.Environment.Mode == "sandbox"
}

// GetHTTPTimeout returns the configured upstream HTTP timeout.
func (c *Config) GetHTTPTimeout() time.Duration {
	return parseDurationOr(c.Tradier.Timeout, defaultHTTPTimeout)
}

// GetShutdownTimeout returns the configured graceful shutdown timeout.
func (c *Config) GetShutdownTimeout() time.Duration {
	return parseDurationOr(c.Server.ShutdownTimeout, defaultShutdownTimeout)
}

// GetMaxRetries returns the configured upstream retry bound, falling back to
// defaultMaxRetries when unset. An explicit 0 disables retries.
func (c *Config) GetMaxRetries() int {
	if c.Tradier.Retry.MaxRetries == nil {
		return defaultMaxRetries
	}
	return *c.Tradier.Retry.MaxRetries
}

// GetInitialBackoff returns the first retry delay.
func (c *Config) GetInitialBackoff() time.Duration {
	return parseDurationOr(c.Tradier.Retry.InitialBackoff, defaultInitialBackoff)
}

// GetMaxBackoff returns the retry delay ceiling.
func (c *Config) GetMaxBackoff() time.Duration {
	return parseDurationOr(c.Tradier.Retry.MaxBackoff, defaultMaxBackoff)
}

func parseDurationOr(s string, fallback time.Duration) time.Duration {
	if s == "" {
		return fallback
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return fallback
	}
	return d
}
