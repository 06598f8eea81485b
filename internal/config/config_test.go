package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

const validConfig = `
environment:
  mode: sandbox
  log_level: debug
server:
  port: 8000
  shutdown_timeout: 5s
tradier:
  api_key: test-key
  timeout: 3s
  retry:
    max_retries: 2
    initial_backoff: 100ms
    max_backoff: 2s
storage:
  path: data/test.db
`

func TestLoad(t *testing.T) {
	cfg, err := Load(writeConfig(t, validConfig))
	require.NoError(t, err)

	assert.Equal(t, "sandbox", cfg.Environment.Mode)
	assert.True(t, cfg.IsSandbox())
	assert.Equal(t, 8000, cfg.Server.Port)
	assert.Equal(t, "test-key", cfg.Tradier.APIKey)
	assert.Equal(t, "data/test.db", cfg.Storage.Path)

	assert.Equal(t, 3*time.Second, cfg.GetHTTPTimeout())
	assert.Equal(t, 5*time.Second, cfg.GetShutdownTimeout())
	assert.Equal(t, 2, cfg.GetMaxRetries())
	assert.Equal(t, 100*time.Millisecond, cfg.GetInitialBackoff())
	assert.Equal(t, 2*time.Second, cfg.GetMaxBackoff())
}

func TestLoadExpandsEnvironmentVariables(t *testing.T) {
	t.Setenv("TEST_TRADIER_KEY", "key-from-env")

	cfg, err := Load(writeConfig(t, `
environment:
  mode: live
server:
  port: 9000
tradier:
  api_key: ${TEST_TRADIER_KEY}
storage:
  path: data/test.db
`))
	require.NoError(t, err)
	assert.Equal(t, "key-from-env", cfg.Tradier.APIKey)
	assert.False(t, cfg.IsSandbox())
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	_, err := Load(writeConfig(t, validConfig+"\nunknown_section:\n  foo: bar\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parsing config")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestDefaults(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
environment:
  mode: sandbox
server:
  port: 8000
tradier:
  api_key: test-key
storage:
  path: data/test.db
`))
	require.NoError(t, err)

	assert.Equal(t, 10*time.Second, cfg.GetHTTPTimeout())
	assert.Equal(t, 15*time.Second, cfg.GetShutdownTimeout())
	assert.Equal(t, 3, cfg.GetMaxRetries())
	assert.Equal(t, 500*time.Millisecond, cfg.GetInitialBackoff())
	assert.Equal(t, 10*time.Second, cfg.GetMaxBackoff())
}

func intPtr(i int) *int { return &i }

func TestZeroMaxRetriesDisablesRetries(t *testing.T) {
	cfg, err := Load(writeConfig(t, `
environment:
  mode: sandbox
server:
  port: 8000
tradier:
  api_key: test-key
  retry:
    max_retries: 0
storage:
  path: data/test.db
`))
	require.NoError(t, err)

	// Explicit 0 means no retries; the default only applies when unset.
	assert.Equal(t, 0, cfg.GetMaxRetries())
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			Environment: EnvironmentConfig{Mode: "sandbox", LogLevel: "info"},
			Server:      ServerConfig{Port: 8000},
			Tradier:     TradierConfig{APIKey: "key"},
			Storage:     StorageConfig{Path: "data/test.db"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) {}, ""},
		{"bad mode", func(c *Config) { c.Environment.Mode = "paper" }, "environment.mode"},
		{"bad log level", func(c *Config) { c.Environment.LogLevel = "trace" }, "log_level"},
		{"zero port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"port too large", func(c *Config) { c.Server.Port = 70000 }, "server.port"},
		{"missing api key", func(c *Config) { c.Tradier.APIKey = "" }, "api_key"},
		{"bad timeout", func(c *Config) { c.Tradier.Timeout = "banana" }, "timeout"},
		{"negative retries", func(c *Config) { c.Tradier.Retry.MaxRetries = intPtr(-1) }, "max_retries"},
		{"bad backoff", func(c *Config) { c.Tradier.Retry.InitialBackoff = "fast" }, "initial_backoff"},
		{"missing storage path", func(c *Config) { c.Storage.Path = "" }, "storage.path"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
