package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	cfg, err := Parse([]byte("jwt:\n  secret: s3cret\n"))
	require.NoError(t, err)

	assert.Equal(t, "8090", cfg.Server.Port)
	assert.Equal(t, "http://localhost:8080", cfg.Backend.BaseURL)
	assert.Equal(t, time.Duration(0), cfg.Backend.Timeout())
	assert.Equal(t, 0, cfg.Backend.MaxConcurrency)
	assert.Equal(t, "authToken", cfg.Session.CookieName)
	assert.Equal(t, 30*time.Minute, cfg.IdleTimeout())
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Output)
	assert.False(t, cfg.Database.Enabled())
}

func TestParseOverrides(t *testing.T) {
	raw := `
server:
  port: "9000"
  mode: release
  allowed_origins:
    - http://console.local/
backend:
  base_url: http://wms.internal:8080/
  timeout_seconds: 15
  max_concurrency: 8
database:
  driver: postgres
  host: db
jwt:
  secret: abc
  expire_time: 60
`
	cfg, err := Parse([]byte(raw))
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "http://wms.internal:8080", cfg.Backend.BaseURL)
	assert.Equal(t, 15*time.Second, cfg.Backend.Timeout())
	assert.Equal(t, 8, cfg.Backend.MaxConcurrency)
	assert.True(t, cfg.Database.Enabled())
	assert.Equal(t, "5432", cfg.Database.Port)
	assert.Equal(t, 60, cfg.JWT.ExpireTime)
	assert.True(t, cfg.AllowsOrigin("http://console.local"))
	assert.False(t, cfg.AllowsOrigin("http://other.local"))
}

func TestAllowsOriginDefaults(t *testing.T) {
	cfg, err := Parse([]byte("jwt:\n  secret: s3cret\n"))
	require.NoError(t, err)
	assert.Empty(t, cfg.Server.AllowedOrigins)
	assert.False(t, cfg.AllowsOrigin("http://console.local"))

	var none *Config
	assert.False(t, none.AllowsOrigin("http://console.local"))
}

func TestParseRejectsInvalid(t *testing.T) {
	_, err := Parse([]byte("backend:\n  base_url: x\n"))
	assert.Error(t, err, "missing jwt secret")

	_, err = Parse([]byte("jwt:\n  secret: a\nbackend:\n  max_concurrency: -1\n"))
	assert.Error(t, err)

	_, err = Parse([]byte("jwt: [unterminated"))
	assert.Error(t, err)
}

func TestLoadFromConfigPath(t *testing.T) {
	GlobalConfig = nil
	t.Cleanup(func() { GlobalConfig = nil })

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("jwt:\n  secret: file\n"), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "file", cfg.JWT.Secret)
	assert.Same(t, cfg, GlobalConfig)
}
