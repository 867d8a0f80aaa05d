package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("SALES_CONFIG_FILE", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, []string{"http://localhost:3000", "http://localhost:8501"}, cfg.Security.AllowedOrigins)
	assert.Equal(t, int64(50<<20), cfg.Data.MaxUploadBytes)
	assert.Equal(t, 4, cfg.Data.Workers)
	assert.Equal(t, 100.0, cfg.Server.RateLimit)
	assert.Equal(t, 200, cfg.Server.RateBurst)
	assert.Equal(t, ":8080", cfg.Address())
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("SALES_CONFIG_FILE", "")
	t.Setenv("SALES_SERVER_PORT", "9090")
	t.Setenv("SALES_LOGGING_LEVEL", "debug")
	t.Setenv("SALES_DATA_DEFAULT_SOURCE", "data/superstore.csv")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "data/superstore.csv", cfg.Data.DefaultSource)
}

func TestLoadFileEnvWins(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  port: 7070
  write_timeout: 45s
logging:
  level: warn
  format: text
data:
  default_source: from-file.csv
  workers: 8
`), 0644))

	t.Setenv("SALES_CONFIG_FILE", file)
	t.Setenv("SALES_LOGGING_LEVEL", "error")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 7070, cfg.Server.Port)
	assert.Equal(t, 45*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, "error", cfg.Logging.Level, "env overrides file")
	assert.Equal(t, "text", cfg.Logging.Format)
	assert.Equal(t, "from-file.csv", cfg.Data.DefaultSource)
	assert.Equal(t, 8, cfg.Data.Workers)
}

func TestLoadFileZeroValues(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
server:
  rate_limit: 0
security:
  enable_cors: false
  allowed_origins: []
data:
  skip_invalid_rows: false
`), 0644))

	t.Setenv("SALES_CONFIG_FILE", file)
	t.Setenv("SALES_DATA_SKIP_INVALID_ROWS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Zero(t, cfg.Server.RateLimit, "file disables rate limiting")
	assert.Equal(t, 200, cfg.Server.RateBurst, "absent keys keep their defaults")
	assert.False(t, cfg.Security.EnableCORS)
	assert.Empty(t, cfg.Security.AllowedOrigins)
	assert.True(t, cfg.Data.SkipInvalidRows, "env overrides file")
	assert.Equal(t, 8080, cfg.Server.Port)
}

func TestLoadFileEnvWinsForZeroValues(t *testing.T) {
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte("security:\n  enable_cors: false\n"), 0644))

	t.Setenv("SALES_CONFIG_FILE", file)
	t.Setenv("SALES_SECURITY_ENABLE_CORS", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.True(t, cfg.Security.EnableCORS)
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad port", map[string]string{"SALES_SERVER_PORT": "70000"}},
		{"bad level", map[string]string{"SALES_LOGGING_LEVEL": "verbose"}},
		{"bad format", map[string]string{"SALES_LOGGING_FORMAT": "xml"}},
		{"zero workers", map[string]string{"SALES_DATA_WORKERS": "0"}},
		{"negative rate limit", map[string]string{"SALES_SERVER_RATE_LIMIT": "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("SALES_CONFIG_FILE", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	t.Setenv("SALES_CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
