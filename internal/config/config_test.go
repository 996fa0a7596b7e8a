package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Empty(t, cfg.DatabaseURL)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := `
addr: ":9090"
sqlite_path: /var/lib/ledger.db
log:
  level: debug
  format: text
cors:
  allowed_origins:
    - https://app.example.com
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, "/var/lib/ledger.db", cfg.SQLitePath)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
	assert.Equal(t, []string{"https://app.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestEnvOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: \":9090\"\n"), 0o600))

	t.Setenv("ADDR", ":7070")
	t.Setenv("DATABASE_URL", "postgres://ledger:pw@localhost:5432/ledger")
	t.Setenv("LOG_LEVEL", "warn")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7070", cfg.Addr)
	assert.Equal(t, "postgres://ledger:pw@localhost:5432/ledger", cfg.DatabaseURL)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadMissingFileIsNotAnError(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Addr)
}

func TestLoadMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("addr: [unterminated"), 0o600))
	_, err := Load(path)
	require.Error(t, err)
}
