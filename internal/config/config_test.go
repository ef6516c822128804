package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_MissingConfigFallsBackToDefaults(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TVDB_API_KEY", "")
	t.Setenv("TVSHELF_DATA_DIR", "")

	cfg, err := Load(filepath.Join(home, "does-not-exist.toml"))
	require.NoError(t, err)

	wantDataDir, err := expandPath(defaultDataDir)
	require.NoError(t, err)
	assert.Equal(t, wantDataDir, cfg.DataDir)
	assert.Empty(t, cfg.BaseURL)
	assert.Empty(t, cfg.ArtworkURL)
	assert.Equal(t, StoreFile, cfg.Store)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	assert.Empty(t, cfg.APIKey)
	assert.False(t, cfg.Demo)
}

func TestLoad_ParsesConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("TVDB_API_KEY", "")
	t.Setenv("TVSHELF_DATA_DIR", "")

	path := writeConfig(t, `
api_key = "  abc  "
base_url = "http://localhost:9000/v4/"
data_dir = "~/shelf"
store = "SQLite"
token_ttl = "1h"
request_interval = "250ms"
http_timeout = "5s"
demo = true
log_level = "debug"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "abc", cfg.APIKey)
	assert.Equal(t, "http://localhost:9000/v4", cfg.BaseURL)
	assert.True(t, strings.HasPrefix(cfg.DataDir, home))
	assert.Equal(t, filepath.Join(cfg.DataDir, "tvshelf.db"), cfg.DatabasePath())
	assert.Equal(t, StoreSQLite, cfg.Store)
	assert.Equal(t, time.Hour, cfg.TokenTTL)
	assert.Equal(t, 250*time.Millisecond, cfg.RequestInterval)
	assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
	assert.True(t, cfg.Demo)
	assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	dataDir := t.TempDir()
	t.Setenv("TVDB_API_KEY", "from-env")
	t.Setenv("TVSHELF_DATA_DIR", dataDir)

	cfg, err := Load(writeConfig(t, `api_key = "from-file"`))
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.APIKey)
	assert.Equal(t, dataDir, cfg.DataDir)
}

func TestLoad_Errors(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	tests := []struct {
		name    string
		content string
	}{
		{"bad toml", `api_key = `},
		{"unknown store", `store = "redis"`},
		{"bad duration", `token_ttl = "soon"`},
		{"bad log level", `log_level = "loud"`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(writeConfig(t, tt.content))
			require.Error(t, err)
		})
	}
}
