package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"CONFIG_FILE", "ADDR", "DATABASE_URL", "LOG_LEVEL", "LOG_JSON", "IMPORT_MAX_BYTES", "IMPORT_RATE_LIMIT", "IMPORT_RATE_WINDOW"} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadFileThenEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	data := []byte("addr: \":9000\"\nlog_level: debug\nlog_json: false\nimport_rate_window: 30s\nimport_max_bytes: 1024\n")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	clearEnv(t)
	t.Setenv("CONFIG_FILE", path)
	t.Setenv("IMPORT_MAX_BYTES", "2048")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
	assert.Equal(t, 30*time.Second, cfg.ImportRateWindow)
	assert.Equal(t, int64(2048), cfg.ImportMaxBytes)
	assert.Equal(t, Default().ImportRateLimit, cfg.ImportRateLimit)
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("adr: \":1\"\n"), 0o600))
	clearEnv(t)
	t.Setenv("CONFIG_FILE", path)

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadBadEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("IMPORT_RATE_LIMIT", "lots")

	_, err := Load()
	assert.ErrorContains(t, err, "IMPORT_RATE_LIMIT")
}

func TestGetenv(t *testing.T) {
	t.Setenv("TRELLOIMPORT_TEST_KEY", "")
	assert.Equal(t, "def", Getenv("TRELLOIMPORT_TEST_KEY", "def"))
	t.Setenv("TRELLOIMPORT_TEST_KEY", "set")
	assert.Equal(t, "set", Getenv("TRELLOIMPORT_TEST_KEY", "def"))
}
