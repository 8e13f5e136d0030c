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
	require.NoError(t, err, "Expected no error without a config file")

	assert.Equal(t, ":8787", cfg.ListenAddr)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.OutputDir)
	assert.False(t, cfg.StrictSnapshots)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("listenAddr: \":9000\"\nlogLevel: debug\nstrictSnapshots: true\nallowedOrigins:\n  - http://localhost:3000\n")
	require.NoError(t, os.WriteFile(path, data, 0644))

	cfg, err := Load(path)
	require.NoError(t, err, "Expected the file to load")

	assert.Equal(t, ":9000", cfg.ListenAddr)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.True(t, cfg.StrictSnapshots)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.AllowedOrigins)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("MLCANVAS_LISTEN_ADDR", ":7000")
	t.Setenv("MLCANVAS_LOG_LEVEL", "warn")
	t.Setenv("MLCANVAS_ALLOWED_ORIGINS", "http://a,http://b")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":7000", cfg.ListenAddr, "Expected the env var to win")
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, []string{"http://a", "http://b"}, cfg.AllowedOrigins)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err, "Expected a missing explicit config file to be an error")
}
