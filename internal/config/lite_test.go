package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLiteConfig(t *testing.T) {
	cfg := DefaultLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 3, cfg.MaxCandidatesToReturn)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
}

func TestLoadLiteConfig_Defaults(t *testing.T) {
	clearLiteEnvVars(t)

	cfg := LoadLiteConfig()

	assert.NotEmpty(t, cfg.DataDir)
	assert.Equal(t, 1000, cfg.CacheMaxItems)
	assert.Equal(t, 3, cfg.MaxCandidatesToReturn)
}

func TestLoadLiteConfig_EnvironmentOverrides(t *testing.T) {
	clearLiteEnvVars(t)

	os.Setenv("REPURPOSECTL_DATA_DIR", "/tmp/test-repurposectl")
	os.Setenv("REPURPOSECTL_CACHE_MAX_ITEMS", "500")
	os.Setenv("REPURPOSECTL_CACHE_TTL", "12h")
	os.Setenv("REPURPOSECTL_MAX_CANDIDATES", "5")
	os.Setenv("REPURPOSECTL_LOG_LEVEL", "debug")
	os.Setenv("WEB_SEARCH_API_KEY", "test-key")

	defer clearLiteEnvVars(t)

	cfg := LoadLiteConfig()

	assert.Equal(t, "/tmp/test-repurposectl", cfg.DataDir)
	assert.Equal(t, 500, cfg.CacheMaxItems)
	assert.Equal(t, 12*time.Hour, cfg.CacheTTL)
	assert.Equal(t, 5, cfg.MaxCandidatesToReturn)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "test-key", cfg.WebSearchAPIKey)
}

func TestLiteConfig_RunStoreDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.repurposectl"}
	assert.Equal(t, "/home/user/.repurposectl/runs", cfg.RunStoreDir())
}

func TestLiteConfig_CacheDir(t *testing.T) {
	cfg := &LiteConfig{DataDir: "/home/user/.repurposectl"}
	assert.Equal(t, "/home/user/.repurposectl/cache", cfg.CacheDir())
}

func TestLiteConfig_EnsureDataDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "config-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tmpDir)

	cfg := &LiteConfig{DataDir: filepath.Join(tmpDir, "repurposectl")}

	require.NoError(t, cfg.EnsureDataDir())

	_, err = os.Stat(cfg.DataDir)
	assert.NoError(t, err)
	_, err = os.Stat(cfg.RunStoreDir())
	assert.NoError(t, err)
	_, err = os.Stat(cfg.CacheDir())
	assert.NoError(t, err)
}

func clearLiteEnvVars(t *testing.T) {
	t.Helper()
	vars := []string{
		"REPURPOSECTL_DATA_DIR",
		"REPURPOSECTL_CACHE_MAX_ITEMS",
		"REPURPOSECTL_CACHE_TTL",
		"REPURPOSECTL_MAX_CANDIDATES",
		"REPURPOSECTL_LOG_LEVEL",
		"REPURPOSECTL_LOG_FORMAT",
		"WEB_SEARCH_API_KEY",
		"LLM_API_KEY",
	}
	for _, v := range vars {
		os.Unsetenv(v)
	}
}
