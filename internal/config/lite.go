// Package config: this file contains the lightweight configuration for
// standalone, single-process operation (cmd/repurposectl-run).
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

// LiteConfig is a simplified configuration for standalone operation. It
// requires no Postgres run-index or graph-DB mirror and uses sensible
// defaults; cmd/repurposectl-run opens no run index with it and keeps run
// state in a file-only Run Store.
type LiteConfig struct {
	DataDir string

	CacheMaxItems int
	CacheTTL      time.Duration

	WebSearchAPIKey string
	LLMAPIKey       string

	MaxCandidatesToReturn int

	LogLevel  string
	LogFormat string
}

// DefaultLiteConfig returns a configuration with sensible defaults.
func DefaultLiteConfig() *LiteConfig {
	homeDir, _ := os.UserHomeDir()
	dataDir := filepath.Join(homeDir, ".repurposectl")

	return &LiteConfig{
		DataDir:               dataDir,
		CacheMaxItems:         1000,
		CacheTTL:              24 * time.Hour,
		MaxCandidatesToReturn: 3,
		LogLevel:              "info",
		LogFormat:             "json",
	}
}

// LoadLiteConfig loads configuration from environment variables, falling
// back to defaults if not set.
func LoadLiteConfig() *LiteConfig {
	cfg := DefaultLiteConfig()

	if v := os.Getenv("REPURPOSECTL_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("REPURPOSECTL_CACHE_MAX_ITEMS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.CacheMaxItems = n
		}
	}
	if v := os.Getenv("REPURPOSECTL_CACHE_TTL"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.CacheTTL = d
		}
	}
	if v := os.Getenv("REPURPOSECTL_MAX_CANDIDATES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.MaxCandidatesToReturn = n
		}
	}

	cfg.WebSearchAPIKey = os.Getenv("WEB_SEARCH_API_KEY")
	cfg.LLMAPIKey = os.Getenv("LLM_API_KEY")

	if v := os.Getenv("REPURPOSECTL_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("REPURPOSECTL_LOG_FORMAT"); v != "" {
		cfg.LogFormat = v
	}

	return cfg
}

// RunStoreDir returns the directory the Run Store persists run state under.
func (c *LiteConfig) RunStoreDir() string {
	return filepath.Join(c.DataDir, "runs")
}

// CacheDir returns the Content-Addressed Cache directory.
func (c *LiteConfig) CacheDir() string {
	return filepath.Join(c.DataDir, "cache")
}

// RunIndexPath returns the embedded SQLite run-index database path.
func (c *LiteConfig) RunIndexPath() string {
	return filepath.Join(c.DataDir, "runindex.db")
}

// EnsureDataDir creates the data directory tree if it doesn't exist.
func (c *LiteConfig) EnsureDataDir() error {
	if err := os.MkdirAll(c.DataDir, 0755); err != nil {
		return err
	}
	if err := os.MkdirAll(c.RunStoreDir(), 0755); err != nil {
		return err
	}
	return os.MkdirAll(c.CacheDir(), 0755)
}
