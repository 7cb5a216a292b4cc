// Package config loads the pipeline's configuration from built-in defaults,
// a config file, and environment variables, in that increasing order of
// precedence.
//
// Manager, setDefaults, and Validate follow a viper-backed configuration
// idiom generalized from a single clinical-genomics API surface to the
// repurposing pipeline's collaborator set named in §6.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/repurposectl/repurposectl/internal/domain"
)

// Manager implements domain.ConfigManager using Viper.
type Manager struct {
	config *domain.Config
}

// NewManager loads configuration and returns a ready Manager.
func NewManager() (*Manager, error) {
	m := &Manager{}
	if err := m.loadConfig(); err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	return m, nil
}

func (m *Manager) loadConfig() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")
	viper.AddConfigPath("/etc/repurposectl/")

	viper.SetEnvPrefix("REPURPOSECTL")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	m.setDefaults()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("error reading config file: %w", err)
		}
	}

	cfg := &domain.Config{}
	if err := viper.Unmarshal(cfg); err != nil {
		return fmt.Errorf("error unmarshaling config: %w", err)
	}

	m.config = cfg
	return nil
}

func (m *Manager) setDefaults() {
	viper.SetDefault("server.host", "0.0.0.0")
	viper.SetDefault("server.port", 8080)
	viper.SetDefault("server.read_timeout", "30s")
	viper.SetDefault("server.write_timeout", "60s")
	viper.SetDefault("server.idle_timeout", "120s")

	viper.SetDefault("cache.dir", "./data/cache")
	viper.SetDefault("cache.redis_enabled", false)
	viper.SetDefault("cache.redis_url", "redis://localhost:6379")
	viper.SetDefault("cache.default_ttl", "24h")

	viper.SetDefault("run_store.dir", "./data/runs")

	viper.SetDefault("run_index.database_url", "")
	viper.SetDefault("run_index.sqlite_path", "./data/runindex.db")
	viper.SetDefault("run_index.migrations_path", "./migrations")

	viper.SetDefault("graph_db.database_url", "")

	viper.SetDefault("run_limits.max_candidates_to_return", 3)
	viper.SetDefault("run_limits.max_external_calls_per_run", 200)
	viper.SetDefault("run_limits.global_http_timeout", "30s")

	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "json")
	viper.SetDefault("logging.output", "stdout")

	viper.SetDefault("external_api.ontology.base_url", "https://www.ebi.ac.uk/ols4")
	viper.SetDefault("external_api.ontology.timeout", "20s")

	viper.SetDefault("external_api.ontology_xref.base_url", "https://www.ebi.ac.uk/spot/oxo")
	viper.SetDefault("external_api.ontology_xref.timeout", "20s")

	viper.SetDefault("external_api.mesh.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	viper.SetDefault("external_api.mesh.timeout", "20s")

	viper.SetDefault("external_api.target_assoc.base_url", "https://api.platform.opentargets.org/api/v4")
	viper.SetDefault("external_api.target_assoc.timeout", "30s")

	viper.SetDefault("external_api.drug_mech.base_url", "https://www.ebi.ac.uk")
	viper.SetDefault("external_api.drug_mech.timeout", "30s")

	viper.SetDefault("external_api.gene_drug.base_url", "https://dgidb.org")
	viper.SetDefault("external_api.gene_drug.timeout", "30s")

	viper.SetDefault("external_api.pathway.base_url", "https://reactome.org")
	viper.SetDefault("external_api.pathway.timeout", "20s")

	viper.SetDefault("external_api.ppi.base_url", "https://string-db.org")
	viper.SetDefault("external_api.ppi.timeout", "20s")
	viper.SetDefault("external_api.ppi.min_confidence", 0.7)

	viper.SetDefault("external_api.gene_disease.base_url", "https://www.disgenet.org")
	viper.SetDefault("external_api.gene_disease.timeout", "20s")

	viper.SetDefault("external_api.uniprot.base_url", "https://rest.uniprot.org")
	viper.SetDefault("external_api.uniprot.timeout", "20s")

	viper.SetDefault("external_api.ncbi_gene.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	viper.SetDefault("external_api.ncbi_gene.timeout", "20s")

	viper.SetDefault("external_api.trials.base_url", "https://clinicaltrials.gov")
	viper.SetDefault("external_api.trials.timeout", "20s")

	viper.SetDefault("external_api.web_search.base_url", "")
	viper.SetDefault("external_api.web_search.timeout", "20s")

	viper.SetDefault("external_api.llm.base_url", "")
	viper.SetDefault("external_api.llm.timeout", "60s")
}

// GetConfig returns the complete configuration.
func (m *Manager) GetConfig() *domain.Config {
	return m.config
}

// Reload re-reads configuration from all sources.
func (m *Manager) Reload() error {
	return m.loadConfig()
}

// Validate checks the loaded configuration for values the pipeline can't
// run without.
func (m *Manager) Validate() error {
	cfg := m.config

	if cfg.Server.Port <= 0 || cfg.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", cfg.Server.Port)
	}
	if cfg.RunStore.Dir == "" {
		return fmt.Errorf("run_store.dir is required")
	}
	if cfg.Cache.Dir == "" {
		return fmt.Errorf("cache.dir is required")
	}
	if cfg.Run.MaxCandidatesToReturn <= 0 {
		return fmt.Errorf("run_limits.max_candidates_to_return must be positive")
	}
	if cfg.External.PPI.MinConfidence < 0 || cfg.External.PPI.MinConfidence > 1 {
		return fmt.Errorf("external_api.ppi.min_confidence must be in [0,1]")
	}

	validLogLevels := map[string]bool{
		"debug": true, "info": true, "warn": true, "error": true, "fatal": true, "panic": true,
	}
	if !validLogLevels[strings.ToLower(cfg.Logging.Level)] {
		return fmt.Errorf("invalid log level: %s", cfg.Logging.Level)
	}

	return nil
}

// UsesEmbeddedRunIndex reports whether no Postgres DSN was configured for
// the run-index mirror, meaning the embedded SQLite fallback should be used
// (§4.9's documented fallback when DATABASE_URL is unset).
func (m *Manager) UsesEmbeddedRunIndex() bool {
	return m.config.RunIndex.DatabaseURL == ""
}

// IsProduction returns true if running in production mode.
func (m *Manager) IsProduction() bool {
	return strings.ToLower(viper.GetString("environment")) == "production"
}
