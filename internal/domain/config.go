package domain

import "time"

// Config is the fully resolved application configuration: one base URL,
// credential, and timeout per external collaborator, plus server, cache,
// run-store, run-index and run-level limits.
//
// Follows a ConfigManager/Config split (ServerConfig/DatabaseConfig/
// ExternalAPIConfig nesting) generalized to the repurposing pipeline's
// collaborator set named in §6.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Cache    CacheConfig    `mapstructure:"cache"`
	RunStore RunStoreConfig `mapstructure:"run_store"`
	RunIndex RunIndexConfig `mapstructure:"run_index"`
	GraphDB  GraphDBConfig  `mapstructure:"graph_db"`
	External ExternalConfig `mapstructure:"external_api"`
	Run      RunLimitsConfig `mapstructure:"run_limits"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration.
type ServerConfig struct {
	Host         string        `mapstructure:"host"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// CacheConfig configures the Content-Addressed Cache (§4.1) and, when
// enabled, the Redis-backed gene index (pkg/external/cache.go's pattern).
type CacheConfig struct {
	Dir          string        `mapstructure:"dir"`
	RedisEnabled bool          `mapstructure:"redis_enabled"`
	RedisURL     string        `mapstructure:"redis_url"`
	DefaultTTL   time.Duration `mapstructure:"default_ttl"`
}

// RunStoreConfig configures the file-based Run Store (§4.9).
type RunStoreConfig struct {
	Dir string `mapstructure:"dir"`
}

// RunIndexConfig configures the Postgres/SQLite queryable run-index mirror.
// When DatabaseURL is empty, the server command (cmd/repurposectl) falls
// back to the embedded SQLite index rather than requiring Postgres (§4.9's
// documented fallback).
type RunIndexConfig struct {
	DatabaseURL    string `mapstructure:"database_url"`
	SQLitePath     string `mapstructure:"sqlite_path"`
	MigrationsPath string `mapstructure:"migrations_path"`
}

// GraphDBConfig configures the Postgres-backed graph database mirror (§6:
// "graph database" collaborator, addressed by capability not vendor).
type GraphDBConfig struct {
	DatabaseURL string `mapstructure:"database_url"`
}

// RunLimitsConfig bounds one pipeline run's resource usage (§5).
type RunLimitsConfig struct {
	MaxCandidatesToReturn   int           `mapstructure:"max_candidates_to_return"`
	MaxExternalCallsPerRun  int           `mapstructure:"max_external_calls_per_run"`
	GlobalHTTPTimeout       time.Duration `mapstructure:"global_http_timeout"`
}

// LoggingConfig represents logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// CollaboratorConfig is the common shape shared by every external
// collaborator client's configuration (base URL + optional credential +
// per-call timeout).
type CollaboratorConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ExternalConfig nests one CollaboratorConfig per collaborator named in §6's
// capability list (ontology/MeSH/target-association/drug-mechanism/
// gene-drug/pathway/PPI/gene-disease/trials/patent-search/exim-search/LLM),
// plus PPI's confidence threshold.
type ExternalConfig struct {
	Ontology     CollaboratorConfig `mapstructure:"ontology"`
	OntologyXref CollaboratorConfig `mapstructure:"ontology_xref"`
	MeSH         CollaboratorConfig `mapstructure:"mesh"`
	TargetAssoc  CollaboratorConfig `mapstructure:"target_assoc"`
	DrugMech     CollaboratorConfig `mapstructure:"drug_mech"`
	GeneDrug     CollaboratorConfig `mapstructure:"gene_drug"`
	Pathway      CollaboratorConfig `mapstructure:"pathway"`
	PPI          PPIConfigValues    `mapstructure:"ppi"`
	GeneDisease  CollaboratorConfig `mapstructure:"gene_disease"`
	UniProt      CollaboratorConfig `mapstructure:"uniprot"`
	NCBIGene     CollaboratorConfig `mapstructure:"ncbi_gene"`
	Trials       CollaboratorConfig `mapstructure:"trials"`
	WebSearch    CollaboratorConfig `mapstructure:"web_search"`
	LLM          CollaboratorConfig `mapstructure:"llm"`
}

// PPIConfigValues adds a confidence threshold on top of the common
// base-URL/timeout shape. MinConfidence is validated and passed to
// NewPPIClient, which does not keep it: PPIClient.Interactors filters edges
// on the threshold its caller passes (the targets package passes a fixed 0.7).
type PPIConfigValues struct {
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	MinConfidence float64       `mapstructure:"min_confidence"`
}

// ConfigManager is implemented by internal/config.Manager. Kept as a narrow
// interface so packages depend on configuration behavior, not on viper.
type ConfigManager interface {
	GetConfig() *Config
	Reload() error
	Validate() error
}
