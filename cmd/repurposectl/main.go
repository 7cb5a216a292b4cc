// Command repurposectl runs the full HTTP server: it wires every
// collaborator client, discovery/scoring component, and persistence layer
// named in §6 into one Orchestrator and serves it over the routes in
// internal/api.
//
// Follows a config-load -> validate -> construct server -> signal-driven
// graceful shutdown -> Start(ctx) entrypoint shape. Because this pipeline's
// api.Server takes an already-wired Orchestrator rather than building its
// own dependency chain from a single config object, main is where the full
// collaborator graph is assembled.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/api"
	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/config"
	"github.com/repurposectl/repurposectl/internal/domain"
	"github.com/repurposectl/repurposectl/internal/evidence"
	"github.com/repurposectl/repurposectl/internal/orchestrator"
	"github.com/repurposectl/repurposectl/internal/report"
	"github.com/repurposectl/repurposectl/internal/repurposing"
	"github.com/repurposectl/repurposectl/internal/resolver"
	"github.com/repurposectl/repurposectl/internal/runindex"
	"github.com/repurposectl/repurposectl/internal/runstore"
	"github.com/repurposectl/repurposectl/internal/targets"
)

func main() {
	configManager, err := config.NewManager()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}
	if err := configManager.Validate(); err != nil {
		log.Fatalf("configuration validation failed: %v", err)
	}
	cfg := configManager.GetConfig()

	logger := newLogger(cfg.Logging)
	logger.WithFields(logrus.Fields{
		"host": cfg.Server.Host,
		"port": cfg.Server.Port,
	}).Info("starting repurposectl server")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	orch, index, store, err := wire(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("failed to wire dependencies: %v", err)
	}

	srv := api.NewServer(api.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}, orch, store, index, logger)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutdown signal received, gracefully shutting down")
		cancel()
	}()

	if err := srv.Start(ctx); err != nil {
		log.Fatalf("server failed: %v", err)
	}
	logger.Info("server stopped")
}

// wire constructs every collaborator client, discovery/scoring stage, and
// optional graph-DB/run-index mirror, then assembles the Orchestrator.
// graphDB and the run-index are optional per §4.9's documented fallback;
// their absence degrades the pipeline rather than failing startup.
func wire(ctx context.Context, cfg *domain.Config, logger *logrus.Logger) (*orchestrator.Orchestrator, api.RunIndex, *runstore.Store, error) {
	cac, err := cache.New(cfg.Cache.Dir, logger)
	if err != nil {
		return nil, nil, nil, err
	}

	ontology := collaborators.NewOntologyClient(collaborators.OntologyConfig{
		BaseURL: cfg.External.Ontology.BaseURL, Timeout: cfg.External.Ontology.Timeout,
	}, cac, logger)

	mesh := collaborators.NewMeSHClient(collaborators.MeSHConfig{
		BaseURL: cfg.External.MeSH.BaseURL, APIKey: cfg.External.MeSH.APIKey, Timeout: cfg.External.MeSH.Timeout,
	}, cac, logger)
	xref := collaborators.NewXrefClient(collaborators.OntologyConfig{
		BaseURL: cfg.External.OntologyXref.BaseURL, Timeout: cfg.External.OntologyXref.Timeout,
	}, cac, logger)

	assoc := collaborators.NewTargetAssocClient(collaborators.TargetAssocConfig{
		BaseURL: cfg.External.TargetAssoc.BaseURL, Timeout: cfg.External.TargetAssoc.Timeout,
	}, cac, logger)
	drugMech := collaborators.NewDrugMechClient(collaborators.DrugMechConfig{
		BaseURL: cfg.External.DrugMech.BaseURL, Timeout: cfg.External.DrugMech.Timeout,
	}, cac, logger)
	geneDrug := collaborators.NewGeneDrugClient(collaborators.GeneDrugConfig{
		BaseURL: cfg.External.GeneDrug.BaseURL, Timeout: cfg.External.GeneDrug.Timeout,
	}, cac, logger)

	pathway := collaborators.NewPathwayClient(collaborators.PathwayConfig{
		BaseURL: cfg.External.Pathway.BaseURL, Timeout: cfg.External.Pathway.Timeout,
	}, cac, logger)
	ppi := collaborators.NewPPIClient(collaborators.PPIConfig{
		BaseURL: cfg.External.PPI.BaseURL, MinConfidence: cfg.External.PPI.MinConfidence, Timeout: cfg.External.PPI.Timeout,
	}, cac, logger)

	geneDisease := collaborators.NewGeneDiseaseClient(collaborators.GeneDiseaseConfig{
		BaseURL: cfg.External.GeneDisease.BaseURL, Timeout: cfg.External.GeneDisease.Timeout,
	}, cac, logger)
	uniprot := collaborators.NewUniProtClient(collaborators.UniProtConfig{
		BaseURL: cfg.External.UniProt.BaseURL, Timeout: cfg.External.UniProt.Timeout,
	}, cac, logger)
	ncbiGene := collaborators.NewNCBIGeneClient(collaborators.NCBIGeneConfig{
		BaseURL: cfg.External.NCBIGene.BaseURL, APIKey: cfg.External.NCBIGene.APIKey, Timeout: cfg.External.NCBIGene.Timeout,
	}, cac, logger)

	trials := collaborators.NewTrialsClient(collaborators.TrialsConfig{
		BaseURL: cfg.External.Trials.BaseURL, Timeout: cfg.External.Trials.Timeout,
	}, cac, logger)
	webSearch := collaborators.NewWebSearchClient(collaborators.WebSearchConfig{
		BaseURL: cfg.External.WebSearch.BaseURL, APIKey: cfg.External.WebSearch.APIKey, Timeout: cfg.External.WebSearch.Timeout,
	}, cac, logger)
	llm := collaborators.NewLLMClient(collaborators.LLMConfig{
		BaseURL: cfg.External.LLM.BaseURL, APIKey: cfg.External.LLM.APIKey, Timeout: cfg.External.LLM.Timeout,
	}, cac, logger)

	var graphDB *collaborators.GraphDBClient
	if cfg.GraphDB.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, cfg.GraphDB.DatabaseURL)
		if err != nil {
			logger.WithError(err).Warn("graph database unavailable, continuing without graph writes")
		} else if err := pool.Ping(ctx); err != nil {
			logger.WithError(err).Warn("graph database unreachable, continuing without graph writes")
			pool.Close()
		} else {
			graphDB = collaborators.NewGraphDBClient(pool, logger)
		}
	}

	var geneIndex *cache.GeneIndex
	if cfg.Cache.RedisEnabled {
		opt, err := redis.ParseURL(cfg.Cache.RedisURL)
		if err != nil {
			logger.WithError(err).Warn("invalid redis url, gene index degraded to in-process LRU")
			if geneIndex, err = cache.NewGeneIndex(nil, logger); err != nil {
				logger.WithError(err).Warn("gene index unavailable")
			}
		} else {
			redisClient := redis.NewClient(opt)
			if geneIndex, err = cache.NewGeneIndex(redisClient, logger); err != nil {
				logger.WithError(err).Warn("gene index unavailable")
			}
		}
	}

	res := resolver.New(ontology, mesh, xref, logger)
	discoverer := targets.New(assoc, pathway, uniprot, geneDisease, ncbiGene, ppi, graphDB, geneIndex, logger)
	repurposingEngine := repurposing.New(assoc, drugMech, geneDrug, logger)

	webIntel := evidence.NewWebIntelAggregator(webSearch)
	literature := evidence.NewLiteratureAggregator(webSearch, llm)
	trialsAgg := evidence.NewTrialsAggregator(trials)
	patents := evidence.NewPatentAggregator(webSearch)
	exim := evidence.NewEximAggregator(webSearch)

	reportRenderer := report.New()

	var index api.RunIndex
	if !usesEmbeddedRunIndex(cfg) {
		pgIndex, err := runindex.NewPostgresIndex(cfg.RunIndex.DatabaseURL, logger)
		if err != nil {
			logger.WithError(err).Warn("postgres run index unavailable, falling back to embedded sqlite")
		} else {
			index = pgIndex
		}
	}
	if index == nil {
		sqliteIndex, err := runindex.NewSQLiteIndex(cfg.RunIndex.SQLitePath)
		if err != nil {
			return nil, nil, nil, err
		}
		index = sqliteIndex
	}

	store, err := runstore.New(cfg.RunStore.Dir)
	if err != nil {
		return nil, nil, nil, err
	}

	orch := orchestrator.New(
		res, discoverer, repurposingEngine,
		webIntel, literature, trialsAgg, patents, exim,
		graphDB, store, reportRenderer,
		cfg.Run.MaxCandidatesToReturn, logger,
	)
	return orch, index, store, nil
}

func usesEmbeddedRunIndex(cfg *domain.Config) bool {
	return cfg.RunIndex.DatabaseURL == ""
}

// newLogger builds a logrus.Logger from the configured level/format.
func newLogger(cfg domain.LoggingConfig) *logrus.Logger {
	logger := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)

	if cfg.Format == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339, FullTimestamp: true})
	}

	if cfg.Output == "stderr" {
		logger.SetOutput(os.Stderr)
	}
	return logger
}
