// Command repurposectl-run drives one pipeline run to completion without a
// server: it loads the standalone/lite configuration, wires a minimal
// collaborator graph (no graph-DB mirror, no run index), and
// executes the Orchestrator synchronously for a single indication/geography
// pair, printing the resulting status and report path.
//
// Follows the same lite config load / signal-driven context idiom as the
// server command, but runs one job to completion instead of serving
// indefinitely, so there is no long-lived listener to shut down — the
// signal handler simply cancels the in-flight run.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/config"
	"github.com/repurposectl/repurposectl/internal/evidence"
	"github.com/repurposectl/repurposectl/internal/orchestrator"
	"github.com/repurposectl/repurposectl/internal/report"
	"github.com/repurposectl/repurposectl/internal/repurposing"
	"github.com/repurposectl/repurposectl/internal/resolver"
	"github.com/repurposectl/repurposectl/internal/runstore"
	"github.com/repurposectl/repurposectl/internal/targets"
)

// defaultTimeout matches config.Manager's setDefaults for collaborators
// that lite mode has no per-collaborator override for.
const defaultTimeout = 20 * time.Second

func main() {
	indication := flag.String("indication", "", "free-text disease or condition name (required)")
	geography := flag.String("geography", "US", "ISO country code the recommendation is scoped to")
	minPhase := flag.Int("min-phase", -1, "minimum clinical trial phase to consider (0-4); unset means no floor")
	oralOnly := flag.Bool("oral-only", false, "exclude candidates without an oral route of administration")
	excludeBiologics := flag.Bool("exclude-biologics", false, "exclude biologic modalities")
	strictFTO := flag.Bool("strict-fto", false, "exclude candidates with a high patent freedom-to-operate risk")
	flag.Parse()

	if *indication == "" {
		fmt.Fprintln(os.Stderr, "repurposectl-run: -indication is required")
		flag.Usage()
		os.Exit(2)
	}

	cfg := config.LoadLiteConfig()
	if err := cfg.EnsureDataDir(); err != nil {
		log.Fatalf("failed to prepare data directory: %v", err)
	}

	logger := newLiteLogger(cfg)
	logger.WithField("data_dir", cfg.DataDir).Info("starting repurposectl-run")

	orch, store, err := wireLite(cfg, logger)
	if err != nil {
		log.Fatalf("failed to wire dependencies: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Warn("interrupt received, canceling in-flight run")
		cancel()
	}()

	req := orchestrator.RunRequest{
		Indication:       *indication,
		Geography:        *geography,
		OralOnly:         *oralOnly,
		ExcludeBiologics: *excludeBiologics,
		StrictFTO:        *strictFTO,
	}
	if *minPhase >= 0 {
		req.MinPhase = minPhase
	}

	runID := fmt.Sprintf("run-%d", time.Now().UnixNano())
	if err := orch.Execute(ctx, runID, req); err != nil {
		log.Fatalf("run failed to persist progress: %v", err)
	}

	metadata, err := store.GetMetadata(runID)
	if err != nil {
		log.Fatalf("run completed but metadata could not be read back: %v", err)
	}

	fmt.Printf("run %s finished with status %s\n", runID, metadata.Status)
	if metadata.ReportPath != "" {
		fmt.Printf("report written to %s\n", metadata.ReportPath)
	}
	if metadata.ErrorMessage != "" {
		fmt.Printf("error: %s\n", metadata.ErrorMessage)
	}
}

// wireLite builds the same collaborator graph as the server command, minus
// the graph-DB mirror and any Postgres dependency: lite mode is a single
// run with no candidate-graph persistence and no cross-run index to serve.
func wireLite(cfg *config.LiteConfig, logger *logrus.Logger) (*orchestrator.Orchestrator, *runstore.Store, error) {
	cac, err := cache.New(cfg.CacheDir(), logger)
	if err != nil {
		return nil, nil, err
	}

	ontology := collaborators.NewOntologyClient(collaborators.OntologyConfig{
		BaseURL: "https://www.ebi.ac.uk/ols4", Timeout: defaultTimeout,
	}, cac, logger)
	mesh := collaborators.NewMeSHClient(collaborators.MeSHConfig{
		BaseURL: "https://eutils.ncbi.nlm.nih.gov/entrez/eutils", Timeout: defaultTimeout,
	}, cac, logger)
	xref := collaborators.NewXrefClient(collaborators.OntologyConfig{
		BaseURL: "https://www.ebi.ac.uk/spot/oxo/api", Timeout: defaultTimeout,
	}, cac, logger)

	assoc := collaborators.NewTargetAssocClient(collaborators.TargetAssocConfig{
		BaseURL: "https://api.platform.opentargets.org/api/v4/graphql", Timeout: 30 * time.Second,
	}, cac, logger)
	drugMech := collaborators.NewDrugMechClient(collaborators.DrugMechConfig{
		BaseURL: "https://www.ebi.ac.uk/chembl/api/data", Timeout: 30 * time.Second,
	}, cac, logger)
	geneDrug := collaborators.NewGeneDrugClient(collaborators.GeneDrugConfig{
		BaseURL: "https://dgidb.org/api/graphql", Timeout: 30 * time.Second,
	}, cac, logger)
	pathway := collaborators.NewPathwayClient(collaborators.PathwayConfig{
		BaseURL: "https://reactome.org/ContentService", Timeout: defaultTimeout,
	}, cac, logger)
	ppi := collaborators.NewPPIClient(collaborators.PPIConfig{
		BaseURL: "https://string-db.org/api", MinConfidence: 0.7, Timeout: defaultTimeout,
	}, cac, logger)
	geneDisease := collaborators.NewGeneDiseaseClient(collaborators.GeneDiseaseConfig{
		BaseURL: "https://www.disgenet.org/api", Timeout: defaultTimeout,
	}, cac, logger)
	uniprot := collaborators.NewUniProtClient(collaborators.UniProtConfig{
		BaseURL: "https://rest.uniprot.org", Timeout: defaultTimeout,
	}, cac, logger)
	ncbiGene := collaborators.NewNCBIGeneClient(collaborators.NCBIGeneConfig{
		BaseURL: "https://eutils.ncbi.nlm.nih.gov/entrez/eutils", Timeout: defaultTimeout,
	}, cac, logger)
	trials := collaborators.NewTrialsClient(collaborators.TrialsConfig{
		BaseURL: "https://clinicaltrials.gov/api/v2", Timeout: defaultTimeout,
	}, cac, logger)
	webSearch := collaborators.NewWebSearchClient(collaborators.WebSearchConfig{
		APIKey: cfg.WebSearchAPIKey, Timeout: defaultTimeout,
	}, cac, logger)
	llm := collaborators.NewLLMClient(collaborators.LLMConfig{
		APIKey: cfg.LLMAPIKey, Timeout: 60 * time.Second,
	}, cac, logger)

	res := resolver.New(ontology, mesh, xref, logger)
	discoverer := targets.New(assoc, pathway, uniprot, geneDisease, ncbiGene, ppi, nil, nil, logger)
	repurposingEngine := repurposing.New(assoc, drugMech, geneDrug, logger)

	webIntel := evidence.NewWebIntelAggregator(webSearch)
	literature := evidence.NewLiteratureAggregator(webSearch, llm)
	trialsAgg := evidence.NewTrialsAggregator(trials)
	patents := evidence.NewPatentAggregator(webSearch)
	exim := evidence.NewEximAggregator(webSearch)

	store, err := runstore.New(cfg.RunStoreDir())
	if err != nil {
		return nil, nil, err
	}

	orch := orchestrator.New(
		res, discoverer, repurposingEngine,
		webIntel, literature, trialsAgg, patents, exim,
		nil, store, report.New(),
		cfg.MaxCandidatesToReturn, logger,
	)
	return orch, store, nil
}

func newLiteLogger(cfg *config.LiteConfig) *logrus.Logger {
	logger := logrus.New()
	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	logger.SetLevel(level)
	if cfg.LogFormat == "json" {
		logger.SetFormatter(&logrus.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		logger.SetFormatter(&logrus.TextFormatter{TimestampFormat: time.RFC3339, FullTimestamp: true})
	}
	return logger
}
