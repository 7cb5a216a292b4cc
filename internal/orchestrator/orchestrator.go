// Package orchestrator implements the DAG Runner (§4.10): the fixed
// sequence of pipeline stages from disease resolution through report
// generation, with stage-boundary persistence and per-stage failure
// isolation so that one stage's exception never aborts the run.
//
// Grounded on original_source/orchestrator/route_a_graph.py node-for-node
// (normalize_input -> web_intelligence -> literature -> kg
// -> [expand_search] -> clinical_trials -> patents -> exim
// -> rank_and_select -> generate_report), and
// internal/service/acmg_rule_engine.go's EvaluateAllRules per-rule error
// isolation (catch, log, substitute a safe zero-value result, keep going)
// adapted here to per-stage panic/error recovery.
package orchestrator

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/domain"
	"github.com/repurposectl/repurposectl/internal/evidence"
	"github.com/repurposectl/repurposectl/internal/repurposing"
	"github.com/repurposectl/repurposectl/internal/resolver"
	"github.com/repurposectl/repurposectl/internal/runstore"
	"github.com/repurposectl/repurposectl/internal/scoring"
	"github.com/repurposectl/repurposectl/internal/targets"
)

const (
	minCandidatesBeforeExpand = 3
	patentEximFanoutCap       = 10
	rankerStrategy            = scoring.StrategyBalanced
)

// ReportRenderer renders a completed (or partially completed) run's state
// into the bytes and filename persisted by the Run Store. Implemented by
// internal/report; declared here so the Orchestrator depends only on the
// interface.
type ReportRenderer interface {
	Render(ctx context.Context, state *domain.RouteAState) (data []byte, filename string, err error)
}

// RunRequest is the validated input to one pipeline run (§6 POST /run).
type RunRequest struct {
	Indication       string
	Geography        string
	MinPhase         *int
	OralOnly         bool
	ExcludeBiologics bool
	StrictFTO        bool
}

// Orchestrator wires every pipeline component into the fixed stage sequence.
type Orchestrator struct {
	resolver    *resolver.Resolver
	discoverer  *targets.Discoverer
	repurposing *repurposing.Engine

	webIntel   *evidence.WebIntelAggregator
	literature *evidence.LiteratureAggregator
	trials     *evidence.TrialsAggregator
	patents    *evidence.PatentAggregator
	exim       *evidence.EximAggregator

	validator     *scoring.Validator
	scoringEngine *scoring.Engine
	ranker        *scoring.Ranker

	graphDB *collaborators.GraphDBClient
	store   *runstore.Store
	report  ReportRenderer

	maxCandidatesToReturn int
	log                   *logrus.Logger
}

// New constructs an Orchestrator. graphDB and report may be nil — graph-DB
// writes are skipped and a nil ReportRenderer leaves the run without a
// report (ReportPath stays empty), matching the "don't crash on report
// generation" failure semantics of §7.
func New(
	res *resolver.Resolver,
	discoverer *targets.Discoverer,
	repurposingEngine *repurposing.Engine,
	webIntel *evidence.WebIntelAggregator,
	literature *evidence.LiteratureAggregator,
	trials *evidence.TrialsAggregator,
	patents *evidence.PatentAggregator,
	exim *evidence.EximAggregator,
	graphDB *collaborators.GraphDBClient,
	store *runstore.Store,
	report ReportRenderer,
	maxCandidatesToReturn int,
	log *logrus.Logger,
) *Orchestrator {
	if log == nil {
		log = logrus.StandardLogger()
	}
	if maxCandidatesToReturn <= 0 {
		maxCandidatesToReturn = 3
	}
	return &Orchestrator{
		resolver:    res,
		discoverer:  discoverer,
		repurposing: repurposingEngine,
		webIntel:    webIntel,
		literature:  literature,
		trials:      trials,
		patents:     patents,
		exim:        exim,

		validator:     scoring.NewValidator(),
		scoringEngine: scoring.New(scoring.DefaultWeights),
		ranker:        scoring.NewRanker(rankerStrategy),

		graphDB:               graphDB,
		store:                 store,
		report:                report,
		maxCandidatesToReturn: maxCandidatesToReturn,
		log:                   log,
	}
}

// Execute runs the full pipeline for runID to completion, persisting state
// at every stage boundary. It never returns an error for node-level
// failures — those are absorbed per §7 — only for Run Store I/O failures
// that make it impossible to persist progress at all.
func (o *Orchestrator) Execute(ctx context.Context, runID string, req RunRequest) error {
	state, err := o.loadOrInit(runID, req)
	if err != nil {
		return err
	}

	if state.Status == domain.RunFailed || state.Status == domain.RunSucceeded {
		o.log.WithField("run_id", runID).Info("run already terminal, nothing to resume")
		return nil
	}

	now := time.Now().UTC()
	if state.StartedAt == nil {
		state.StartedAt = &now
	}
	state.Status = domain.RunRunning
	if err := o.persist(state); err != nil {
		return err
	}

	o.runStage(ctx, "normalize_input", state, o.normalizeInput)
	if state.Status == domain.RunFailed {
		return o.finalize(state)
	}

	o.runStage(ctx, "web_intelligence", state, o.webIntelligence)
	o.runStage(ctx, "literature", state, o.literatureStage)
	o.runStage(ctx, "kg", state, o.kgStage)

	if o.shouldExpandSearch(state) {
		o.runStage(ctx, "expand_search", state, o.expandSearch)
	}

	o.runStage(ctx, "clinical_trials", state, o.clinicalTrialsStage)
	o.runStage(ctx, "patents", state, o.patentsStage)
	o.runStage(ctx, "exim", state, o.eximStage)
	o.runStage(ctx, "rank_and_select", state, o.rankAndSelect)
	o.runStage(ctx, "generate_report", state, o.generateReport)

	if state.Status != domain.RunFailed {
		state.Status = domain.RunSucceeded
	}
	return o.finalize(state)
}

// loadOrInit reloads a previously-saved state.json for re-entrancy, or
// creates a fresh one and writes the initial metadata/state pair.
func (o *Orchestrator) loadOrInit(runID string, req RunRequest) (*domain.RouteAState, error) {
	existing, err := o.store.LoadState(runID)
	if err == nil {
		return existing, nil
	}
	if code, ok := domain.CodeOf(err); !ok || code != domain.ErrNotFound {
		return nil, fmt.Errorf("orchestrator: load state %s: %w", runID, err)
	}

	now := time.Now().UTC()
	state := &domain.RouteAState{
		RunID:            runID,
		Indication:       req.Indication,
		Geography:        req.Geography,
		MinPhase:         req.MinPhase,
		OralOnly:         req.OralOnly,
		ExcludeBiologics: req.ExcludeBiologics,
		StrictFTO:        req.StrictFTO,
		CreatedAt:        now,
		Status:           domain.RunQueued,
	}
	if err := o.store.CreateRun(runID, req.Indication, req.Geography, domain.RunQueued); err != nil {
		return nil, fmt.Errorf("orchestrator: create run %s: %w", runID, err)
	}
	if err := o.persist(state); err != nil {
		return nil, err
	}
	return state, nil
}

func (o *Orchestrator) persist(state *domain.RouteAState) error {
	if err := o.store.SaveState(state.RunID, state); err != nil {
		return fmt.Errorf("orchestrator: save state %s: %w", state.RunID, err)
	}
	return o.store.UpdateMetadata(state.RunID, func(m *domain.RunMetadata) {
		m.Status = state.Status
		m.StartedAt = state.StartedAt
		m.CompletedAt = state.CompletedAt
		m.ErrorMessage = state.ErrorMessage
		if state.ReportPath != "" {
			m.ReportPath = state.ReportPath
		}
	})
}

func (o *Orchestrator) finalize(state *domain.RouteAState) error {
	if state.Status != domain.RunFailed {
		now := time.Now().UTC()
		state.CompletedAt = &now
	}
	return o.persist(state)
}

// runStage invokes fn with panic and error isolation: a panic or returned
// error is logged and the stage's output is left as whatever
// structured-empty value fn already wrote before failing, per §4.10's "any
// agent exception is caught, logged, replaced by a structured-empty output;
// the run continues." State is persisted after every stage regardless of
// outcome, satisfying re-entrancy by reload.
func (o *Orchestrator) runStage(ctx context.Context, name string, state *domain.RouteAState, fn func(context.Context, *domain.RouteAState) error) {
	defer func() {
		if r := recover(); r != nil {
			o.log.WithFields(logrus.Fields{
				"run_id": state.RunID,
				"stage":  name,
				"panic":  r,
			}).Error("stage panicked, continuing with structured-empty output")
		}
		if err := o.persist(state); err != nil {
			o.log.WithError(err).WithFields(logrus.Fields{"run_id": state.RunID, "stage": name}).Error("failed to persist state at stage boundary")
		}
	}()

	if err := fn(ctx, state); err != nil {
		o.log.WithError(err).WithFields(logrus.Fields{"run_id": state.RunID, "stage": name}).Warn("stage returned error, continuing with structured-empty output")
	}
}

// normalizeDiseaseID reformats an ontology ID to PREFIX_NUMBERS, mirroring
// normalize_disease_id in the original orchestrator.
func normalizeDiseaseID(raw string) string {
	if raw == "" {
		return raw
	}
	if parts := strings.SplitN(raw, "_", 2); len(parts) == 2 {
		if isAlpha(parts[0]) && isDigits(parts[1]) {
			return raw
		}
	}
	clean := strings.NewReplacer(":", "", "_", "").Replace(raw)
	for i, r := range clean {
		if r >= '0' && r <= '9' {
			return clean[:i] + "_" + clean[i:]
		}
	}
	return raw
}

func isAlpha(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if !((r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')) {
			return false
		}
	}
	return true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
