package orchestrator

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repurposectl/repurposectl/internal/domain"
	"github.com/repurposectl/repurposectl/internal/runstore"
)

func newTestStore(t *testing.T) *runstore.Store {
	dir, err := os.MkdirTemp("", "orchestrator-test-*")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })
	s, err := runstore.New(dir)
	require.NoError(t, err)
	return s
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.PanicLevel)
	return log
}

// newBareOrchestrator builds an Orchestrator with every collaborator
// dependency nil except the Run Store and (optionally) a report renderer —
// enough to exercise the control flow and the pure scoring/ranking stages
// without a live HTTP collaborator stack.
func newBareOrchestrator(t *testing.T, report ReportRenderer) *Orchestrator {
	return New(nil, nil, nil, nil, nil, nil, nil, nil, nil, newTestStore(t), report, 3, testLogger())
}

func TestNormalizeDiseaseID(t *testing.T) {
	cases := map[string]string{
		"":              "",
		"EFO_0001073":   "EFO_0001073",
		"EFO:0001073":   "EFO_0001073",
		"MONDO0005309":  "MONDO_0005309",
		"mesh:D012878":  "meshD_012878",
	}
	for in, want := range cases {
		assert.Equal(t, want, normalizeDiseaseID(in), "input %q", in)
	}
}

func TestApplyRequestFilters_NoFlagsReturnsUnfiltered(t *testing.T) {
	candidates := []domain.RepurposingCandidate{{DrugID: "d1", IsOral: false, IsBiologic: true}}
	state := &domain.RouteAState{}
	out := applyRequestFilters(candidates, state)
	assert.Equal(t, candidates, out)
}

func TestApplyRequestFilters_OralOnlyExcludesNonOral(t *testing.T) {
	candidates := []domain.RepurposingCandidate{
		{DrugID: "oral", IsOral: true},
		{DrugID: "injectable", IsOral: false},
	}
	state := &domain.RouteAState{OralOnly: true}
	out := applyRequestFilters(candidates, state)
	require.Len(t, out, 1)
	assert.Equal(t, "oral", out[0].DrugID)
}

func TestApplyRequestFilters_ExcludeBiologicsExcludesBiologics(t *testing.T) {
	candidates := []domain.RepurposingCandidate{
		{DrugID: "small-molecule", IsBiologic: false},
		{DrugID: "antibody", IsBiologic: true},
	}
	state := &domain.RouteAState{ExcludeBiologics: true}
	out := applyRequestFilters(candidates, state)
	require.Len(t, out, 1)
	assert.Equal(t, "small-molecule", out[0].DrugID)
}

func TestShouldExpandSearch(t *testing.T) {
	o := newBareOrchestrator(t, nil)

	assert.True(t, o.shouldExpandSearch(&domain.RouteAState{Candidates: nil}))
	assert.True(t, o.shouldExpandSearch(&domain.RouteAState{Candidates: make([]domain.RepurposingCandidate, 2)}))
	assert.False(t, o.shouldExpandSearch(&domain.RouteAState{Candidates: make([]domain.RepurposingCandidate, 3)}))
	assert.False(t, o.shouldExpandSearch(&domain.RouteAState{Candidates: nil, ExpandSearchInvoked: true}))
}

func TestTargetEnsemblIDsBySymbol(t *testing.T) {
	targets := []domain.Target{
		{Symbol: "BRAF", EnsemblID: "ENSG00000157764"},
		{Symbol: "EGFR", EnsemblID: "ENSG00000146648"},
	}
	out := targetEnsemblIDsBySymbol(targets)
	assert.Equal(t, "ENSG00000157764", out["BRAF"])
	assert.Equal(t, "ENSG00000146648", out["EGFR"])
}

func TestEvidenceCountFor(t *testing.T) {
	c := domain.RepurposingCandidate{SharedPathways: []string{"R-HSA-1", "R-HSA-2"}}
	assert.Equal(t, 2, evidenceCountFor(c, false))
	assert.Equal(t, 3, evidenceCountFor(c, true))
}

func TestYearsOnMarketFor(t *testing.T) {
	assert.Nil(t, yearsOnMarketFor(domain.RepurposingCandidate{YearsOnMarket: 0}))
	got := yearsOnMarketFor(domain.RepurposingCandidate{YearsOnMarket: 12})
	require.NotNil(t, got)
	assert.Equal(t, 12, *got)
}

func TestContainsAnyFold(t *testing.T) {
	assert.True(t, containsAnyFold([]string{"Boxed Warning for hepatotoxicity"}, "boxed warning"))
	assert.False(t, containsAnyFold([]string{"mild nausea"}, "boxed warning", "withdrawn"))
}

func TestLiteratureCountFor(t *testing.T) {
	assert.Nil(t, literatureCountFor(&domain.RouteAState{}))

	state := &domain.RouteAState{
		LiteratureOutput: &domain.LiteratureOutput{CitationCounts: map[string]int{"a": 3, "b": 5}},
	}
	got := literatureCountFor(state)
	require.NotNil(t, got)
	assert.Equal(t, 8, *got)
}

func TestRunStage_RecoversPanicAndPersists(t *testing.T) {
	o := newBareOrchestrator(t, nil)
	state := &domain.RouteAState{RunID: "run-panic", Status: domain.RunRunning}
	require.NoError(t, o.store.CreateRun(state.RunID, "x", "US", domain.RunQueued))

	assert.NotPanics(t, func() {
		o.runStage(context.Background(), "boom", state, func(context.Context, *domain.RouteAState) error {
			panic("collaborator exploded")
		})
	})

	loaded, err := o.store.LoadState(state.RunID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunRunning, loaded.Status)
}

func TestRankAndSelect_RejectsLowConfidenceAndAppliesStrictFTO(t *testing.T) {
	o := newBareOrchestrator(t, nil)

	state := &domain.RouteAState{
		StrictFTO: true,
		Candidates: []domain.RepurposingCandidate{
			{DrugID: "rejected", DrugName: "rejected", Phase: 0, OpenTargetsScore: 0.1},
			{DrugID: "high-risk-fto", DrugName: "high-risk-fto", Phase: 3, OpenTargetsScore: 0.6, MechanismKnown: true},
			{DrugID: "kept", DrugName: "kept", Phase: 4, OpenTargetsScore: 0.8, MechanismKnown: true},
		},
		PatentOutputs: map[string]domain.PatentOutput{
			"high-risk-fto": {RiskTier: domain.PatentRiskHigh},
			"kept":          {RiskTier: domain.PatentRiskLow},
		},
	}

	require.NoError(t, o.rankAndSelect(context.Background(), state))
	require.NotNil(t, state.Recommendation)

	var names []string
	for _, c := range state.Recommendation.RankedCandidates {
		names = append(names, c.DrugID)
	}
	assert.Contains(t, names, "kept")
	assert.NotContains(t, names, "high-risk-fto", "strict_fto must exclude HIGH patent-risk candidates")
	assert.NotContains(t, names, "rejected", "phase 0 with no clinical evidence must be validator-rejected")
	assert.Equal(t, 3, state.Recommendation.TotalCandidatesEvaluated)
}

type fakeRenderer struct {
	data     []byte
	filename string
	err      error
}

func (f *fakeRenderer) Render(ctx context.Context, state *domain.RouteAState) ([]byte, string, error) {
	return f.data, f.filename, f.err
}

func TestGenerateReport_NilRendererIsNoOp(t *testing.T) {
	o := newBareOrchestrator(t, nil)
	state := &domain.RouteAState{RunID: "run-noop"}
	require.NoError(t, o.generateReport(context.Background(), state))
	assert.Empty(t, state.ReportPath)
}

func TestGenerateReport_SavesRenderedBytes(t *testing.T) {
	renderer := &fakeRenderer{data: []byte("# Report"), filename: "report.md"}
	o := newBareOrchestrator(t, renderer)
	state := &domain.RouteAState{RunID: "run-report"}
	require.NoError(t, o.store.CreateRun(state.RunID, "x", "US", domain.RunQueued))

	require.NoError(t, o.generateReport(context.Background(), state))
	assert.NotEmpty(t, state.ReportPath)
	assert.Equal(t, "/run/run-report/report", state.ReportURL)
}

func TestGenerateReport_FallsBackOnRenderError(t *testing.T) {
	renderer := &fakeRenderer{err: assert.AnError}
	o := newBareOrchestrator(t, renderer)
	state := &domain.RouteAState{RunID: "run-report-error"}
	require.NoError(t, o.store.CreateRun(state.RunID, "x", "US", domain.RunQueued))

	require.NoError(t, o.generateReport(context.Background(), state))
	assert.Contains(t, state.ReportPath, "ERROR_REPORT")
}

func TestExecute_SurvivesNilCollaborators(t *testing.T) {
	o := newBareOrchestrator(t, nil)

	err := o.Execute(context.Background(), "run-resilience", RunRequest{Indication: "x", Geography: "US"})
	require.NoError(t, err)

	meta, err := o.store.GetMetadata("run-resilience")
	require.NoError(t, err)
	// normalize_input panics (nil resolver) and is absorbed; the run still
	// reaches a terminal SUCCEEDED status rather than hanging or crashing.
	assert.Equal(t, domain.RunSucceeded, meta.Status)
}

func TestExecute_SkipsAlreadyTerminalRun(t *testing.T) {
	o := newBareOrchestrator(t, nil)
	runID := "run-terminal"
	require.NoError(t, o.store.CreateRun(runID, "x", "US", domain.RunQueued))
	require.NoError(t, o.store.SaveState(runID, &domain.RouteAState{RunID: runID, Status: domain.RunSucceeded}))

	require.NoError(t, o.Execute(context.Background(), runID, RunRequest{Indication: "x", Geography: "US"}))

	loaded, err := o.store.LoadState(runID)
	require.NoError(t, err)
	assert.Equal(t, domain.RunSucceeded, loaded.Status)
}
