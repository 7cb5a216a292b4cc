package orchestrator

import (
	"context"
	"strings"

	"github.com/repurposectl/repurposectl/internal/domain"
	"github.com/repurposectl/repurposectl/internal/scoring"
)

const defaultMinPhase = 1

// normalizeInput runs §4.3 disease resolution. A resolution failure sets
// status=FAILED and an error_message; the orchestrator checks this status
// immediately after and aborts the run (the only hard-stop edge in the DAG).
func (o *Orchestrator) normalizeInput(ctx context.Context, state *domain.RouteAState) error {
	if state.Disease != nil {
		return nil // already resolved on a prior attempt; re-entrant no-op
	}

	dc := o.resolver.Resolve(ctx, state.Indication)
	if !dc.Resolved() {
		state.Status = domain.RunFailed
		state.ErrorMessage = domain.NewResolutionFailedError(state.Indication).Error()
		return nil
	}

	raw := dc.EFOID
	if raw == "" {
		raw = dc.MONDOID
	}
	if raw == "" {
		raw = dc.MeSHID
	}
	id := normalizeDiseaseID(raw)

	state.Disease = dc
	state.DiseaseID = &id
	state.DiseaseSynonyms = dc.Synonyms
	state.Indication = dc.CanonicalLabel
	return nil
}

func (o *Orchestrator) webIntelligence(ctx context.Context, state *domain.RouteAState) error {
	if state.WebIntelOutput != nil {
		return nil
	}
	out := o.webIntel.Run(ctx, state.Indication, state.Geography)
	state.WebIntelOutput = &out
	return nil
}

func (o *Orchestrator) literatureStage(ctx context.Context, state *domain.RouteAState) error {
	if state.LiteratureOutput != nil {
		return nil
	}
	out := o.literature.Run(ctx, state.Indication)
	state.LiteratureOutput = &out
	return nil
}

// kgStage runs Target Discovery + Validation (§4.5) followed by the
// Mechanistic Repurposing Engine (§4.6), then writes validated targets and
// candidates to the graph database.
func (o *Orchestrator) kgStage(ctx context.Context, state *domain.RouteAState) error {
	if state.DiseaseID == nil {
		return nil
	}

	targetsFound, diseasePathways := o.discoverer.Discover(ctx, *state.DiseaseID)
	state.Targets = targetsFound
	state.DiseasePathwayIDs = diseasePathways

	minPhase := defaultMinPhase
	if state.MinPhase != nil {
		minPhase = *state.MinPhase
	}
	candidates := o.repurposing.Run(ctx, state.Disease, targetsFound, diseasePathways, minPhase)
	state.Candidates = applyRequestFilters(candidates, state)

	o.writeCandidatesToGraph(ctx, state.Candidates, targetEnsemblIDsBySymbol(targetsFound))
	return nil
}

// shouldExpandSearch implements the should_expand_search conditional edge:
// widen the search once if too few candidates survived the KG stage.
func (o *Orchestrator) shouldExpandSearch(state *domain.RouteAState) bool {
	if state.ExpandSearchInvoked {
		return false
	}
	return len(state.Candidates) < minCandidatesBeforeExpand
}

// expandSearch re-runs the Mechanistic Repurposing Engine over the
// already-discovered target set with min_phase lowered to 0, widening the
// candidate pool before clinical_trials. It tolerates an empty result,
// leaving a well-formed (possibly still-empty) candidate list in state.
func (o *Orchestrator) expandSearch(ctx context.Context, state *domain.RouteAState) error {
	state.ExpandSearchInvoked = true
	if state.DiseaseID == nil {
		return nil
	}
	candidates := o.repurposing.Run(ctx, state.Disease, state.Targets, state.DiseasePathwayIDs, 0)
	state.Candidates = applyRequestFilters(candidates, state)
	o.writeCandidatesToGraph(ctx, state.Candidates, targetEnsemblIDsBySymbol(state.Targets))
	return nil
}

// targetEnsemblIDsBySymbol indexes a validated target set by gene symbol, so
// writeCandidatesToGraph can resolve a candidate's MolecularTarget (a
// symbol) back to the Ensembl ID the graph schema keys on.
func targetEnsemblIDsBySymbol(targetsFound []domain.Target) map[string]string {
	out := make(map[string]string, len(targetsFound))
	for _, t := range targetsFound {
		out[t.Symbol] = t.EnsemblID
	}
	return out
}

func (o *Orchestrator) writeCandidatesToGraph(ctx context.Context, candidates []domain.RepurposingCandidate, ensemblIDBySymbol map[string]string) {
	if o.graphDB == nil {
		return
	}
	for _, c := range candidates {
		ensemblID := ensemblIDBySymbol[c.MolecularTarget]
		if err := o.graphDB.MergeCandidate(ctx, c.DrugID, ensemblID, c.MechanisticConfidence); err != nil {
			o.log.WithError(err).WithField("drug_id", c.DrugID).Warn("graph-db candidate write failed, continuing with in-memory state")
		}
	}
}

// applyRequestFilters applies the run's oral_only / exclude_biologics input
// flags (§6 POST /run) to the raw candidate list.
func applyRequestFilters(candidates []domain.RepurposingCandidate, state *domain.RouteAState) []domain.RepurposingCandidate {
	if !state.OralOnly && !state.ExcludeBiologics {
		return candidates
	}
	filtered := candidates[:0:0]
	for _, c := range candidates {
		if state.OralOnly && !c.IsOral {
			continue
		}
		if state.ExcludeBiologics && c.IsBiologic {
			continue
		}
		filtered = append(filtered, c)
	}
	return filtered
}

func (o *Orchestrator) clinicalTrialsStage(ctx context.Context, state *domain.RouteAState) error {
	names := make([]string, 0, len(state.Candidates))
	for _, c := range state.Candidates {
		names = append(names, c.DrugName)
	}
	out := o.trials.Run(ctx, state.Indication, names)
	state.TrialsOutput = &out
	return nil
}

func (o *Orchestrator) patentsStage(ctx context.Context, state *domain.RouteAState) error {
	state.PatentOutputs = make(map[string]domain.PatentOutput, len(state.Candidates))
	for i, c := range state.Candidates {
		if i >= patentEximFanoutCap {
			break
		}
		state.PatentOutputs[c.DrugName] = o.patents.Run(ctx, c.DrugID, c.DrugName)
	}
	return nil
}

func (o *Orchestrator) eximStage(ctx context.Context, state *domain.RouteAState) error {
	state.EximOutputs = make(map[string]domain.EximOutput, len(state.Candidates))
	for i, c := range state.Candidates {
		if i >= patentEximFanoutCap {
			break
		}
		state.EximOutputs[c.DrugName] = o.exim.Run(ctx, c.DrugID, c.DrugName)
	}
	return nil
}

// rankAndSelect implements §4.8's Validator -> Scoring Engine -> Ranker
// pipeline over the surviving candidates, honoring strict_fto (§7: convert
// a HIGH patent-risk signal into exclusion).
func (o *Orchestrator) rankAndSelect(ctx context.Context, state *domain.RouteAState) error {
	inputs := make([]scoring.RankInput, 0, len(state.Candidates))
	for _, c := range state.Candidates {
		if state.StrictFTO {
			if p, ok := state.PatentOutputs[c.DrugName]; ok && p.RiskTier == domain.PatentRiskHigh {
				continue
			}
		}

		hasClinicalEvidence := false
		if state.TrialsOutput != nil {
			hasClinicalEvidence = len(state.TrialsOutput.CandidateTrials[c.DrugName]) > 0
		}

		if p, ok := state.PatentOutputs[c.DrugName]; ok {
			c.PatentExpired = p.Expired
		}

		facts := scoring.CandidateFacts{
			Phase:               c.Phase,
			HasClinicalEvidence: hasClinicalEvidence,
			OpenTargetsScore:    c.OpenTargetsScore,
			EvidenceCount:       evidenceCountFor(c, hasClinicalEvidence),
			LiteratureCount:     literatureCountFor(state),
			PathwayOverlap:      &c.PathwayOverlapScore,
			HasKnownMechanism:   c.MechanismKnown,
			TargetDruggability:  nil,

			HasBlackBoxWarning:      containsAnyFold(c.Contraindications, "black box", "boxed warning"),
			HasSeriousAdverseEvents: containsAnyFold(c.SafetyConcerns, "serious adverse"),
			WithdrawalHistory:       containsAnyFold(c.Contraindications, "withdrawn", "withdrawal"),
			YearsOnMarket:           yearsOnMarketFor(c),
			RepurposingNovelty:      floatPtr(c.NoveltyScore),
			OriginalIndication:      c.OriginalIndication,
		}

		validation := o.validator.ValidateDrug(c.Phase, hasClinicalEvidence, c.MechanismKnown, append(append([]string{}, c.SafetyConcerns...), c.Contraindications...))
		if validation.Decision == domain.DecisionReject {
			continue
		}

		breakdown := o.scoringEngine.Score(facts)
		inputs = append(inputs, scoring.RankInput{
			Candidate:           c,
			ScoreBreakdown:      breakdown,
			HasClinicalEvidence: hasClinicalEvidence,
			MechanismUnexpected: false,
		})
	}

	ranked := o.ranker.Rank(inputs, nil, o.maxCandidatesToReturn)

	confidence := "Medium"
	if len(ranked) > 0 && ranked[0].FinalScore > 60 {
		confidence = "High"
	}

	state.Recommendation = &domain.FinalRecommendation{
		RankedCandidates:         ranked,
		TotalCandidatesEvaluated: len(state.Candidates),
		CandidatesAfterFiltering: len(inputs),
		ConfidenceLevel:          confidence,
		NextActions:              domain.DefaultNextActions,
	}
	return nil
}

func evidenceCountFor(c domain.RepurposingCandidate, hasClinicalEvidence bool) int {
	count := len(c.SharedPathways)
	if hasClinicalEvidence {
		count++
	}
	return count
}

func literatureCountFor(state *domain.RouteAState) *int {
	if state.LiteratureOutput == nil {
		return nil
	}
	total := 0
	for _, n := range state.LiteratureOutput.CitationCounts {
		total += n
	}
	return &total
}

func yearsOnMarketFor(c domain.RepurposingCandidate) *int {
	if c.YearsOnMarket <= 0 {
		return nil
	}
	v := c.YearsOnMarket
	return &v
}

func floatPtr(v float64) *float64 { return &v }

func containsAnyFold(haystack []string, needles ...string) bool {
	for _, h := range haystack {
		lowered := strings.ToLower(h)
		for _, n := range needles {
			if strings.Contains(lowered, n) {
				return true
			}
		}
	}
	return false
}

// generateReport renders the final report via the injected ReportRenderer
// and persists it through the Run Store, falling back to a minimal
// plain-text error report if rendering itself fails (§7: report generation
// must never crash the run).
func (o *Orchestrator) generateReport(ctx context.Context, state *domain.RouteAState) error {
	if o.report == nil {
		return nil
	}

	data, filename, err := o.report.Render(ctx, state)
	if err != nil {
		data = []byte("report generation failed: " + err.Error())
		filename = "ERROR_REPORT.md"
	}

	path, saveErr := o.saveReport(state.RunID, data, filename)
	if saveErr != nil {
		return saveErr
	}
	state.ReportPath = path
	state.ReportURL = "/run/" + state.RunID + "/report"
	return nil
}

func (o *Orchestrator) saveReport(runID string, data []byte, filename string) (string, error) {
	return o.store.SaveReport(runID, data, filename)
}
