// Package repurposing implements the Mechanistic Repurposing Engine
// (§4.6): for each validated Target, discovers known drugs, filters
// out drugs already indicated for the query disease, and scores the
// survivors into RepurposingCandidates.
//
// Grounded on original_source/kg/mechanistic_repurposing.py's per-target
// fan-out and narrative-template construction, and the bounded worker-pool
// idiom internal/service uses for concurrent ClinVar lookups (a buffered
// channel + WaitGroup), adapted here to per-target processing.
package repurposing

import (
	"context"
	"sort"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/domain"
	"github.com/repurposectl/repurposectl/internal/taxonomy"
)

const (
	perTargetCap    = 15
	overallTopN     = 50
	maxConcurrency  = 8
)

// Engine runs the Mechanistic Repurposing Engine over a validated target set.
type Engine struct {
	assoc    *collaborators.TargetAssocClient
	drugMech *collaborators.DrugMechClient
	geneDrug *collaborators.GeneDrugClient
	log      *logrus.Logger
}

func New(assoc *collaborators.TargetAssocClient, drugMech *collaborators.DrugMechClient, geneDrug *collaborators.GeneDrugClient, log *logrus.Logger) *Engine {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Engine{assoc: assoc, drugMech: drugMech, geneDrug: geneDrug, log: log}
}

// Run processes targets concurrently (bounded by maxConcurrency), and
// returns the overall top-N ranked candidate list.
func (e *Engine) Run(
	ctx context.Context,
	disease *domain.DiseaseContext,
	targets []domain.Target,
	diseasePathways []string,
	minPhase int,
) []domain.RepurposingCandidate {
	if len(targets) == 0 {
		return nil
	}

	sem := make(chan struct{}, maxConcurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var all []domain.RepurposingCandidate

	for i := range targets {
		t := targets[i]
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			perTarget := e.processTarget(ctx, disease, t, minPhase)
			mu.Lock()
			all = append(all, perTarget...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	sort.SliceStable(all, func(i, j int) bool {
		return overallRankKey(all[i]) > overallRankKey(all[j])
	})
	if len(all) > overallTopN {
		all = all[:overallTopN]
	}
	return all
}

func overallRankKey(c domain.RepurposingCandidate) float64 {
	return 0.35*c.MechanisticConfidence + 0.2*c.PathwayOverlapScore + 0.35*c.OpenTargetsScore + 0.1*(float64(c.Phase)/4)
}

// processTarget runs §4.6 steps 1-8 for one target, returning at most
// perTargetCap candidates ranked by mechanistic confidence.
func (e *Engine) processTarget(ctx context.Context, disease *domain.DiseaseContext, t domain.Target, minPhase int) []domain.RepurposingCandidate {
	rows := e.assoc.KnownDrugsForTarget(ctx, t.EnsemblID)
	if len(rows) == 0 {
		return nil
	}

	moa := e.drugMech.MechanismOfAction(ctx, t.EnsemblID)

	diseaseName := ""
	var synonyms []string
	var diseaseArea domain.TherapeuticArea
	if disease != nil {
		diseaseName = disease.CanonicalLabel
		synonyms = disease.Synonyms
		diseaseArea = disease.TherapeuticArea
	}

	crossValidated := make(map[string]struct{})
	if e.geneDrug != nil {
		for _, name := range e.geneDrug.InteractionsForGene(ctx, t.Symbol) {
			crossValidated[name] = struct{}{}
		}
	}

	candidates := make([]domain.RepurposingCandidate, 0, len(rows))
	for _, row := range rows {
		phase := derivePhase(row.Phase, row.MaximumClinicalTrialPhase)
		if phase < minPhase {
			continue
		}
		if isSameIndication(row.Indication, diseaseName, synonyms) {
			continue
		}

		rowMoA := row.MechanismOfAction
		if rowMoA == "" {
			rowMoA = moa
		}

		c := domain.RepurposingCandidate{
			DrugID:             row.DrugID,
			DrugName:           row.DrugName,
			Phase:              phase,
			DrugType:           row.DrugType,
			MolecularTarget:    t.Symbol,
			OriginalIndication: row.Indication,
			ProposedIndication: diseaseName,
			MechanismOfAction:  rowMoA,
			PathwayOverlapScore: t.PathwayJaccard,
			SharedPathways:     t.PathwayIDs,
			OpenTargetsScore:   t.CompositeScore,
			MechanismKnown:     rowMoA != "",
			IsBiologic:         isBiologicType(row.DrugType),
			HasKnownDosing:     true,
		}
		c.IsOral = !c.IsBiologic

		originalArea := taxonomy.Classify(row.Indication, nil, nil)
		c.TherapeuticAreaMatch = disease != nil && diseaseArea != domain.AreaUnknown && originalArea == diseaseArea

		if _, ok := crossValidated[row.DrugName]; ok {
			c.CrossValidatedByGeneDrugDB = true
		}

		moaKnownBonus := 0.05
		if c.MechanismKnown {
			moaKnownBonus = 0.1
		}
		c.MechanisticConfidence = 0.4*c.PathwayOverlapScore + 0.3*minFloat(t.CompositeScore, 1) + 0.2*(float64(phase)/4) + moaKnownBonus

		c.NoveltyScore = 100

		c.MechanisticRationale = buildNarrative(c.DrugName, c.MolecularTarget, c.MechanismOfAction, diseaseName, c.SharedPathways, c.PathwayOverlapScore)
		plan := buildValidationPlan(phase)
		c.InVitroExperiments = plan.InVitro
		c.InVivoExperiments = plan.InVivo
		c.Biomarkers = plan.Biomarkers

		concerns, contraindications, pk := assessSafety(&c, disease, originalArea)
		c.SafetyConcerns = concerns
		c.Contraindications = contraindications
		c.PKConsiderations = pk

		safetyComponent := 1.0
		if len(contraindications) > 0 {
			safetyComponent = 0.0
		} else if len(concerns) > 0 {
			safetyComponent = 0.5
		}
		weighted := (float64(phase)/4)*40 + c.PathwayOverlapScore*40 + safetyComponent*20
		switch {
		case weighted >= 70:
			c.RepurposingFeasibility = domain.FeasibilityHigh
		case weighted >= 40:
			c.RepurposingFeasibility = domain.FeasibilityMedium
		default:
			c.RepurposingFeasibility = domain.FeasibilityLow
		}

		c.ClinicalPhaseOriginal = phase

		candidates = append(candidates, c)
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].MechanisticConfidence > candidates[j].MechanisticConfidence
	})
	if len(candidates) > perTargetCap {
		candidates = candidates[:perTargetCap]
	}
	return candidates
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func isBiologicType(drugType string) bool {
	switch drugType {
	case "Antibody", "Protein", "Enzyme", "Gene", "Cell":
		return true
	default:
		return false
	}
}
