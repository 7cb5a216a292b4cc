// Package targets implements Target Discovery + Validation (§4.5)
// and the disease-pathway inference it depends on (§4.5.1).
//
// Grounded on original_source/kg/target_validator.py's three-stage
// discover/validate-mechanism/validate-evidence pipeline, and
// internal/service/acmg_rule_engine.go for the decision+confidence+reasoning
// return shape reused by the independent validators.
package targets

import (
	"context"
	"math"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/cache"
	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/domain"
)

const (
	minTargets     = 20
	maxTargets     = 50
	topPercent     = 0.10
	jaccardKeep    = 0.15
	jaccardHighConfidence = 0.30
	diseasePathwayTopN = 20
)

// ppiMinConfidence is the STRING-db interaction confidence floor the
// enrichment phase applies before counting a partner.
const ppiMinConfidence = 0.7

// ppiPartnerCap bounds how many interaction partners are retained per
// target, matching the enrichment phase's top-5 cutoff.
const ppiPartnerCap = 5

// Discoverer runs the full Target Discovery + Validation pipeline.
type Discoverer struct {
	assoc       *collaborators.TargetAssocClient
	pathway     *collaborators.PathwayClient
	uniprot     *collaborators.UniProtClient
	geneDisease *collaborators.GeneDiseaseClient
	ncbiGene    *collaborators.NCBIGeneClient
	ppi         *collaborators.PPIClient
	graphDB     *collaborators.GraphDBClient
	geneIndex   *cache.GeneIndex
	log         *logrus.Logger
}

func New(
	assoc *collaborators.TargetAssocClient,
	pathway *collaborators.PathwayClient,
	uniprot *collaborators.UniProtClient,
	geneDisease *collaborators.GeneDiseaseClient,
	ncbiGene *collaborators.NCBIGeneClient,
	ppi *collaborators.PPIClient,
	graphDB *collaborators.GraphDBClient,
	geneIndex *cache.GeneIndex,
	log *logrus.Logger,
) *Discoverer {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Discoverer{
		assoc: assoc, pathway: pathway, uniprot: uniprot,
		geneDisease: geneDisease, ncbiGene: ncbiGene, ppi: ppi, graphDB: graphDB,
		geneIndex: geneIndex, log: log,
	}
}

// tractabilityScore maps a small-molecule modality label to [0,1].
func tractabilityScore(labels []string) float64 {
	best := 0.0
	for _, l := range labels {
		var s float64
		switch l {
		case "Approved":
			s = 1.0
		case "Clinical", "Phase 1", "Phase 2", "Phase 3":
			s = 0.7
		case "Discovery":
			s = 0.4
		case "Predicted":
			s = 0.2
		}
		if s > best {
			best = s
		}
	}
	return best
}

func minMaxNormalize(values []float64) []float64 {
	if len(values) == 0 {
		return nil
	}
	lo, hi := values[0], values[0]
	for _, v := range values {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	out := make([]float64, len(values))
	if hi == lo {
		for i := range values {
			out[i] = 0.5
		}
		return out
	}
	for i, v := range values {
		out[i] = (v - lo) / (hi - lo)
	}
	return out
}

// Discover runs §4.5 steps 1-6 and returns the validated, graph-DB-written
// target list along with the §4.5.1 disease pathway set.
func (d *Discoverer) Discover(ctx context.Context, diseaseID string) ([]domain.Target, []string) {
	rows := d.assoc.TargetsForDisease(ctx, diseaseID)
	if len(rows) == 0 {
		return nil, nil
	}

	candidates := make([]domain.Target, 0, len(rows))
	baseScores := make([]float64, 0, len(rows))
	diversities := make([]float64, 0, len(rows))
	tractabilities := make([]float64, 0, len(rows))
	for _, r := range rows {
		diversity := 0.0
		for _, v := range r.DatatypeScores {
			if v > 0 {
				diversity++
			}
		}
		baseScores = append(baseScores, r.Score)
		diversities = append(diversities, diversity)
		tractabilities = append(tractabilities, tractabilityScore(r.Tractability))
		candidates = append(candidates, domain.Target{
			Symbol:           r.GeneSymbol,
			EnsemblID:        d.resolveEnsemblID(ctx, r.GeneSymbol, r.TargetID),
			Biotype:          r.Biotype,
			OpenTargetsScore: r.Score,
		})
	}

	normBase := minMaxNormalize(baseScores)
	normDiv := minMaxNormalize(diversities)
	normTract := minMaxNormalize(tractabilities)
	for i := range candidates {
		candidates[i].CompositeScore = 0.7*normBase[i] + 0.2*normDiv[i] + 0.1*normTract[i]
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].CompositeScore > candidates[j].CompositeScore
	})

	keepCount := int(math.Ceil(topPercent * float64(len(candidates))))
	if keepCount < minTargets {
		keepCount = minTargets
	}
	if keepCount > len(candidates) {
		keepCount = len(candidates)
	}
	candidates = candidates[:keepCount]

	filtered := candidates[:0:0]
	for _, t := range candidates {
		if t.Biotype == "protein_coding" && t.OpenTargetsScore > 0 {
			filtered = append(filtered, t)
		}
	}
	candidates = filtered
	if len(candidates) > maxTargets {
		candidates = candidates[:maxTargets]
	}

	// Step 4: mechanism validation needs each target's pathway set, so
	// resolve UniProt accessions and pathway ids before computing the
	// disease pathway union (§4.5.1 needs the top-20 validated targets'
	// own pathway ids, which are only known after this fetch).
	for i := range candidates {
		candidates[i].PathwayIDs = d.targetPathways(ctx, &candidates[i])
	}

	diseasePathways := inferDiseasePathways(candidates)

	candidates = d.validateMechanism(candidates, diseasePathways)
	candidates = d.validateEvidence(ctx, diseaseID, candidates)
	d.enrichPPI(ctx, candidates)

	for i := range candidates {
		t := &candidates[i]
		if d.graphDB != nil {
			_ = d.graphDB.MergeTarget(ctx, t.EnsemblID, t.Symbol, t.CompositeScore)
			_ = d.graphDB.MergeTargetDiseaseEdge(ctx, t.EnsemblID, diseaseID, t.ValidationScore+t.MechanismScore)
		}
	}

	return candidates, diseasePathways
}

// enrichPPI attaches protein-protein interaction partners to each validated
// target, non-blocking: a nil PPI client simply leaves candidates
// unenriched rather than failing the run.
func (d *Discoverer) enrichPPI(ctx context.Context, candidates []domain.Target) {
	if d.ppi == nil {
		return
	}
	for i := range candidates {
		t := &candidates[i]
		partners := d.ppi.Interactors(ctx, t.Symbol, ppiMinConfidence)
		if len(partners) > ppiPartnerCap {
			partners = partners[:ppiPartnerCap]
		}
		t.PPIPartners = partners
		t.PPIConfidence = minFloat(float64(len(partners))/10.0, 1.0)
	}
}

// resolveEnsemblID serves a gene symbol's Ensembl ID from the shared gene
// index when another run already resolved it, storing the target-association
// DB's answer otherwise so later runs (or the drug fan-out within this one)
// can skip the round trip.
func (d *Discoverer) resolveEnsemblID(ctx context.Context, geneSymbol, fetchedID string) string {
	if d.geneIndex == nil {
		return fetchedID
	}
	if cached, ok := d.geneIndex.Lookup(ctx, geneSymbol); ok {
		return cached
	}
	d.geneIndex.Store(ctx, geneSymbol, fetchedID)
	return fetchedID
}

func (d *Discoverer) targetPathways(ctx context.Context, t *domain.Target) []string {
	entry := d.uniprot.Lookup(ctx, t.Symbol)
	if entry.Accession == "" {
		return nil
	}
	t.UniProtAccession = entry.Accession
	return d.pathway.PathwaysForUniProt(ctx, entry.Accession)
}

// inferDiseasePathways implements §4.5.1: union of the top-20 (by composite,
// candidates are already sorted) validated targets' pathway ids.
func inferDiseasePathways(candidates []domain.Target) []string {
	n := diseasePathwayTopN
	if n > len(candidates) {
		n = len(candidates)
	}
	seen := make(map[string]struct{})
	for _, t := range candidates[:n] {
		for _, p := range t.PathwayIDs {
			seen[p] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for p := range seen {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// mechanismConfidence scales Jaccard overlap against the high-confidence
// threshold: min(jaccard/0.3, 1.0) above it, jaccard/0.3 in the moderate
// keep band, 0 below the keep floor.
func mechanismConfidence(jac float64) float64 {
	if jac < jaccardKeep {
		return 0
	}
	confidence := jac / jaccardHighConfidence
	if confidence > 1.0 {
		confidence = 1.0
	}
	return confidence
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func jaccard(a, b []string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 0
	}
	setA := make(map[string]struct{}, len(a))
	for _, v := range a {
		setA[v] = struct{}{}
	}
	setB := make(map[string]struct{}, len(b))
	for _, v := range b {
		setB[v] = struct{}{}
	}
	inter := 0
	for v := range setA {
		if _, ok := setB[v]; ok {
			inter++
		}
	}
	union := len(setA)
	for v := range setB {
		if _, ok := setA[v]; !ok {
			union++
		}
	}
	if union == 0 {
		return 0
	}
	return float64(inter) / float64(union)
}

// validateMechanism implements §4.5 step 4: Jaccard overlap of target and
// disease pathway sets, KEEP/REJECT decision, with a top-half-by-composite
// safety net if everything is rejected. MechanismScore scales confidence
// off the same high-confidence threshold (0.30) the Jaccard decision uses:
// full confidence at or above it, linearly scaled down to the keep floor
// below it, zero once a target is rejected outright.
func (d *Discoverer) validateMechanism(candidates []domain.Target, diseasePathways []string) []domain.Target {
	kept := make([]domain.Target, 0, len(candidates))
	for _, t := range candidates {
		t.PathwayJaccard = jaccard(t.PathwayIDs, diseasePathways)
		t.MechanismScore = mechanismConfidence(t.PathwayJaccard)
		if t.PathwayJaccard >= jaccardKeep {
			t.PathwayValidationDecision = domain.DecisionKeep
			kept = append(kept, t)
		} else {
			t.PathwayValidationDecision = domain.DecisionReject
		}
	}
	if len(kept) > 0 {
		return kept
	}
	return applySafetyNet(candidates, func(t *domain.Target) {
		t.PathwayValidationDecision = domain.DecisionKeep
		t.SafetyNetApplied = true
	})
}

// validateEvidence implements §4.5 step 5: independent gene-disease
// evidence composite, with the same top-half safety net rule.
func (d *Discoverer) validateEvidence(ctx context.Context, diseaseID string, candidates []domain.Target) []domain.Target {
	kept := make([]domain.Target, 0, len(candidates))
	for _, t := range candidates {
		a := d.geneDisease.AssociationScore(ctx, t.Symbol, diseaseID)
		entry := d.uniprot.Lookup(ctx, t.Symbol)
		b := uniprotQualityScore(entry)
		char := d.ncbiGene.Characterize(ctx, t.Symbol)
		c := geneCharacterizationScore(char)
		composite := 0.40*a + 0.30*b + 0.30*c
		t.ValidationScore = composite

		accept := a > 0 || composite >= 0.20 || (b >= 0.30 && c >= 0.30)
		if accept {
			t.EvidenceValidationDecision = domain.DecisionKeep
			kept = append(kept, t)
		} else {
			t.EvidenceValidationDecision = domain.DecisionReject
		}
	}
	if len(kept) > 0 {
		return kept
	}
	return applySafetyNet(candidates, func(t *domain.Target) {
		t.EvidenceValidationDecision = domain.DecisionKeep
		t.SafetyNetApplied = true
	})
}

// applySafetyNet keeps the top half by composite score (minimum 5), per the
// Open Question resolution in DESIGN.md.
func applySafetyNet(candidates []domain.Target, mark func(*domain.Target)) []domain.Target {
	if len(candidates) == 0 {
		return nil
	}
	sorted := make([]domain.Target, len(candidates))
	copy(sorted, candidates)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CompositeScore > sorted[j].CompositeScore
	})
	n := len(sorted) / 2
	if n < 5 {
		n = 5
	}
	if n > len(sorted) {
		n = len(sorted)
	}
	kept := sorted[:n]
	for i := range kept {
		mark(&kept[i])
	}
	return kept
}

func uniprotQualityScore(e collaborators.UniProtEntry) float64 {
	score := 0.0
	if e.Reviewed {
		score += 0.4
	}
	if e.HasFunction {
		score += 0.3
	}
	if e.HasDiseaseInvolvement {
		score += 0.3
	}
	return score
}

func geneCharacterizationScore(c collaborators.GeneCharacterization) float64 {
	score := 0.0
	if c.GeneIDPresent {
		score += 0.5
	}
	if c.HasSummary {
		score += 0.5
	}
	return score
}
