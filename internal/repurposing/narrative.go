package repurposing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/repurposectl/repurposectl/internal/domain"
)

// buildNarrative constructs the deterministic mechanistic-rationale template
// of §4.6 step 4.
func buildNarrative(drugName, targetSymbol, moa, disease string, sharedPathways []string, overlap float64) string {
	n := len(sharedPathways)
	top2 := topN(sharedPathways, 2)
	strength := "limited"
	if overlap >= 0.30 {
		strength = "strong"
	}
	if moa == "" {
		moa = "an undetermined mechanism"
	}
	return fmt.Sprintf(
		"%s modulates %s via %s. This target is implicated in %s through %d shared pathways including %s. The %d%% pathway overlap indicates %s mechanistic relevance.",
		drugName, targetSymbol, moa, disease, n, strings.Join(top2, ", "), int(overlap*100), strength,
	)
}

func topN(items []string, n int) []string {
	sorted := make([]string, len(items))
	copy(sorted, items)
	sort.Strings(sorted)
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// validationPlan is the structured experimental plan of §4.6 step 5.
type validationPlan struct {
	InVitro    []string
	InVivo     []string
	Biomarkers []string
}

func buildValidationPlan(phase int) validationPlan {
	inVitro := []string{
		"cell viability assay",
		"target-engagement assay (phospho-protein or activity readout)",
		"functional phenotypic assay",
		"dose-response characterization",
	}
	if phase >= 4 {
		inVitro = append(inVitro, "combination study with standard-of-care")
	}

	var inVivo []string
	if phase >= 2 {
		inVivo = []string{
			"disease-model efficacy study",
			"PK/PD characterization",
			"dosing-regimen optimization",
			"survival/outcome study",
		}
	} else {
		inVivo = []string{"preclinical safety study", "proof-of-concept study"}
	}

	biomarkers := []string{
		"target engagement biomarker",
		"downstream pathway marker",
		"disease progression marker",
		"plasma/tissue exposure marker",
	}

	return validationPlan{InVitro: inVitro, InVivo: inVivo, Biomarkers: biomarkers}
}

// assessSafety implements §4.6 step 6's deterministic safety heuristics.
func assessSafety(c *domain.RepurposingCandidate, disease *domain.DiseaseContext, originalArea domain.TherapeuticArea) ([]string, []string, []string) {
	var concerns, contraindications, pk []string

	if c.Phase < 2 {
		concerns = append(concerns, "limited human safety data at this clinical phase")
	}
	if c.Phase == 4 {
		pk = append(pk, "approved PK profile; dose may need adjustment for new indication")
	}
	if disease != nil && disease.IsCancer && isCardiotoxicArea(originalArea) {
		concerns = append(concerns, "additive cardiotoxicity risk given oncology context and cardiovascular origin")
	}
	if disease != nil && disease.IsInfectious && isImmunosuppressantArea(originalArea) {
		contraindications = append(contraindications, "immunosuppression may be contraindicated in an active infectious context")
	}
	if c.IsBiologic {
		concerns = append(concerns, "immunogenicity risk typical of biologic therapeutics")
	} else {
		pk = append(pk, "small molecule; existing formulation likely reusable")
	}

	return concerns, contraindications, pk
}

func isCardiotoxicArea(area domain.TherapeuticArea) bool {
	return area == domain.AreaCardiovascular
}

func isImmunosuppressantArea(area domain.TherapeuticArea) bool {
	return area == domain.AreaTransplantationImmunosuppr || area == domain.AreaImmunological
}
