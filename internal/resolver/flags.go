package resolver

import (
	"strings"

	"github.com/repurposectl/repurposectl/internal/domain"
)

// flagKeywords are the substring sets checked against the disease's
// canonical label and parent-term labels (§4.3 step 6). Grounded on
// original_source/kg/disease_resolver_v2.py's keyword-set flag extraction.
var (
	cancerKeywords = []string{
		"cancer", "carcinoma", "tumor", "tumour", "neoplasm", "malignancy",
		"leukemia", "lymphoma", "sarcoma", "melanoma", "blastoma",
	}
	autoimmuneKeywords = []string{
		"autoimmune", "autoinflammatory", "lupus", "rheumatoid",
		"inflammatory bowel", "multiple sclerosis", "psoriasis",
	}
	infectiousKeywords = []string{
		"infection", "infectious", "viral", "bacterial", "fungal",
		"parasitic", "sepsis", "tuberculosis",
	}
	rareKeywords = []string{
		"rare disease", "orphan disease", "rare genetic",
	}
	geneticKeywords = []string{
		"genetic", "hereditary", "inherited", "congenital", "chromosomal",
		"mutation", "syndrome",
	}
)

// applyFlags sets the five boolean classification flags by substring search
// over the canonical label and every parent-term label, matching any keyword
// in each flag's set.
func applyFlags(dc *domain.DiseaseContext) {
	haystack := make([]string, 0, 1+len(dc.ParentTerms))
	haystack = append(haystack, dc.CanonicalLabel)
	haystack = append(haystack, dc.ParentTerms...)

	dc.IsCancer = anyContains(haystack, cancerKeywords)
	dc.IsAutoimmune = anyContains(haystack, autoimmuneKeywords)
	dc.IsInfectious = anyContains(haystack, infectiousKeywords)
	dc.IsRare = anyContains(haystack, rareKeywords)
	dc.IsGenetic = anyContains(haystack, geneticKeywords)
}

func anyContains(haystack []string, keywords []string) bool {
	for _, h := range haystack {
		lowered := strings.ToLower(h)
		for _, kw := range keywords {
			if strings.Contains(lowered, kw) {
				return true
			}
		}
	}
	return false
}
