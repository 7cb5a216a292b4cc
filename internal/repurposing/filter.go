package repurposing

import "strings"

// isSameIndication implements the §4.6 step 3 repurposing filter: a drug's
// existing indication disqualifies it from repurposing when it substring-
// contains the query disease name, or shares >=2 overlapping word tokens of
// length > 3 with it. An empty indication never disqualifies (§4.6 step 3:
// "a drug with no indication string is kept").
//
// Enriched per the synonym Open Question (DESIGN.md): the disease's known
// synonyms are checked the same way as the canonical disease name, so a
// drug indicated for a MONDO synonym of the query disease is still excluded.
func isSameIndication(indication string, diseaseName string, diseaseSynonyms []string) bool {
	if strings.TrimSpace(indication) == "" {
		return false
	}
	lowered := strings.ToLower(indication)

	candidates := make([]string, 0, 1+len(diseaseSynonyms))
	candidates = append(candidates, diseaseName)
	candidates = append(candidates, diseaseSynonyms...)

	for _, name := range candidates {
		name = strings.ToLower(strings.TrimSpace(name))
		if name == "" {
			continue
		}
		if strings.Contains(lowered, name) {
			return true
		}
		if sharedLongTokenCount(lowered, name) >= 2 {
			return true
		}
	}
	return false
}

// sharedLongTokenCount counts word tokens of length > 3 shared between a
// and b.
func sharedLongTokenCount(a, b string) int {
	tokensA := longTokens(a)
	tokensB := longTokens(b)
	count := 0
	for t := range tokensA {
		if _, ok := tokensB[t]; ok {
			count++
		}
	}
	return count
}

func longTokens(s string) map[string]struct{} {
	out := make(map[string]struct{})
	for _, f := range strings.Fields(s) {
		f = strings.Trim(f, ".,;:()[]")
		if len(f) > 3 {
			out[f] = struct{}{}
		}
	}
	return out
}

// derivePhase implements §4.6 step 2: max(maximumClinicalTrialPhase,
// row.phase), null treated as 0, clipped to [0,4].
func derivePhase(rowPhase *int, maxTrialPhase *int) int {
	p := 0
	if rowPhase != nil {
		p = *rowPhase
	}
	if maxTrialPhase != nil && *maxTrialPhase > p {
		p = *maxTrialPhase
	}
	if p < 0 {
		p = 0
	}
	if p > 4 {
		p = 4
	}
	return p
}
