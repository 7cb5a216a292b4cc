package evidence

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repurposectl/repurposectl/internal/collaborators"
)

func TestStudyMentionsCandidate(t *testing.T) {
	s := collaborators.Study{Title: "A Study of Metformin in PCOS", Interventions: []string{"Metformin 500mg"}}
	assert.True(t, studyMentionsCandidate(s, "metformin"))
	assert.False(t, studyMentionsCandidate(s, "aspirin"))
}

func TestTopSponsors_OrdersByCountThenName(t *testing.T) {
	counts := map[string]int{"Acme": 3, "Beta": 3, "Gamma": 1}
	out := topSponsors(counts, 2)
	assert.Equal(t, []string{"Acme", "Beta"}, out)
}

func TestBumpTier(t *testing.T) {
	assert.Equal(t, "LOW", string(bumpTier("LOW")))
	assert.Equal(t, "HIGH", string(bumpTier("MEDIUM")))
	assert.Equal(t, "MEDIUM", string(bumpTier("UNKNOWN")))
}

func TestSnippetsContainFutureYear(t *testing.T) {
	hits := []collaborators.SearchHit{{Snippet: "patent extends through 2031"}}
	assert.True(t, snippetsContainFutureYear(hits, 2026))
	assert.False(t, snippetsContainFutureYear([]collaborators.SearchHit{{Snippet: "patent filed in 2010"}}, 2026))
}

func TestCountryMentions_Dedupes(t *testing.T) {
	hits := []collaborators.SearchHit{
		{Snippet: "Manufactured in China and India"},
		{Snippet: "China remains a major API supplier"},
	}
	out := countryMentions(hits)
	assert.Equal(t, []string{"china", "india"}, out)
}

func TestCitationCounts(t *testing.T) {
	hits := []collaborators.SearchHit{{Title: "A"}, {Title: "A"}, {Title: "B"}}
	counts := citationCounts(hits)
	assert.Equal(t, 2, counts["A"])
	assert.Equal(t, 1, counts["B"])
}

func TestExtractGeneSymbols_SkipsBlocklist(t *testing.T) {
	hits := []collaborators.SearchHit{{Snippet: "TP53 mutations and DNA repair via BRCA1 were studied by the FDA"}}
	out := extractGeneSymbols(hits)
	assert.Contains(t, out, "TP53")
	assert.Contains(t, out, "BRCA1")
	assert.NotContains(t, out, "DNA")
	assert.NotContains(t, out, "FDA")
}

func TestSnippetsContain_ExpiredKeyword(t *testing.T) {
	assert.True(t, snippetsContain([]collaborators.SearchHit{{Snippet: "patent expired in 2020"}}, "expired"))
	assert.False(t, snippetsContain([]collaborators.SearchHit{{Snippet: "patent active"}}, "expired"))
}
