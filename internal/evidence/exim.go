package evidence

import (
	"context"
	"strings"

	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/domain"
)

// strongSupplyCountries is the country set whose presence alone signals
// STRONG manufacturing concentration (§4.7 "EXIM/Supply").
var strongSupplyCountries = []string{"china", "india"}

// eximCountries is the full country vocabulary this aggregator scans for.
var eximCountries = []string{
	"china", "india", "united states", "germany", "switzerland", "italy",
	"ireland", "japan", "south korea", "israel", "spain", "france",
}

// EximAggregator runs the EXIM/Supply aggregator, sharing the same
// WebSearchClient the Patent aggregator uses.
type EximAggregator struct {
	search *collaborators.WebSearchClient
}

func NewEximAggregator(search *collaborators.WebSearchClient) *EximAggregator {
	return &EximAggregator{search: search}
}

// Run issues one aggregating web-search query for API manufacturing
// countries and classifies a supply-concentration signal.
func (a *EximAggregator) Run(ctx context.Context, drugID, drugName string) domain.EximOutput {
	hits := a.search.Search(ctx, drugName+" API manufacturer country active pharmaceutical ingredient", 10)

	out := domain.EximOutput{DrugID: drugID}
	for _, h := range hits {
		out.Citations = append(out.Citations, domain.Citation{URL: h.URL, Source: "exim-search", Title: h.Title})
	}
	if len(hits) == 0 {
		out.Signal = domain.SupplyUnknown
		return out
	}

	mentioned := countryMentions(hits)
	out.Countries = mentioned

	hasStrong := false
	for _, c := range mentioned {
		for _, s := range strongSupplyCountries {
			if c == s {
				hasStrong = true
			}
		}
	}

	switch {
	case hasStrong:
		out.Signal = domain.SupplyStrong
	case len(mentioned) > 0:
		out.Signal = domain.SupplyModerate
	default:
		out.Signal = domain.SupplyWeak
	}
	return out
}

func countryMentions(hits []collaborators.SearchHit) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, h := range hits {
		lowered := strings.ToLower(h.Snippet)
		for _, c := range eximCountries {
			if _, ok := seen[c]; ok {
				continue
			}
			if strings.Contains(lowered, c) {
				seen[c] = struct{}{}
				out = append(out, c)
			}
		}
	}
	return out
}
