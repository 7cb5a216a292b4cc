package evidence

import (
	"context"
	"fmt"
	"time"

	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/domain"
)

// WebIntelAggregator runs the Web Intelligence aggregator: a broad
// standard-of-care and unmet-need sweep that seeds candidate drug names
// ahead of the Literature and KG stages (web_intelligence_node in the
// original orchestrator).
type WebIntelAggregator struct {
	search *collaborators.WebSearchClient
}

func NewWebIntelAggregator(search *collaborators.WebSearchClient) *WebIntelAggregator {
	return &WebIntelAggregator{search: search}
}

// Run issues a standard-of-care query and an unmet-need query for disease in
// geography, and seeds Candidates from drug-like capitalized tokens found in
// the standard-of-care hits, reusing the Literature aggregator's gene-symbol
// heuristic (capitalized-token extraction doubles as a coarse drug-name
// extractor here since no structured field distinguishes the two at this
// early stage).
func (a *WebIntelAggregator) Run(ctx context.Context, disease, geography string) domain.WebIntelOutput {
	socHits := a.search.Search(ctx, disease+" standard of care treatment "+geography, 10)
	unmetHits := a.search.Search(ctx, disease+" unmet medical need treatment gap", 10)

	all := make([]collaborators.SearchHit, 0, len(socHits)+len(unmetHits))
	all = append(all, socHits...)
	all = append(all, unmetHits...)

	out := domain.WebIntelOutput{FetchedAt: time.Now().UTC()}
	for _, h := range all {
		out.Citations = append(out.Citations, domain.Citation{URL: h.URL, Source: "web-intelligence-search", Title: h.Title})
	}
	out.Candidates = extractGeneSymbols(socHits)

	switch {
	case len(socHits) == 0 && len(unmetHits) == 0:
		out.Summary = ""
	default:
		out.Summary = summarizeHits(disease, socHits, unmetHits)
	}
	return out
}

func summarizeHits(disease string, soc, unmet []collaborators.SearchHit) string {
	return fmt.Sprintf("%s: %d standard-of-care source(s), %d unmet-need source(s) found.", disease, len(soc), len(unmet))
}
