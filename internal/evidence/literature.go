package evidence

import (
	"context"
	"regexp"
	"strings"

	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/domain"
)

// medicalAbbreviationBlocklist excludes common non-gene capitalized
// abbreviations from the regex gene-symbol fallback (§4.7 "Literature").
var medicalAbbreviationBlocklist = map[string]struct{}{
	"DNA": {}, "RNA": {}, "FDA": {}, "NIH": {}, "USA": {}, "CI": {}, "OR": {},
	"HR": {}, "RCT": {}, "AE": {}, "SAE": {}, "PK": {}, "PD": {}, "IV": {},
	"PO": {}, "QD": {}, "BID": {}, "TID": {}, "ICU": {}, "ER": {}, "WHO": {},
	"CDC": {}, "EMA": {}, "USD": {}, "UK": {}, "EU": {}, "COVID": {},
}

var geneSymbolRE = regexp.MustCompile(`\b[A-Z][A-Z0-9]{1,9}\b`)

// LiteratureAggregator runs the Literature evidence aggregator.
type LiteratureAggregator struct {
	search *collaborators.WebSearchClient
	llm    *collaborators.LLMClient
}

func NewLiteratureAggregator(search *collaborators.WebSearchClient, llm *collaborators.LLMClient) *LiteratureAggregator {
	return &LiteratureAggregator{search: search, llm: llm}
}

// Run issues tier-1 (meta-analyses), tier-2 (recent reviews), and tier-3
// (mechanism) queries, computes a redundancy-based citation proxy, and asks
// the LLM collaborator for a pathophysiology synthesis + target list,
// falling back to deterministic regex gene-symbol extraction on failure.
func (a *LiteratureAggregator) Run(ctx context.Context, disease string) domain.LiteratureOutput {
	tier1 := a.search.Search(ctx, disease+" meta-analysis systematic review", 10)
	tier2 := a.search.Search(ctx, disease+" recent review 2024 2025", 10)
	tier3 := a.search.Search(ctx, disease+" molecular mechanism pathophysiology", 10)

	all := make([]collaborators.SearchHit, 0, len(tier1)+len(tier2)+len(tier3))
	all = append(all, tier1...)
	all = append(all, tier2...)
	all = append(all, tier3...)

	out := domain.LiteratureOutput{
		CitationCounts: citationCounts(all),
	}
	for _, h := range all {
		out.Citations = append(out.Citations, domain.Citation{URL: h.URL, Source: "literature-search", Title: h.Title})
	}

	var llmResp struct {
		Summary string   `json:"summary"`
		Targets []string `json:"targets"`
	}
	prompt := synthesisPrompt(disease, all)
	if a.llm.Generate(ctx, prompt, &llmResp) && llmResp.Summary != "" {
		out.Summary = llmResp.Summary
		out.SynthesizedTargets = llmResp.Targets
		return out
	}

	out.Summary = ""
	out.SynthesizedTargets = extractGeneSymbols(all)
	return out
}

func synthesisPrompt(disease string, hits []collaborators.SearchHit) string {
	var sb strings.Builder
	sb.WriteString("Summarize the pathophysiology of ")
	sb.WriteString(disease)
	sb.WriteString(" and list candidate molecular targets as JSON {summary, targets}.\n")
	for _, h := range hits {
		sb.WriteString("- ")
		sb.WriteString(h.Title)
		sb.WriteString(": ")
		sb.WriteString(h.Snippet)
		sb.WriteString("\n")
	}
	return sb.String()
}

// citationCounts approximates back-citation volume by counting how many
// times the same title recurs across the three query tiers.
func citationCounts(hits []collaborators.SearchHit) map[string]int {
	counts := make(map[string]int)
	for _, h := range hits {
		counts[h.Title]++
	}
	return counts
}

// extractGeneSymbols is the deterministic fallback when the LLM is
// unavailable or its response is invalid: scans snippets for all-caps
// tokens that look like gene symbols, excluding the medical-abbreviation
// blocklist.
func extractGeneSymbols(hits []collaborators.SearchHit) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, h := range hits {
		for _, match := range geneSymbolRE.FindAllString(h.Snippet, -1) {
			if _, blocked := medicalAbbreviationBlocklist[match]; blocked {
				continue
			}
			if _, ok := seen[match]; ok {
				continue
			}
			seen[match] = struct{}{}
			out = append(out, match)
		}
	}
	return out
}
