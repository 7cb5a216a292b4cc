package evidence

import (
	"context"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/domain"
)

// futureYearRE matches any bare 4-digit year, checked against the
// (currentYear+1 .. 2040) window per §4.7's "Patent Landscape" rule.
var futureYearRE = regexp.MustCompile(`\b(19|20)\d{2}\b`)

// PatentAggregator runs the Patent Landscape aggregator, sharing the same
// WebSearchClient the EXIM aggregator uses (DESIGN.md Open Question
// resolution: one client, two query shapes, no duplicated implementation).
type PatentAggregator struct {
	search *collaborators.WebSearchClient
	now    func() time.Time
}

func NewPatentAggregator(search *collaborators.WebSearchClient) *PatentAggregator {
	return &PatentAggregator{search: search, now: time.Now}
}

// Run issues the two queries §4.7 names ("expiry" and "recent
// activity") and derives a risk tier from keyword heuristics.
func (a *PatentAggregator) Run(ctx context.Context, drugID, drugName string) domain.PatentOutput {
	expiryHits := a.search.Search(ctx, drugName+" patent expiry", 10)
	activityHits := a.search.Search(ctx, drugName+" patent litigation recent activity", 10)

	out := domain.PatentOutput{DrugID: drugID}
	for _, h := range expiryHits {
		out.Citations = append(out.Citations, domain.Citation{URL: h.URL, Source: "patent-search", Title: h.Title})
	}
	for _, h := range activityHits {
		out.Citations = append(out.Citations, domain.Citation{URL: h.URL, Source: "patent-search", Title: h.Title})
	}

	if len(expiryHits) == 0 && len(activityHits) == 0 {
		out.RiskTier = domain.PatentRiskUnknown
		out.Notes = append(out.Notes, "no patent data found")
		return out
	}

	expiredFound := snippetsContain(expiryHits, "expired")
	futureYearFound := snippetsContainFutureYear(expiryHits, a.now().Year())
	recentActivity := len(activityHits) > 0

	switch {
	case expiredFound:
		out.RiskTier = domain.PatentRiskLow
		out.Expired = true
		out.Notes = append(out.Notes, "expiry language found in patent search results")
	case futureYearFound:
		out.RiskTier = domain.PatentRiskMedium
		out.Notes = append(out.Notes, "future expiry year referenced in patent search results")
	default:
		out.RiskTier = domain.PatentRiskUnknown
	}

	if recentActivity {
		out.Notes = append(out.Notes, "recent patent activity detected")
		out.RiskTier = bumpTier(out.RiskTier)
	}

	return out
}

func snippetsContain(hits []collaborators.SearchHit, keyword string) bool {
	for _, h := range hits {
		if strings.Contains(strings.ToLower(h.Snippet), keyword) {
			return true
		}
	}
	return false
}

func snippetsContainFutureYear(hits []collaborators.SearchHit, currentYear int) bool {
	for _, h := range hits {
		for _, match := range futureYearRE.FindAllString(h.Snippet, -1) {
			year, err := strconv.Atoi(match)
			if err != nil {
				continue
			}
			if year > currentYear && year <= 2040 {
				return true
			}
		}
	}
	return false
}

// bumpTier raises risk to at least MEDIUM, and to HIGH when already
// non-LOW, per §4.7's recent-activity rule.
func bumpTier(tier domain.PatentRiskTier) domain.PatentRiskTier {
	switch tier {
	case domain.PatentRiskLow:
		return domain.PatentRiskLow
	case domain.PatentRiskUnknown:
		return domain.PatentRiskMedium
	case domain.PatentRiskMedium:
		return domain.PatentRiskHigh
	default:
		return tier
	}
}
