// Package evidence implements the Evidence Aggregators of §4.7:
// Clinical Trials, Patent Landscape, EXIM/Supply, and Literature. Each
// aggregator routes through the cache and rate limiter via its
// collaborator and returns a structured, possibly-empty result on failure
// rather than propagating an error (§4.7's closing design note).
package evidence

import (
	"context"
	"sort"
	"strings"

	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/domain"
)

const highCompetitionThreshold = 50

// TrialsAggregator runs the Clinical Trials evidence aggregator.
type TrialsAggregator struct {
	trials *collaborators.TrialsClient
}

func NewTrialsAggregator(trials *collaborators.TrialsClient) *TrialsAggregator {
	return &TrialsAggregator{trials: trials}
}

// Run fetches active studies for disease and attributes hits to each
// candidate by case-insensitive substring match against title/interventions.
func (a *TrialsAggregator) Run(ctx context.Context, disease string, candidateNames []string) domain.TrialsOutput {
	studies := a.trials.SearchByDisease(ctx, disease)

	out := domain.TrialsOutput{
		Disease:        disease,
		TotalTrials:    len(studies),
		PhaseBreakdown: make(map[int]int),
		CandidateTrials: make(map[string][]domain.TrialRecord),
	}

	sponsorCounts := make(map[string]int)
	for _, s := range studies {
		out.PhaseBreakdown[s.Phase]++
		if s.LeadSponsor != "" {
			sponsorCounts[s.LeadSponsor]++
		}
		for _, name := range candidateNames {
			if studyMentionsCandidate(s, name) {
				out.CandidateTrials[name] = append(out.CandidateTrials[name], domain.TrialRecord{
					NCTID:         s.NCTID,
					Phase:         s.Phase,
					Status:        s.Status,
					LeadSponsor:   s.LeadSponsor,
					Interventions: s.Interventions,
					Title:         s.Title,
				})
			}
		}
	}

	out.TopSponsors = topSponsors(sponsorCounts, 5)
	out.HighCompetition = out.TotalTrials > highCompetitionThreshold
	return out
}

func studyMentionsCandidate(s collaborators.Study, candidateName string) bool {
	lowered := strings.ToLower(candidateName)
	if strings.Contains(strings.ToLower(s.Title), lowered) {
		return true
	}
	for _, iv := range s.Interventions {
		if strings.Contains(strings.ToLower(iv), lowered) {
			return true
		}
	}
	return false
}

func topSponsors(counts map[string]int, n int) []string {
	type pair struct {
		name  string
		count int
	}
	pairs := make([]pair, 0, len(counts))
	for name, count := range counts {
		pairs = append(pairs, pair{name, count})
	}
	sort.Slice(pairs, func(i, j int) bool {
		if pairs[i].count != pairs[j].count {
			return pairs[i].count > pairs[j].count
		}
		return pairs[i].name < pairs[j].name
	})
	if n > len(pairs) {
		n = len(pairs)
	}
	out := make([]string, n)
	for i := 0; i < n; i++ {
		out[i] = pairs[i].name
	}
	return out
}
