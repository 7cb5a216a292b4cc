package report

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/repurposectl/repurposectl/internal/domain"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRender_NoRecommendationStillProducesReport(t *testing.T) {
	r := &Renderer{now: fixedClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC))}
	state := &domain.RouteAState{RunID: "run-1", Indication: "Alzheimer's Disease", Status: domain.RunFailed}

	data, filename, err := r.Render(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "report-run-1.md", filename)
	assert.Contains(t, string(data), "Drug Repurposing Report: Alzheimer's Disease")
	assert.Contains(t, string(data), "No ranked recommendation was produced")
}

func TestRender_WithRankedCandidates(t *testing.T) {
	r := New()
	diseaseID := "EFO_0000249"
	state := &domain.RouteAState{
		RunID:      "run-2",
		Indication: "Alzheimer's Disease",
		DiseaseID:  &diseaseID,
		Status:     domain.RunSucceeded,
		StrictFTO:  true,
		Recommendation: &domain.FinalRecommendation{
			TotalCandidatesEvaluated: 5,
			CandidatesAfterFiltering: 2,
			ConfidenceLevel:          "High",
			NextActions:              []string{"Design a pilot study"},
			RankedCandidates: []domain.RankedCandidate{
				{
					RepurposingCandidate: domain.RepurposingCandidate{DrugID: "CHEMBL1", DrugName: "Drug A"},
					Rank:                 1,
					FinalScore:           82,
					CompositeScore:       85,
					NoveltyScore:         60,
					FeasibilityScore:     90,
					Tier:                 domain.TierHigh,
					Recommendation:       "Strong repurposing candidate",
				},
			},
		},
		PatentOutputs: map[string]domain.PatentOutput{"Drug A": {RiskTier: domain.PatentRiskLow}},
		EximOutputs:   map[string]domain.EximOutput{"Drug A": {Signal: domain.SupplyStrong}},
	}

	data, filename, err := r.Render(context.Background(), state)
	require.NoError(t, err)
	assert.Equal(t, "report-run-2.md", filename)

	out := string(data)
	assert.Contains(t, out, "Drug A")
	assert.Contains(t, out, "82.0/100")
	assert.Contains(t, out, "High Priority")
	assert.Contains(t, out, "Strict freedom-to-operate filtering was applied")
	assert.Contains(t, out, "Design a pilot study")
}
