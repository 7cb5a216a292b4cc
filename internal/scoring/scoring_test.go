package scoring

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repurposectl/repurposectl/internal/domain"
)

func TestValidateTarget_RejectsLowAssociation(t *testing.T) {
	v := NewValidator()
	result := v.ValidateTarget(0.1, 5, nil, nil)
	assert.Equal(t, domain.DecisionReject, result.Decision)
}

func TestValidateTarget_FlagsSingleSourceAndLowOverlap(t *testing.T) {
	v := NewValidator()
	overlap := 0.01
	result := v.ValidateTarget(0.5, 0, &overlap, nil)
	assert.Contains(t, result.Flags, "single_source")
	assert.Contains(t, result.Flags, "low_pathway_overlap")
}

func TestValidateTarget_KeepsHighConfidence(t *testing.T) {
	v := NewValidator()
	overlap := 0.5
	result := v.ValidateTarget(0.9, 5, &overlap, nil)
	assert.Equal(t, domain.DecisionKeep, result.Decision)
}

func TestValidateDrug_RejectsNoPhaseNoEvidence(t *testing.T) {
	v := NewValidator()
	result := v.ValidateDrug(0, false, false, nil)
	assert.Equal(t, domain.DecisionReject, result.Decision)
}

func TestValidateDrug_KeepsApprovedWithEvidence(t *testing.T) {
	v := NewValidator()
	result := v.ValidateDrug(4, true, true, nil)
	assert.Equal(t, domain.DecisionKeep, result.Decision)
}

func TestNewEngine_PanicsOnBadWeights(t *testing.T) {
	assert.Panics(t, func() {
		New(Weights{ClinicalPhase: 0.9, Evidence: 0.9})
	})
}

func TestScoreClinicalPhase(t *testing.T) {
	assert.Equal(t, 10.0, scoreClinicalPhase(0))
	assert.Equal(t, 100.0, scoreClinicalPhase(4))
}

func TestScoreSafetyProfile_WithdrawalOverridesBonus(t *testing.T) {
	years := 15
	score := scoreSafetyProfile(false, false, true, &years)
	assert.Equal(t, 70.0, score) // 100 - 40 withdrawal + 10 bonus capped at 100, then floor at 0 check
}

func TestScoreRepurposingNovelty_DefaultsWithIndication(t *testing.T) {
	assert.Equal(t, 70.0, scoreRepurposingNovelty(nil, "prior indication"))
	assert.Equal(t, 50.0, scoreRepurposingNovelty(nil, ""))
}

func TestEngine_Score_ComputesWeightedComposite(t *testing.T) {
	e := New(DefaultWeights)
	breakdown := e.Score(CandidateFacts{
		Phase:               4,
		HasClinicalEvidence: true,
		OpenTargetsScore:    0.8,
		EvidenceCount:        3,
	})
	assert.Greater(t, breakdown.CompositeScore, 0.0)
	assert.LessOrEqual(t, breakdown.CompositeScore, 100.0)
	assert.GreaterOrEqual(t, breakdown.Confidence, 0.5)
}

func TestAssignTier(t *testing.T) {
	assert.Equal(t, domain.TierHigh, assignTier(80, 2, false))
	assert.Equal(t, domain.TierHigh, assignTier(10, 4, true))
	assert.Equal(t, domain.TierMedium, assignTier(55, 1, false))
	assert.Equal(t, domain.TierLow, assignTier(10, 1, false))
}

func TestRanker_Rank_AssignsDenseRanks(t *testing.T) {
	r := NewRanker(StrategyBalanced)
	inputs := []RankInput{
		{Candidate: domain.RepurposingCandidate{DrugID: "A", DrugName: "Drug A", Phase: 4}, ScoreBreakdown: domain.ScoreBreakdown{CompositeScore: 90}, HasClinicalEvidence: true},
		{Candidate: domain.RepurposingCandidate{DrugID: "B", DrugName: "Drug B", Phase: 1}, ScoreBreakdown: domain.ScoreBreakdown{CompositeScore: 20}},
	}
	ranked := r.Rank(inputs, nil, 0)
	assert.Equal(t, 1, ranked[0].Rank)
	assert.Equal(t, 2, ranked[1].Rank)
	assert.Equal(t, "A", ranked[0].DrugID)
}

func TestRanker_Rank_RespectsTopN(t *testing.T) {
	r := NewRanker(StrategyScoreOnly)
	inputs := make([]RankInput, 5)
	for i := range inputs {
		inputs[i] = RankInput{Candidate: domain.RepurposingCandidate{DrugID: string(rune('A' + i))}, ScoreBreakdown: domain.ScoreBreakdown{CompositeScore: float64(i)}}
	}
	ranked := r.Rank(inputs, nil, 2)
	assert.Len(t, ranked, 2)
}
