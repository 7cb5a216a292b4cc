package scoring

import (
	"fmt"
	"math"
	"sort"

	"github.com/repurposectl/repurposectl/internal/domain"
)

// Strategy selects how the Ranker blends composite/novelty/feasibility into
// a final score (§4.8).
type Strategy string

const (
	StrategyScoreOnly       Strategy = "score_only"
	StrategyBalanced        Strategy = "balanced"
	StrategyNoveltyFocused  Strategy = "novelty_focused"
	StrategyClinicalFocused Strategy = "clinical_focused"
)

// RankInput is one candidate plus the facts the Ranker's novelty/
// feasibility heuristics need, beyond what ScoreBreakdown already carries.
type RankInput struct {
	Candidate           domain.RepurposingCandidate
	ScoreBreakdown      domain.ScoreBreakdown
	HasClinicalEvidence bool
	MechanismUnexpected bool
}

// Ranker assigns final scores, tiers, and dense ranks to a candidate set.
type Ranker struct {
	strategy Strategy
}

func NewRanker(strategy Strategy) *Ranker {
	if strategy == "" {
		strategy = StrategyBalanced
	}
	return &Ranker{strategy: strategy}
}

func calculateNoveltyScore(in RankInput, knownDrugsForDisease map[string]struct{}) float64 {
	score := 0.0
	if !in.Candidate.TherapeuticAreaMatch {
		score += 40
	}
	if !in.HasClinicalEvidence {
		score += 30
	}
	if knownDrugsForDisease != nil {
		if _, known := knownDrugsForDisease[in.Candidate.DrugID]; !known {
			score += 20
		}
	}
	if in.MechanismUnexpected {
		score += 20
	}
	if in.Candidate.YearsOnMarket > 0 && in.Candidate.YearsOnMarket < 5 {
		score += 10
	}
	return math.Min(score, 100)
}

func calculateFeasibilityScore(in RankInput) float64 {
	score := 0.0
	switch {
	case in.Candidate.Phase == 4:
		score += 40
	case in.Candidate.Phase >= 3:
		score += 30
	case in.Candidate.Phase >= 2:
		score += 20
	}
	if in.Candidate.IsOral {
		score += 20
	}
	switch {
	case in.ScoreBreakdown.SafetyScore >= 90:
		score += 20
	case in.ScoreBreakdown.SafetyScore >= 70:
		score += 15
	case in.ScoreBreakdown.SafetyScore >= 50:
		score += 10
	}
	if in.Candidate.PatentExpired {
		score += 10
	}
	if in.Candidate.HasKnownDosing {
		score += 10
	}
	return math.Min(score, 100)
}

func (r *Ranker) calculateFinalScore(composite, novelty, feasibility float64) float64 {
	switch r.strategy {
	case StrategyScoreOnly:
		return composite
	case StrategyNoveltyFocused:
		return composite*0.4 + novelty*0.4 + feasibility*0.2
	case StrategyClinicalFocused:
		return composite*0.5 + novelty*0.1 + feasibility*0.4
	default: // StrategyBalanced
		return composite*0.6 + novelty*0.2 + feasibility*0.2
	}
}

func assignTier(final float64, phase int, hasClinicalEvidence bool) domain.Tier {
	if final >= 70 {
		return domain.TierHigh
	}
	if phase == 4 && hasClinicalEvidence {
		return domain.TierHigh
	}
	if final >= 50 {
		return domain.TierMedium
	}
	if phase >= 3 {
		return domain.TierMedium
	}
	return domain.TierLow
}

func generateRecommendation(drugName string, tier domain.Tier, phase int, novelty, feasibility float64) string {
	switch tier {
	case domain.TierHigh:
		if phase == 4 {
			return fmt.Sprintf("%s: strong repurposing candidate (approved drug); recommend literature review and pilot study design.", drugName)
		}
		return fmt.Sprintf("%s: high-confidence candidate; recommend detailed mechanism investigation and feasibility assessment.", drugName)
	case domain.TierMedium:
		if novelty >= 70 {
			return fmt.Sprintf("%s: novel candidate with interesting mechanism; recommend pathway analysis and computational validation.", drugName)
		}
		return fmt.Sprintf("%s: moderate evidence; recommend additional validation before clinical consideration.", drugName)
	default:
		if feasibility < 30 {
			return fmt.Sprintf("%s: low feasibility for repurposing; consider for basic research only.", drugName)
		}
		return fmt.Sprintf("%s: insufficient evidence at this time; monitor for emerging data.", drugName)
	}
}

// Rank scores, sorts, tiers, and dense-ranks inputs, returning at most topN
// candidates (topN <= 0 returns all).
func (r *Ranker) Rank(inputs []RankInput, knownDrugsForDisease map[string]struct{}, topN int) []domain.RankedCandidate {
	ranked := make([]domain.RankedCandidate, 0, len(inputs))
	for _, in := range inputs {
		novelty := calculateNoveltyScore(in, knownDrugsForDisease)
		feasibility := calculateFeasibilityScore(in)
		final := r.calculateFinalScore(in.ScoreBreakdown.CompositeScore, novelty, feasibility)
		tier := assignTier(final, in.Candidate.Phase, in.HasClinicalEvidence)
		recommendation := generateRecommendation(in.Candidate.DrugName, tier, in.Candidate.Phase, novelty, feasibility)

		rc := domain.RankedCandidate{
			RepurposingCandidate: in.Candidate,
			CompositeScore:       in.ScoreBreakdown.CompositeScore,
			NoveltyScore:         novelty,
			FeasibilityScore:     feasibility,
			FinalScore:           final,
			Tier:                 tier,
			Recommendation:       recommendation,
		}
		ranked = append(ranked, rc)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].FinalScore > ranked[j].FinalScore
	})
	for i := range ranked {
		ranked[i].Rank = i + 1
	}

	if topN > 0 && topN < len(ranked) {
		ranked = ranked[:topN]
	}
	return ranked
}
