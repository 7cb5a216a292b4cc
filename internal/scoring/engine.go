package scoring

import (
	"fmt"
	"math"
	"strings"

	"github.com/repurposectl/repurposectl/internal/domain"
)

// Weights are the Scoring Engine's sub-scorer weights; must sum to 1.0,
// validated at construction (§4.8).
type Weights struct {
	ClinicalPhase float64
	Evidence      float64
	Mechanism     float64
	Safety        float64
	Novelty       float64
}

// DefaultWeights are §4.8's weights.
var DefaultWeights = Weights{
	ClinicalPhase: 0.35,
	Evidence:      0.25,
	Mechanism:     0.20,
	Safety:        0.10,
	Novelty:       0.10,
}

// CandidateFacts is the scoring engine's input: the subset of a
// RepurposingCandidate (plus evidence-aggregator outputs) the sub-scorers
// need.
type CandidateFacts struct {
	Phase                   int
	HasClinicalEvidence     bool
	OpenTargetsScore        float64
	EvidenceCount           int
	LiteratureCount         *int
	PathwayOverlap          *float64
	HasKnownMechanism       bool
	TargetDruggability      *string
	HasBlackBoxWarning      bool
	HasSeriousAdverseEvents bool
	WithdrawalHistory       bool
	YearsOnMarket           *int
	RepurposingNovelty      *float64
	OriginalIndication      string
}

// Engine is the multi-factor composite Scoring Engine.
type Engine struct {
	weights Weights
}

// New constructs a Scoring Engine, panicking if weights don't sum to ~1.0 —
// mirrors original_source/kg/scoring_engine.py's ScoringWeights.__post_init__
// validation, which raises at construction rather than at score time.
func New(weights Weights) *Engine {
	total := weights.ClinicalPhase + weights.Evidence + weights.Mechanism + weights.Safety + weights.Novelty
	if math.Abs(total-1.0) > 0.01 {
		panic(fmt.Sprintf("scoring weights must sum to 1.0, got %.3f", total))
	}
	return &Engine{weights: weights}
}

func scoreClinicalPhase(phase int) float64 {
	switch phase {
	case 0:
		return 10
	case 1:
		return 30
	case 2:
		return 50
	case 3:
		return 70
	case 4:
		return 100
	default:
		return 10
	}
}

func scoreEvidenceStrength(hasClinicalEvidence bool, openTargetsScore float64, evidenceCount int, literatureCount *int) float64 {
	score := 0.0
	if hasClinicalEvidence {
		score += 40
	}
	score += openTargetsScore * 30
	score += math.Min(float64(evidenceCount)*5, 20)
	if literatureCount != nil {
		score += literatureBucket(*literatureCount)
	}
	return math.Min(score, 100)
}

func literatureBucket(count int) float64 {
	switch {
	case count >= 100:
		return 10
	case count >= 50:
		return 8
	case count >= 20:
		return 6
	case count >= 10:
		return 4
	case count >= 5:
		return 2
	default:
		return 0
	}
}

func scoreMechanismOverlap(openTargetsScore float64, pathwayOverlap *float64, hasKnownMechanism bool, targetDruggability *string) float64 {
	score := openTargetsScore * 40

	switch {
	case pathwayOverlap == nil:
		score += 10
	case *pathwayOverlap > 0.15:
		score += *pathwayOverlap * 30
	default:
		score += 5
	}

	if hasKnownMechanism {
		score += 15
	}

	score += druggabilityBucket(targetDruggability)

	return math.Min(score, 100)
}

func druggabilityBucket(tier *string) float64 {
	if tier == nil {
		return 0
	}
	switch *tier {
	case "Tier 1":
		return 15
	case "Tier 2":
		return 10
	case "Tier 3":
		return 5
	default:
		return 2
	}
}

func scoreSafetyProfile(hasBlackBox, hasSeriousAE, withdrawalHistory bool, yearsOnMarket *int) float64 {
	score := 100.0
	if hasBlackBox {
		score -= 30
	}
	if hasSeriousAE {
		score -= 20
	}
	if withdrawalHistory {
		score -= 40
	}
	if yearsOnMarket != nil && *yearsOnMarket >= 10 {
		score = math.Min(score+10, 100)
	}
	return math.Max(score, 0)
}

func scoreRepurposingNovelty(repurposingNovelty *float64, originalIndication string) float64 {
	if repurposingNovelty != nil {
		return math.Min(*repurposingNovelty, 100)
	}
	if originalIndication != "" {
		return 70
	}
	return 50
}

// Score computes the full weighted ScoreBreakdown for one candidate.
func (e *Engine) Score(c CandidateFacts) domain.ScoreBreakdown {
	novelty := scoreRepurposingNovelty(c.RepurposingNovelty, c.OriginalIndication)
	clinical := scoreClinicalPhase(c.Phase)
	evidence := scoreEvidenceStrength(c.HasClinicalEvidence, c.OpenTargetsScore, c.EvidenceCount, c.LiteratureCount)
	mechanism := scoreMechanismOverlap(c.OpenTargetsScore, c.PathwayOverlap, c.HasKnownMechanism, c.TargetDruggability)
	safety := scoreSafetyProfile(c.HasBlackBoxWarning, c.HasSeriousAdverseEvents, c.WithdrawalHistory, c.YearsOnMarket)

	composite := novelty*e.weights.Novelty +
		clinical*e.weights.ClinicalPhase +
		mechanism*e.weights.Mechanism +
		evidence*e.weights.Evidence +
		safety*e.weights.Safety

	present := 0
	if c.HasClinicalEvidence {
		present++
	}
	if c.PathwayOverlap != nil {
		present++
	}
	if c.LiteratureCount != nil {
		present++
	}
	if c.TargetDruggability != nil {
		present++
	}
	if c.RepurposingNovelty != nil {
		present++
	}
	dataCompleteness := float64(present) / 5.0
	confidence := 0.5 + dataCompleteness*0.5

	var reasonParts []string
	if novelty >= 80 {
		reasonParts = append(reasonParts, "high repurposing novelty")
	}
	if clinical >= 70 {
		reasonParts = append(reasonParts, "strong clinical data")
	}
	if mechanism >= 60 {
		reasonParts = append(reasonParts, "good mechanistic rationale")
	}
	if evidence >= 70 {
		reasonParts = append(reasonParts, "robust evidence")
	}
	if safety < 70 {
		reasonParts = append(reasonParts, "some safety concerns")
	}
	reasoning := fmt.Sprintf("composite score %.1f/100", composite)
	if len(reasonParts) > 0 {
		reasoning += " based on: " + strings.Join(reasonParts, ", ")
	}

	var flags []string
	if novelty < 50 {
		flags = append(flags, "low_novelty")
	}
	if clinical < 30 {
		flags = append(flags, "early_stage")
	}
	if evidence < 40 {
		flags = append(flags, "weak_evidence")
	}
	if safety < 60 {
		flags = append(flags, "safety_concerns")
	}
	if confidence < 0.7 {
		flags = append(flags, "incomplete_data")
	}

	return domain.ScoreBreakdown{
		CompositeScore:     composite,
		NoveltyScore:       novelty,
		ClinicalPhaseScore: clinical,
		EvidenceScore:      evidence,
		MechanismScore:     mechanism,
		SafetyScore:        safety,
		Confidence:         confidence,
		Reasoning:          []string{reasoning},
		Flags:              flags,
	}
}
