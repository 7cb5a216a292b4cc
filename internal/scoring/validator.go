// Package scoring implements the Evidence Validator, Scoring Engine, and
// Ranker of §4.8.
//
// Grounded on original_source/kg/scoring_engine.py (ScoringWeights,
// score_clinical_phase/score_evidence_strength/score_mechanism_overlap/
// score_safety_profile/score_repurposing_novelty/calculate_composite_score)
// and original_source/kg/candidate_ranker.py (CandidateRanker's
// novelty/feasibility/final-score/tier/recommendation logic), plus
// internal/service/acmg_rule_engine.go for the
// decision+confidence+reasoning+flags return shape.
package scoring

import "github.com/repurposectl/repurposectl/internal/domain"

// Validator exposes validate_target and validate_drug (§4.8).
type Validator struct{}

func NewValidator() *Validator { return &Validator{} }

// ValidateTarget implements §4.8's target validation rule.
func (v *Validator) ValidateTarget(openTargetsScore float64, evidenceCount int, pathwayOverlap, literatureCount *float64) domain.ValidationResult {
	var flags []string
	if evidenceCount < 1 {
		flags = append(flags, "single_source")
	}
	if pathwayOverlap != nil && *pathwayOverlap < 0.05 {
		flags = append(flags, "low_pathway_overlap")
	}

	confidence := minFloat(1, 1.2*openTargetsScore)
	if evidenceCount >= 3 {
		confidence += 0.1
	}
	if pathwayOverlap != nil && *pathwayOverlap > 0.1 {
		confidence += 0.1
	}
	confidence = clamp01(confidence)

	decision := domain.DecisionKeep
	reasoning := "target association and evidence support retention"
	switch {
	case openTargetsScore < 0.2:
		decision = domain.DecisionReject
		reasoning = "open targets association score below minimum threshold"
	case confidence < 0.5:
		decision = domain.DecisionReview
		reasoning = "composite confidence below review threshold"
	}

	return domain.ValidationResult{Decision: decision, Confidence: confidence, Reasoning: reasoning, Flags: flags}
}

// ValidateDrug implements §4.8's drug validation rule.
func (v *Validator) ValidateDrug(phase int, hasClinicalEvidence, mechanismKnown bool, safetyFlags []string) domain.ValidationResult {
	confidence := 0.5 + 0.1*float64(phase)
	if hasClinicalEvidence {
		confidence += 0.2
	}
	if mechanismKnown {
		confidence += 0.1
	}
	confidence = clamp01(confidence)

	decision := domain.DecisionKeep
	reasoning := "clinical phase and evidence support repurposing consideration"
	switch {
	case phase < 1 && !hasClinicalEvidence:
		decision = domain.DecisionReject
		reasoning = "no clinical phase progress and no supporting clinical evidence"
	case confidence < 0.3:
		decision = domain.DecisionReject
		reasoning = "composite confidence below reject threshold"
	case confidence < 0.6:
		decision = domain.DecisionReview
		reasoning = "composite confidence below review threshold"
	}

	return domain.ValidationResult{Decision: decision, Confidence: confidence, Reasoning: reasoning, Flags: safetyFlags}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func minFloat(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
