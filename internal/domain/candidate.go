package domain

// RepurposingFeasibility is a coarse HIGH/MEDIUM/LOW label assigned per
// candidate by the Mechanistic Repurposing Engine (§4.6 step 7), distinct
// from the Ranker's Tier (assigned later, over the full evidence picture).
type RepurposingFeasibility string

const (
	FeasibilityHigh   RepurposingFeasibility = "HIGH"
	FeasibilityMedium RepurposingFeasibility = "MEDIUM"
	FeasibilityLow    RepurposingFeasibility = "LOW"
)

// RepurposingCandidate is a drug proposed for a new indication, built by the
// Mechanistic Repurposing Engine from a validated Target and that target's
// known-drugs list.
//
// Invariant: OriginalIndication does not equal (or substring-contain, or
// share >=2 long word tokens with) ProposedIndication at construction time;
// the repurposing filter (§4.6 step 3) runs before a candidate is built.
type RepurposingCandidate struct {
	DrugID   string `json:"drug_id"`
	DrugName string `json:"drug_name"`
	Phase    int    `json:"phase"`
	DrugType string `json:"drug_type"`

	MolecularTarget     string `json:"molecular_target"`
	OriginalIndication  string `json:"original_indication"`
	ProposedIndication  string `json:"proposed_indication"`
	MechanismOfAction   string `json:"mechanism_of_action"`

	MechanisticConfidence float64  `json:"mechanistic_confidence"`
	PathwayOverlapScore   float64  `json:"pathway_overlap_score"`
	SharedPathways        []string `json:"shared_pathways"`
	OpenTargetsScore      float64  `json:"opentargets_score"`
	ClinicalPhaseOriginal int      `json:"clinical_phase_original"`

	// MechanisticRationale is the deterministic narrative template built in
	// §4.6 step 4, explaining the mechanistic link between drug and disease.
	MechanisticRationale string `json:"mechanistic_rationale"`

	InVitroExperiments []string `json:"in_vitro_experiments"`
	InVivoExperiments  []string `json:"in_vivo_experiments"`
	Biomarkers         []string `json:"biomarkers"`

	SafetyConcerns    []string `json:"safety_concerns"`
	Contraindications []string `json:"contraindications"`
	PKConsiderations  []string `json:"pk_considerations"`

	NoveltyScore           float64                `json:"novelty_score"`
	RepurposingFeasibility RepurposingFeasibility `json:"repurposing_feasibility"`

	IsOral           bool `json:"is_oral"`
	IsBiologic       bool `json:"is_biologic"`
	HasKnownDosing   bool `json:"has_known_dosing"`
	PatentExpired    bool `json:"patent_expired"`
	YearsOnMarket    int  `json:"years_on_market"`
	MechanismKnown   bool `json:"mechanism_known"`

	// TherapeuticAreaMatch reports whether the drug's original therapeutic
	// area matches the query disease's area; false feeds the novelty score.
	TherapeuticAreaMatch bool `json:"therapeutic_area_match"`

	// CrossValidatedByGeneDrugDB reports whether an independent gene-drug
	// interaction database also lists this drug against the candidate's
	// molecular target, corroborating the target-association source.
	CrossValidatedByGeneDrugDB bool `json:"cross_validated_gene_drug_db,omitempty"`
}

// ScoreBreakdown is the transparent, weighted scoring result for one candidate (§4.8).
type ScoreBreakdown struct {
	CompositeScore    float64  `json:"composite_score"`
	NoveltyScore      float64  `json:"novelty_score"`
	ClinicalPhaseScore float64 `json:"clinical_phase_score"`
	EvidenceScore     float64  `json:"evidence_score"`
	MechanismScore    float64  `json:"mechanism_score"`
	SafetyScore       float64  `json:"safety_score"`
	Confidence        float64  `json:"confidence"`
	Reasoning         []string `json:"reasoning"`
	Flags             []string `json:"flags"`
}

// Tier is the ranker's coarse priority label.
type Tier string

const (
	TierHigh   Tier = "High Priority"
	TierMedium Tier = "Medium Priority"
	TierLow    Tier = "Low Priority"
)

// RankedCandidate is a RepurposingCandidate enriched with ranking output (§4.8).
//
// Invariant: within one run, ranks are dense and unique (1..N); FinalScore is
// monotonically non-increasing with Rank.
type RankedCandidate struct {
	RepurposingCandidate
	Rank              int     `json:"rank"`
	CompositeScore    float64 `json:"composite_score"`
	NoveltyScore      float64 `json:"novelty_score"`
	FeasibilityScore  float64 `json:"feasibility_score"`
	FinalScore        float64 `json:"final_score"`
	Tier              Tier    `json:"tier"`
	Recommendation    string  `json:"recommendation"`
}
