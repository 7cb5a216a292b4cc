package domain

import "time"

// Citation carries explicit provenance for one piece of evidence.
type Citation struct {
	URL    string `json:"url"`
	Source string `json:"source"`
	Title  string `json:"title,omitempty"`
}

// TrialRecord is one clinical trial matched to a candidate or disease.
type TrialRecord struct {
	NCTID        string   `json:"nct_id"`
	Phase        int      `json:"phase"`
	Status       string   `json:"status"`
	LeadSponsor  string   `json:"lead_sponsor"`
	Interventions []string `json:"interventions"`
	Title        string   `json:"title"`
}

// TrialsOutput is the Clinical Trials aggregator's evidence container (§4.7).
type TrialsOutput struct {
	Disease          string                   `json:"disease"`
	TotalTrials       int                      `json:"total_trials"`
	PhaseBreakdown    map[int]int              `json:"phase_breakdown"`
	TopSponsors       []string                 `json:"top_sponsors"`
	CandidateTrials   map[string][]TrialRecord `json:"candidate_trials"`
	HighCompetition   bool                     `json:"high_competition"`
	Citations         []Citation               `json:"citations"`
}

// PatentRiskTier is a coarse freedom-to-operate signal.
type PatentRiskTier string

const (
	PatentRiskLow     PatentRiskTier = "LOW"
	PatentRiskMedium  PatentRiskTier = "MEDIUM"
	PatentRiskHigh    PatentRiskTier = "HIGH"
	PatentRiskUnknown PatentRiskTier = "UNKNOWN"
)

// PatentOutput is the per-candidate Patent Landscape aggregator result (§4.7).
type PatentOutput struct {
	DrugID    string         `json:"drug_id"`
	RiskTier  PatentRiskTier `json:"risk_tier"`
	Expired   bool           `json:"expired"`
	Notes     []string       `json:"notes"`
	Citations []Citation     `json:"citations"`
}

// SupplySignal is a coarse manufacturing-concentration signal.
type SupplySignal string

const (
	SupplyStrong   SupplySignal = "STRONG"
	SupplyModerate SupplySignal = "MODERATE"
	SupplyWeak     SupplySignal = "WEAK"
	SupplyUnknown  SupplySignal = "UNKNOWN"
)

// EximOutput is the per-candidate EXIM/Supply aggregator result (§4.7).
type EximOutput struct {
	DrugID    string       `json:"drug_id"`
	Signal    SupplySignal `json:"signal"`
	Countries []string     `json:"countries"`
	Citations []Citation   `json:"citations"`
}

// LiteratureOutput is the Literature aggregator's evidence container (§4.7).
type LiteratureOutput struct {
	Summary            string     `json:"summary"`
	SynthesizedTargets  []string   `json:"synthesized_targets"`
	CitationCounts      map[string]int `json:"citation_counts"`
	Citations           []Citation `json:"citations"`
	// Candidates seeds drug names discovered from literature ahead of the KG
	// stage, mirroring literature_node in the original orchestrator.
	Candidates []string `json:"candidates"`
}

// WebIntelOutput is the Web Intelligence aggregator's evidence container.
type WebIntelOutput struct {
	Summary    string     `json:"summary"`
	Candidates []string   `json:"candidates"`
	Citations  []Citation `json:"citations"`
	FetchedAt  time.Time  `json:"fetched_at"`
}
