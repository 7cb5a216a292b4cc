package domain

import "time"

// RunStatus is the lifecycle status of a pipeline run.
type RunStatus string

const (
	RunQueued    RunStatus = "QUEUED"
	RunRunning   RunStatus = "RUNNING"
	RunSucceeded RunStatus = "SUCCEEDED"
	RunFailed    RunStatus = "FAILED"
)

// RunMetadata is the small, frequently-read summary of a run, mutated only
// by the Run Store.
type RunMetadata struct {
	RunID        string     `json:"run_id"`
	Indication   string     `json:"indication"`
	Geography    string     `json:"geography"`
	CreatedAt    time.Time  `json:"created_at"`
	StartedAt    *time.Time `json:"started_at,omitempty"`
	CompletedAt  *time.Time `json:"completed_at,omitempty"`
	Status       RunStatus  `json:"status"`
	ErrorMessage string     `json:"error_message,omitempty"`
	ReportPath   string     `json:"report_path,omitempty"`
}

// FinalRecommendation wraps the ranked candidate list with run-level
// summary statistics, built by rank_and_select (§4.10).
type FinalRecommendation struct {
	RankedCandidates         []RankedCandidate `json:"ranked_candidates"`
	TotalCandidatesEvaluated int               `json:"total_candidates_evaluated"`
	CandidatesAfterFiltering int               `json:"candidates_after_filtering"`
	ConfidenceLevel          string            `json:"confidence_level"`
	NextActions              []string          `json:"next_actions"`
}

// DefaultNextActions is the static follow-up list used when a recommendation
// is produced, grounded on rank_and_select_node in the original orchestrator.
var DefaultNextActions = []string{
	"Review top-tier candidates with a clinical pharmacology panel",
	"Commission in vitro validation for High Priority candidates",
	"Cross-check patent and supply signals before committing budget",
	"Re-run with loosened criteria if candidate count is below expectations",
}

// RouteAState is the full typed snapshot of one run, persisted by the Run
// Store at every stage boundary. The Orchestrator exclusively owns this
// value for a given run_id; agents receive read-only views plus a single
// write slot for their own output.
type RouteAState struct {
	RunID      string `json:"run_id"`
	Indication string `json:"indication"`
	Geography  string `json:"geography"`

	MinPhase          *int `json:"min_phase,omitempty"`
	OralOnly          bool `json:"oral_only"`
	ExcludeBiologics  bool `json:"exclude_biologics"`
	StrictFTO         bool `json:"strict_fto"`

	DiseaseID       *string  `json:"disease_id,omitempty"`
	DiseaseSynonyms []string `json:"disease_synonyms,omitempty"`
	Disease         *DiseaseContext `json:"disease,omitempty"`

	WebIntelOutput   *WebIntelOutput   `json:"web_intel_output,omitempty"`
	LiteratureOutput *LiteratureOutput `json:"literature_output,omitempty"`

	Targets           []Target `json:"targets,omitempty"`
	DiseasePathwayIDs []string `json:"disease_pathway_ids,omitempty"`

	Candidates []RepurposingCandidate `json:"candidates,omitempty"`

	TrialsOutput  *TrialsOutput           `json:"trials_output,omitempty"`
	PatentOutputs map[string]PatentOutput `json:"patent_outputs,omitempty"`
	EximOutputs   map[string]EximOutput   `json:"exim_outputs,omitempty"`

	Recommendation *FinalRecommendation `json:"recommendation,omitempty"`

	CreatedAt   time.Time  `json:"created_at"`
	StartedAt   *time.Time `json:"started_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	Status      RunStatus  `json:"status"`
	ErrorMessage string    `json:"error_message,omitempty"`

	ReportPath string `json:"report_path,omitempty"`
	ReportURL  string `json:"report_url,omitempty"`

	// ExpandSearchInvoked records whether expand_search ran, so a re-entrant
	// orchestrator does not invoke it a second time for the same run.
	ExpandSearchInvoked bool `json:"expand_search_invoked,omitempty"`
}
