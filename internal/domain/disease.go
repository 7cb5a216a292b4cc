package domain

// DiseaseContext is the output of the Disease Resolver: a disease name resolved
// to ontology identifiers, a therapeutic area, and derived classification flags.
//
// Invariant: once resolution succeeds, at least one of EFOID, MONDOID, MeSHID is
// non-empty. Immutable after construction; owned for the lifetime of one run.
type DiseaseContext struct {
	CanonicalLabel  string          `json:"canonical_label"`
	EFOID           string          `json:"efo_id,omitempty"`
	MONDOID         string          `json:"mondo_id,omitempty"`
	MeSHID          string          `json:"mesh_id,omitempty"`
	TherapeuticArea TherapeuticArea `json:"therapeutic_area"`

	IsCancer      bool `json:"is_cancer"`
	IsAutoimmune  bool `json:"is_autoimmune"`
	IsInfectious  bool `json:"is_infectious"`
	IsRare        bool `json:"is_rare"`
	IsGenetic     bool `json:"is_genetic"`

	Synonyms    []string `json:"synonyms"`
	ParentTerms []string `json:"parent_terms"`

	Confidence    float64 `json:"confidence"`
	OLSMatchScore float64 `json:"ols_match_score"`

	// SelectionRule records which branch of the best-match algorithm (§4.3 step 2)
	// produced CanonicalLabel/EFOID/MONDOID, for observability.
	SelectionRule string `json:"selection_rule,omitempty"`
}

// Resolved reports whether resolution produced at least one ontology identifier.
func (d *DiseaseContext) Resolved() bool {
	if d == nil {
		return false
	}
	return d.EFOID != "" || d.MONDOID != "" || d.MeSHID != ""
}
