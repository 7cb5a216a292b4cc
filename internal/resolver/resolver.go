// Package resolver implements the Disease Resolver (§4.3): maps a
// free-text disease name to a domain.DiseaseContext carrying ontology IDs,
// a therapeutic area, and derived classification flags.
//
// Grounded on original_source/kg/disease_resolver_v2.py's best-match
// selection algorithm and collaborator-composition idiom in
// pkg/external/interfaces.go (failover across sources, single return type).
package resolver

import (
	"context"
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/domain"
	"github.com/repurposectl/repurposectl/internal/taxonomy"
)

const fuzzyThreshold = 0.85

// ontologyScope restricts the ontology search to disease-relevant vocabularies.
var ontologyScope = []string{"efo", "mondo"}

// Resolver implements the 7-step disease resolution algorithm of §4.3.
type Resolver struct {
	ontology *collaborators.OntologyClient
	mesh     *collaborators.MeSHClient
	xref     *collaborators.XrefClient
	log      *logrus.Logger
}

func New(ontology *collaborators.OntologyClient, mesh *collaborators.MeSHClient, xref *collaborators.XrefClient, log *logrus.Logger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{ontology: ontology, mesh: mesh, xref: xref, log: log}
}

// Resolve maps diseaseName to a DiseaseContext. It never returns an error for
// "no match found" — an unresolved disease yields a DiseaseContext with
// CanonicalLabel set to the input and all ID fields empty; callers check
// Resolved() to detect that case, per §4.3's "no hard failure on
// resolution miss" design note.
func (r *Resolver) Resolve(ctx context.Context, diseaseName string) *domain.DiseaseContext {
	trimmed := strings.TrimSpace(diseaseName)

	// Step 1: restricted ontology search.
	hits := r.ontology.Search(ctx, trimmed, ontologyScope, 25)

	// Step 2: 5-branch best-match selection, in priority order.
	best, rule, ok := selectBestMatch(trimmed, hits)

	var mesh collaborators.MeSHTerm
	var meshOK bool
	var ancestors []string

	// Step 3 + step 4 run concurrently: MeSH lookup is independent of the
	// ontology-parent fetch, both independent of each other.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		mesh, meshOK = r.mesh.Lookup(ctx, trimmed)
	}()
	if ok && best.IRI != "" {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ancestors = r.ontology.Ancestors(ctx, best.IRI)
		}()
	}
	wg.Wait()

	dc := &domain.DiseaseContext{
		CanonicalLabel: trimmed,
		Synonyms:       []string{},
		ParentTerms:    []string{},
		Confidence:     1.0,
	}

	if ok {
		dc.CanonicalLabel = best.Label
		dc.EFOID = ontologyID(best, "efo")
		dc.MONDOID = ontologyID(best, "mondo")
		dc.Synonyms = append(dc.Synonyms, best.Synonyms...)
		dc.OLSMatchScore = best.Score
		dc.SelectionRule = rule
	}
	if meshOK {
		dc.MeSHID = mesh.DescriptorUI
	}
	dc.ParentTerms = ancestors

	// Step 4b: backfill the sibling ontology ID via cross-reference when the
	// ontology search only resolved one of EFO/MONDO for this term.
	if r.xref != nil {
		if dc.EFOID != "" && dc.MONDOID == "" {
			if xrefs := r.xref.Resolve(ctx, dc.EFOID); xrefs["mondo"] != "" {
				dc.MONDOID = xrefs["mondo"]
			}
		} else if dc.MONDOID != "" && dc.EFOID == "" {
			if xrefs := r.xref.Resolve(ctx, dc.MONDOID); xrefs["efo"] != "" {
				dc.EFOID = xrefs["efo"]
			}
		}
	}

	// Step 5: therapeutic-area classification.
	var treeNumbers []string
	if meshOK {
		treeNumbers = mesh.TreeNumbers
	}
	dc.TherapeuticArea = taxonomy.Classify(dc.CanonicalLabel, treeNumbers, dc.ParentTerms)

	// Step 6: boolean disease-flag extraction.
	applyFlags(dc)

	if !dc.Resolved() {
		dc.Confidence = 0
		r.log.WithField("disease", trimmed).Warn("disease resolution produced no ontology match")
	}

	return dc
}

// ontologyID extracts the term's own ID when its OntologyName matches want
// (case-insensitive); "" otherwise.
func ontologyID(t collaborators.OntologyTerm, want string) string {
	if strings.EqualFold(t.OntologyName, want) {
		return t.OntologyID
	}
	return ""
}

// selectBestMatch runs the 5-branch priority chain: exact normalized label,
// exact normalized synonym, fuzzy label similarity (>0.85), highest-scoring
// MONDO doc, highest-scoring doc overall. First branch with any candidate
// wins; within a branch ties are broken by the input order of hits (the
// ontology service's own relevance ranking).
func selectBestMatch(query string, hits []collaborators.OntologyTerm) (collaborators.OntologyTerm, string, bool) {
	if len(hits) == 0 {
		return collaborators.OntologyTerm{}, "", false
	}
	normQuery := normalize(query)

	for _, h := range hits {
		if normalize(h.Label) == normQuery {
			return h, "exact_label", true
		}
	}
	for _, h := range hits {
		for _, syn := range h.Synonyms {
			if normalize(syn) == normQuery {
				return h, "exact_synonym", true
			}
		}
	}
	bestRatio := 0.0
	bestIdx := -1
	for i, h := range hits {
		score := ratio(normQuery, normalize(h.Label))
		if score > bestRatio {
			bestRatio = score
			bestIdx = i
		}
	}
	if bestIdx >= 0 && bestRatio > fuzzyThreshold {
		return hits[bestIdx], "fuzzy_label", true
	}
	mondoIdx := -1
	mondoScore := -1.0
	for i, h := range hits {
		if strings.EqualFold(h.OntologyName, "mondo") && h.Score > mondoScore {
			mondoScore = h.Score
			mondoIdx = i
		}
	}
	if mondoIdx >= 0 {
		return hits[mondoIdx], "best_mondo", true
	}
	topIdx := 0
	topScore := hits[0].Score
	for i, h := range hits {
		if h.Score > topScore {
			topScore = h.Score
			topIdx = i
		}
	}
	return hits[topIdx], "best_overall", true
}
