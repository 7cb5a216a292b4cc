package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/domain"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "crohns disease", normalize("Crohn's  Disease"))
	assert.Equal(t, "non small cell lung cancer", normalize("Non-Small-Cell Lung Cancer"))
}

func TestRatio(t *testing.T) {
	assert.Equal(t, 1.0, ratio("abc", "abc"))
	assert.Equal(t, 0.0, ratio("abc", "xyz"))
	assert.InDelta(t, 0.8, ratio("myeloma", "melanoma"), 0.05)
}

func TestSelectBestMatch_ExactLabel(t *testing.T) {
	hits := []collaborators.OntologyTerm{
		{Label: "Asthma", OntologyName: "efo", OntologyID: "EFO:0000270", Score: 10},
		{Label: "Severe Asthma", OntologyName: "efo", OntologyID: "EFO:0009688", Score: 20},
	}
	best, rule, ok := selectBestMatch("asthma", hits)
	assert.True(t, ok)
	assert.Equal(t, "exact_label", rule)
	assert.Equal(t, "Asthma", best.Label)
}

func TestSelectBestMatch_ExactSynonym(t *testing.T) {
	hits := []collaborators.OntologyTerm{
		{Label: "Type 2 Diabetes Mellitus", OntologyName: "mondo", OntologyID: "MONDO:0005148", Synonyms: []string{"T2DM", "adult-onset diabetes"}, Score: 5},
	}
	best, rule, ok := selectBestMatch("adult onset diabetes", hits)
	assert.True(t, ok)
	assert.Equal(t, "exact_synonym", rule)
	assert.Equal(t, "MONDO:0005148", best.OntologyID)
}

func TestSelectBestMatch_FuzzyLabel(t *testing.T) {
	hits := []collaborators.OntologyTerm{
		{Label: "Amyotrophic lateral sclerosis", OntologyName: "mondo", OntologyID: "MONDO:0004976", Score: 9},
	}
	_, rule, ok := selectBestMatch("amyotrophic lateral sclerosis disease", hits)
	assert.True(t, ok)
	assert.Equal(t, "fuzzy_label", rule)
}

func TestSelectBestMatch_BestMondoOverLowerScoreNonMondo(t *testing.T) {
	hits := []collaborators.OntologyTerm{
		{Label: "some unrelated efo term", OntologyName: "efo", OntologyID: "EFO:9999999", Score: 50},
		{Label: "another unrelated mondo term", OntologyName: "mondo", OntologyID: "MONDO:1111111", Score: 3},
	}
	best, rule, ok := selectBestMatch("completely different query string", hits)
	assert.True(t, ok)
	assert.Equal(t, "best_mondo", rule)
	assert.Equal(t, "MONDO:1111111", best.OntologyID)
}

func TestSelectBestMatch_NoHits(t *testing.T) {
	_, _, ok := selectBestMatch("anything", nil)
	assert.False(t, ok)
}

func TestApplyFlags(t *testing.T) {
	dc := &domain.DiseaseContext{
		CanonicalLabel: "Non-small cell lung cancer",
		ParentTerms:    []string{"Neoplasm", "Respiratory system disease"},
	}
	applyFlags(dc)
	assert.True(t, dc.IsCancer)
	assert.False(t, dc.IsAutoimmune)
	assert.False(t, dc.IsInfectious)
	assert.False(t, dc.IsRare)
	assert.False(t, dc.IsGenetic)
}

func TestApplyFlags_Genetic(t *testing.T) {
	dc := &domain.DiseaseContext{
		CanonicalLabel: "Cystic fibrosis",
		ParentTerms:    []string{"Inherited metabolic disorder", "Rare genetic disease"},
	}
	applyFlags(dc)
	assert.True(t, dc.IsGenetic)
	assert.True(t, dc.IsRare)
	assert.False(t, dc.IsCancer)
}
