package targets

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repurposectl/repurposectl/internal/collaborators"
	"github.com/repurposectl/repurposectl/internal/domain"
)

func TestTractabilityScore(t *testing.T) {
	assert.Equal(t, 1.0, tractabilityScore([]string{"Predicted", "Approved"}))
	assert.Equal(t, 0.7, tractabilityScore([]string{"Clinical"}))
	assert.Equal(t, 0.0, tractabilityScore(nil))
}

func TestMinMaxNormalize(t *testing.T) {
	out := minMaxNormalize([]float64{0, 5, 10})
	assert.Equal(t, []float64{0, 0.5, 1}, out)
}

func TestMinMaxNormalize_AllEqual(t *testing.T) {
	out := minMaxNormalize([]float64{3, 3, 3})
	assert.Equal(t, []float64{0.5, 0.5, 0.5}, out)
}

func TestJaccard(t *testing.T) {
	assert.InDelta(t, 0.5, jaccard([]string{"a", "b"}, []string{"b", "c"}), 1e-9)
	assert.Equal(t, 0.0, jaccard(nil, nil))
	assert.Equal(t, 0.0, jaccard([]string{"a"}, []string{"b"}))
}

func TestInferDiseasePathways_DedupesAndSortsOverTop20(t *testing.T) {
	candidates := make([]domain.Target, 25)
	for i := range candidates {
		candidates[i] = domain.Target{PathwayIDs: []string{"R-HSA-1"}}
	}
	candidates[24].PathwayIDs = []string{"R-HSA-999"} // outside top-20, must not appear
	out := inferDiseasePathways(candidates)
	assert.Equal(t, []string{"R-HSA-1"}, out)
}

func TestApplySafetyNet_MinimumFive(t *testing.T) {
	candidates := []domain.Target{
		{Symbol: "A", CompositeScore: 0.9},
		{Symbol: "B", CompositeScore: 0.8},
		{Symbol: "C", CompositeScore: 0.7},
		{Symbol: "D", CompositeScore: 0.6},
		{Symbol: "E", CompositeScore: 0.5},
		{Symbol: "F", CompositeScore: 0.1},
	}
	kept := applySafetyNet(candidates, func(t *domain.Target) { t.SafetyNetApplied = true })
	assert.Len(t, kept, 5)
	assert.Equal(t, "A", kept[0].Symbol)
}

func TestApplySafetyNet_TopHalfWhenLarger(t *testing.T) {
	candidates := make([]domain.Target, 20)
	for i := range candidates {
		candidates[i] = domain.Target{CompositeScore: float64(20 - i)}
	}
	kept := applySafetyNet(candidates, func(t *domain.Target) {})
	assert.Len(t, kept, 10)
}

func TestUniprotQualityScore(t *testing.T) {
	full := collaborators.UniProtEntry{Reviewed: true, HasFunction: true, HasDiseaseInvolvement: true}
	assert.Equal(t, 1.0, uniprotQualityScore(full))
	assert.Equal(t, 0.0, uniprotQualityScore(collaborators.UniProtEntry{}))
}
