package taxonomy

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/repurposectl/repurposectl/internal/domain"
)

func TestFromMeSHTreeNumbers(t *testing.T) {
	tag, ok := FromMeSHTreeNumbers([]string{"C04.588.443"})
	assert.True(t, ok)
	assert.Equal(t, domain.AreaOncology, tag)
}

func TestFromMeSHTreeNumbers_PriorityBreaksAmbiguity(t *testing.T) {
	tag, ok := FromMeSHTreeNumbers([]string{"C18.452.394", "C04.588"})
	assert.True(t, ok)
	assert.Equal(t, domain.AreaOncology, tag, "oncology root outranks metabolic per priority table")
}

func TestFromMeSHTreeNumbers_NoMatch(t *testing.T) {
	_, ok := FromMeSHTreeNumbers([]string{"Z01.999"})
	assert.False(t, ok)
}

func TestFromOntologyAncestors(t *testing.T) {
	tag, ok := FromOntologyAncestors([]string{"disease", "immune system disease"})
	assert.True(t, ok)
	assert.Equal(t, domain.AreaImmunological, tag)
}

func TestFromKeywords(t *testing.T) {
	assert.Equal(t, domain.AreaOncology, FromKeywords("metastatic breast cancer"))
	assert.Equal(t, domain.AreaNeurological, FromKeywords("early-onset Alzheimer disease"))
	assert.Equal(t, domain.AreaUnknown, FromKeywords("unclassifiable condition xyz"))
}

func TestClassify_PrefersMeSHOverKeywords(t *testing.T) {
	tag := Classify("some rare metabolic-sounding name", []string{"C04.588"}, nil)
	assert.Equal(t, domain.AreaOncology, tag)
}

func TestClassify_FallsBackToKeywords(t *testing.T) {
	tag := Classify("chronic asthma exacerbation", nil, nil)
	assert.Equal(t, domain.AreaRespiratory, tag)
}
