package repurposing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSameIndication_EmptyIndicationKept(t *testing.T) {
	assert.False(t, isSameIndication("", "type 2 diabetes", nil))
}

func TestIsSameIndication_SubstringMatch(t *testing.T) {
	assert.True(t, isSameIndication("Treatment of type 2 diabetes mellitus", "type 2 diabetes", nil))
}

func TestIsSameIndication_WordOverlapMatch(t *testing.T) {
	assert.True(t, isSameIndication("chronic plaque psoriasis in adults", "psoriasis plaque disease", nil))
}

func TestIsSameIndication_SynonymMatch(t *testing.T) {
	assert.True(t, isSameIndication("relief of adult onset diabetes symptoms", "t2dm", []string{"adult onset diabetes"}))
}

func TestIsSameIndication_UnrelatedKept(t *testing.T) {
	assert.False(t, isSameIndication("treatment of acne vulgaris", "non-small cell lung cancer", nil))
}

func TestDerivePhase(t *testing.T) {
	two := 2
	three := 3
	assert.Equal(t, 3, derivePhase(&two, &three))
	assert.Equal(t, 0, derivePhase(nil, nil))
	assert.Equal(t, 4, derivePhase(nil, intPtr(9)))
}

func intPtr(v int) *int { return &v }
