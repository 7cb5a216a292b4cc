package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Error(t *testing.T) {
	tests := []struct {
		name string
		err  *Error
		want string
	}{
		{
			name: "without cause",
			err:  NewValidationError("indication is required"),
			want: "VALIDATION_ERROR: indication is required",
		},
		{
			name: "with cause",
			err:  NewCollaboratorUnavailableError("ontology", errors.New("timeout")),
			want: "COLLABORATOR_UNAVAILABLE: collaborator \"ontology\" unavailable: timeout",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestCodeOf(t *testing.T) {
	base := NewResolutionFailedError("gloop fever")
	wrapped := fmt.Errorf("normalize_input: %w", base)

	code, ok := CodeOf(wrapped)
	assert.True(t, ok)
	assert.Equal(t, ErrResolutionFailed, code)

	_, ok = CodeOf(errors.New("plain error"))
	assert.False(t, ok)
}
