package apierr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIs_MatchesWrappedKind(t *testing.T) {
	err := fmt.Errorf("reading file: %w", NotFound("File"))
	assert.True(t, Is(err, KindResourceNotFound))
	assert.False(t, Is(err, KindConflict))
}

func TestIs_FalseForPlainError(t *testing.T) {
	assert.False(t, Is(errors.New("boom"), KindInternal))
}

func TestInternal_UnwrapsToCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := Internal("connecting to database", cause)

	assert.Equal(t, KindInternal, err.Kind)
	assert.ErrorIs(t, err, cause)
}

func TestNotFound_MessageNamesResourceType(t *testing.T) {
	err := NotFound("FileVersion")
	assert.Equal(t, "FileVersion not found", err.Message)
	assert.Equal(t, KindResourceNotFound, err.Kind)
}
