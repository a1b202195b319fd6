package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHasCode(t *testing.T) {
	t.Run("direct error carries its code", func(t *testing.T) {
		err := New(CodeNotFound, "operation missing")
		assert.True(t, HasCode(err, CodeNotFound))
		assert.False(t, HasCode(err, CodeConflict))
	})

	t.Run("wrapped error keeps the outermost code", func(t *testing.T) {
		inner := New(CodeTimeout, "consent lookup timed out")
		outer := Wrap(inner, CodeForbidden, "consent not verified")
		assert.True(t, HasCode(outer, CodeForbidden))
	})

	t.Run("fmt wrapping is traversed", func(t *testing.T) {
		err := fmt.Errorf("pipeline: %w", New(CodeThrottled, "short window exhausted"))
		assert.True(t, HasCode(err, CodeThrottled))
	})

	t.Run("plain errors have no code", func(t *testing.T) {
		assert.False(t, HasCode(errors.New("boom"), CodeInternal))
	})
}

func TestReason(t *testing.T) {
	err := WithReason(CodeForbidden, "SCOPE_VIOLATION", "clinic mismatch")
	assert.True(t, HasReason(err, "SCOPE_VIOLATION"))
	assert.Equal(t, "SCOPE_VIOLATION", ReasonOf(err))
	assert.Equal(t, CodeForbidden, CodeOf(err))

	wrapped := fmt.Errorf("gate: %w", err)
	assert.True(t, HasReason(wrapped, "SCOPE_VIOLATION"))
}

func TestCodeOfDefaultsToInternal(t *testing.T) {
	require.Equal(t, CodeInternal, CodeOf(errors.New("disk on fire")))
	require.Empty(t, ReasonOf(errors.New("disk on fire")))
}

func TestUnwrapPreservesChain(t *testing.T) {
	sentinel := errors.New("row not found")
	err := Wrap(sentinel, CodeNotFound, "lookup failed")
	assert.ErrorIs(t, err, sentinel)
}
