package secrets

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "unitgate/pkg/domain-errors"
)

func TestGenerate(t *testing.T) {
	a, err := Generate()
	require.NoError(t, err)
	b, err := Generate()
	require.NoError(t, err)

	assert.Len(t, a, 16)
	assert.Equal(t, strings.ToUpper(a), a)
	assert.NotEqual(t, a, b)
}

func TestHasher(t *testing.T) {
	h, err := NewHasher([]byte("family-code-key"))
	require.NoError(t, err)

	t.Run("deterministic and case-insensitive", func(t *testing.T) {
		d1, err := h.Hash("abcd1234")
		require.NoError(t, err)
		d2, err := h.Hash(" ABCD1234 ")
		require.NoError(t, err)
		assert.Equal(t, d1, d2)
		assert.Len(t, d1, 64)
	})

	t.Run("keyed", func(t *testing.T) {
		other, err := NewHasher([]byte("another-key"))
		require.NoError(t, err)
		d1, _ := h.Hash("ABCD1234")
		d2, _ := other.Hash("ABCD1234")
		assert.NotEqual(t, d1, d2)
	})

	t.Run("verify", func(t *testing.T) {
		digest, err := h.Hash("ABCD1234")
		require.NoError(t, err)
		assert.NoError(t, h.Verify("abcd1234", digest))
		assert.True(t, dErrors.HasCode(h.Verify("WRONG", digest), dErrors.CodeUnauthorized))
	})

	t.Run("rejects bad input", func(t *testing.T) {
		_, err := NewHasher(nil)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
		_, err = h.Hash("  ")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation))
	})
}
