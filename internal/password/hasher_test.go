package password

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndVerify(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	for _, plain := range []string{"pw12345", "a", "日本語のパスワード", strings.Repeat("x", 20)} {
		hashed, err := h.Hash(plain)
		require.NoError(t, err)
		assert.NotEqual(t, plain, hashed)

		ok, err := h.Verify(plain, hashed)
		require.NoError(t, err)
		assert.True(t, ok, "round trip must succeed for %q", plain)

		ok, err = h.Verify(plain+"!", hashed)
		require.NoError(t, err)
		assert.False(t, ok)
	}
}

func TestHashIsSalted(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	first, err := h.Hash("same")
	require.NoError(t, err)
	second, err := h.Hash("same")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}

func TestNewHasherCost(t *testing.T) {
	assert.Equal(t, 12, NewHasher(0).cost)
	assert.Equal(t, 12, NewHasher(bcrypt.MaxCost+1).cost)
	assert.Equal(t, 5, NewHasher(5).cost)

	h := NewHasher(DefaultCost)
	hashed, err := h.Hash("pw")
	require.NoError(t, err)
	cost, err := bcrypt.Cost([]byte(hashed))
	require.NoError(t, err)
	assert.Equal(t, 12, cost)
}

func TestVerifyMalformedHashIsError(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	ok, err := h.Verify("pw", "not-a-bcrypt-hash")
	assert.False(t, ok)
	assert.Error(t, err)
}

func TestHashTooLong(t *testing.T) {
	h := NewHasher(bcrypt.MinCost)

	_, err := h.Hash(strings.Repeat("x", 73))
	assert.Error(t, err)
}
