package crypto

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRandBytes(t *testing.T) {
	t.Parallel()

	a, err := RandBytes(16)
	require.NoError(t, err)
	require.Len(t, a, 16)

	b, err := RandBytes(16)
	require.NoError(t, err)
	require.NotEqual(t, a, b, "two salts should never collide")
	require.NotEqual(t, make([]byte, 16), a)
}

func TestHashPassword(t *testing.T) {
	t.Parallel()

	pw := []byte("chunky merino 8mm")
	salt := []byte("0123456789abcdef")

	h := HashPassword(pw, salt)
	require.NotEmpty(t, h)
	require.Equal(t, h, HashPassword(pw, salt), "hash must be deterministic")
	require.NotEqual(t, h, HashPassword(pw, []byte("fedcba9876543210")))
	require.NotEqual(t, h, HashPassword([]byte("chunky merino 9mm"), salt))
}

func TestVerifyPassword(t *testing.T) {
	t.Parallel()

	pw := []byte("pw1")
	salt := []byte("somesalt")
	hash := HashPassword(pw, salt)

	require.True(t, VerifyPassword(pw, salt, hash))
	require.False(t, VerifyPassword([]byte("pw2"), salt, hash))
	require.False(t, VerifyPassword(pw, []byte("othersalt"), hash))
	require.False(t, VerifyPassword(nil, salt, hash))
}
