package auth

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestHashPasswordNeverStoresPlaintext(t *testing.T) {
	hash, err := HashPassword("correct horse battery staple")
	require.NoError(t, err)
	require.NotEqual(t, "correct horse battery staple", hash)
	require.NotContains(t, hash, "correct horse")
}

func TestCheckPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-password")
	require.NoError(t, err)

	require.True(t, CheckPassword(hash, "s3cret-password"))
	require.False(t, CheckPassword(hash, "wrong-password"))
	require.False(t, CheckPassword("not-a-hash", "s3cret-password"))
}

func TestHashPasswordSalted(t *testing.T) {
	first, err := HashPassword("same-password")
	require.NoError(t, err)
	second, err := HashPassword("same-password")
	require.NoError(t, err)

	require.NotEqual(t, first, second)
}
