package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestTokens(t *testing.T) *Tokens {
	t.Helper()
	return NewTokens("test-secret", "eventra-test", 15*time.Minute, 168*time.Hour, 24*time.Hour)
}

func TestIssuePairAndParseAccess(t *testing.T) {
	tokens := newTestTokens(t)

	pair, err := tokens.IssuePair("a1b2c3d4")
	require.NoError(t, err)
	require.NotEmpty(t, pair.Access)
	require.NotEmpty(t, pair.Refresh)
	require.NotEqual(t, pair.Access, pair.Refresh)

	claims, err := tokens.ParseAccess(pair.Access)
	require.NoError(t, err)
	require.Equal(t, "a1b2c3d4", claims.Subject)
	require.Equal(t, "eventra-test", claims.Issuer)
}

func TestIssuePairEmptySubject(t *testing.T) {
	tokens := newTestTokens(t)

	_, err := tokens.IssuePair("")
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseAccessRejectsRefreshToken(t *testing.T) {
	tokens := newTestTokens(t)

	pair, err := tokens.IssuePair("a1b2c3d4")
	require.NoError(t, err)

	_, err = tokens.ParseAccess(pair.Refresh)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseRefresh(t *testing.T) {
	tokens := newTestTokens(t)

	pair, err := tokens.IssuePair("a1b2c3d4")
	require.NoError(t, err)

	userID, err := tokens.ParseRefresh(pair.Refresh)
	require.NoError(t, err)
	require.Equal(t, "a1b2c3d4", userID)

	_, err = tokens.ParseRefresh(pair.Access)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestVerificationRoundTrip(t *testing.T) {
	tokens := newTestTokens(t)

	token, err := tokens.IssueVerification("a1b2c3d4")
	require.NoError(t, err)

	userID, err := tokens.ParseVerification(token)
	require.NoError(t, err)
	require.Equal(t, "a1b2c3d4", userID)
}

func TestParseVerificationExpired(t *testing.T) {
	tokens := NewTokens("test-secret", "eventra-test", 15*time.Minute, 168*time.Hour, -1*time.Hour)

	token, err := tokens.IssueVerification("a1b2c3d4")
	require.NoError(t, err)

	_, err = tokens.ParseVerification(token)
	require.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseVerificationMalformed(t *testing.T) {
	tokens := newTestTokens(t)

	_, err := tokens.ParseVerification("not-a-token")
	require.ErrorIs(t, err, ErrTokenMalformed)
}

func TestParseVerificationTamperedSignature(t *testing.T) {
	tokens := newTestTokens(t)
	other := NewTokens("other-secret", "eventra-test", 15*time.Minute, 168*time.Hour, 24*time.Hour)

	token, err := other.IssueVerification("a1b2c3d4")
	require.NoError(t, err)

	_, err = tokens.ParseVerification(token)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseVerificationRejectsSessionToken(t *testing.T) {
	tokens := newTestTokens(t)

	pair, err := tokens.IssuePair("a1b2c3d4")
	require.NoError(t, err)

	_, err = tokens.ParseVerification(pair.Access)
	require.ErrorIs(t, err, ErrTokenInvalid)
}

func TestParseVerificationMissing(t *testing.T) {
	tokens := newTestTokens(t)

	_, err := tokens.ParseVerification("   ")
	require.ErrorIs(t, err, ErrMissingToken)
}

func TestTokenFromHeader(t *testing.T) {
	token, err := TokenFromHeader("Bearer abc.def.ghi")
	require.NoError(t, err)
	require.Equal(t, "abc.def.ghi", token)

	_, err = TokenFromHeader("")
	require.ErrorIs(t, err, ErrMissingToken)

	_, err = TokenFromHeader("Basic abc")
	require.ErrorIs(t, err, ErrMissingToken)

	token, err = TokenFromHeader("bearer abc")
	require.NoError(t, err)
	require.Equal(t, "abc", token)
}
