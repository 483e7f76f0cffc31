package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAccessTokenRoundTrip(t *testing.T) {
	t.Parallel()

	tok, err := GenerateAccessToken("secret", "officer", "off-1", "sess-1", []string{"admin"}, time.Hour)
	require.NoError(t, err)

	claims, err := ParseAccessToken(tok, "secret")
	require.NoError(t, err)
	assert.Equal(t, "officer", claims.PrincipalKind)
	assert.Equal(t, "off-1", claims.PrincipalID)
	assert.Equal(t, "sess-1", claims.SessionID)
	assert.Equal(t, []string{"admin"}, claims.Roles)
}

func TestParseAccessToken_WrongSecret(t *testing.T) {
	t.Parallel()

	tok, err := GenerateAccessToken("right", "account", "acc-1", "sess-1", nil, time.Hour)
	require.NoError(t, err)

	_, err = ParseAccessToken(tok, "wrong")
	assert.Error(t, err)
}

func TestParseAccessToken_Expired(t *testing.T) {
	t.Parallel()

	tok, err := GenerateAccessToken("secret", "account", "acc-1", "sess-1", nil, -time.Minute)
	require.NoError(t, err)

	_, err = ParseAccessToken(tok, "secret")
	assert.Error(t, err)
}

func TestRefreshTokenHashStability(t *testing.T) {
	t.Parallel()

	token, hash, err := GenerateRefreshToken(64)
	require.NoError(t, err)
	assert.Equal(t, hash, HashRefreshToken(token))

	other, _, err := GenerateRefreshToken(64)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
