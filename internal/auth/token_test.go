package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenRoundTrip(t *testing.T) {
	secret := []byte("test-secret")

	token, err := IssueToken("user-123", secret, time.Hour)
	require.NoError(t, err)

	subject, err := ParseToken(token, secret)
	require.NoError(t, err)
	assert.Equal(t, "user-123", subject)
}

func TestParseTokenExpired(t *testing.T) {
	secret := []byte("test-secret")

	token, err := IssueToken("user-123", secret, -time.Minute)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestParseTokenWrongSecret(t *testing.T) {
	token, err := IssueToken("user-123", []byte("secret-a"), time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, []byte("secret-b"))
	assert.ErrorIs(t, err, ErrInvalidToken)
	assert.NotErrorIs(t, err, ErrTokenExpired)
}

func TestParseTokenMalformed(t *testing.T) {
	_, err := ParseToken("not-a-token", []byte("secret"))
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseTokenMissingSubject(t *testing.T) {
	secret := []byte("test-secret")

	token, err := IssueToken("", secret, time.Hour)
	require.NoError(t, err)

	_, err = ParseToken(token, secret)
	assert.ErrorIs(t, err, ErrInvalidToken)
}
