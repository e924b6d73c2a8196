package security

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSessionToken_RoundTrip(t *testing.T) {
	svc := NewSessionTokenService("test-secret", time.Hour)

	token, err := svc.GenerateToken("session-1")
	require.NoError(t, err)

	id, err := svc.ParseToken(token)
	require.NoError(t, err)
	require.Equal(t, "session-1", id)
}

func TestSessionToken_WrongSecret(t *testing.T) {
	token, err := NewSessionTokenService("secret-a", time.Hour).GenerateToken("session-1")
	require.NoError(t, err)

	_, err = NewSessionTokenService("secret-b", time.Hour).ParseToken(token)
	require.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestSessionToken_Expired(t *testing.T) {
	svc := NewSessionTokenService("test-secret", -time.Minute)

	token, err := svc.GenerateToken("session-1")
	require.NoError(t, err)

	_, err = svc.ParseToken(token)
	require.ErrorIs(t, err, ErrInvalidSessionToken)
}

func TestSessionToken_Garbage(t *testing.T) {
	_, err := NewSessionTokenService("test-secret", time.Hour).ParseToken("not-a-token")
	require.ErrorIs(t, err, ErrInvalidSessionToken)
}
