package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndDecodeSigned(t *testing.T) {
	issuer := NewIssuer("test-secret")

	token, expires, err := issuer.IssueSigned(ConcernVerification, "user-1", 10*time.Minute)
	require.NoError(t, err)
	assert.NotEmpty(t, token)
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expires, 2*time.Second)

	claims, err := issuer.DecodeSigned(ConcernVerification, token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.SubjectID)
	assert.Equal(t, ConcernVerification, claims.Concern)
}

func TestDecodeSigned_WrongConcern(t *testing.T) {
	issuer := NewIssuer("test-secret")

	token, _, err := issuer.IssueSigned(ConcernEmailChange, "user-1", time.Minute)
	require.NoError(t, err)

	_, err = issuer.DecodeSigned(ConcernVerification, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDecodeSigned_Expired(t *testing.T) {
	issuer := NewIssuer("test-secret")

	token, _, err := issuer.IssueSigned(ConcernVerification, "user-1", -time.Minute)
	require.NoError(t, err)

	_, err = issuer.DecodeSigned(ConcernVerification, token)
	assert.ErrorIs(t, err, ErrTokenExpired)
}

func TestDecodeSigned_WrongSecret(t *testing.T) {
	token, _, err := NewIssuer("secret-a").IssueSigned(ConcernPasswordReset, "user-1", time.Minute)
	require.NoError(t, err)

	_, err = NewIssuer("secret-b").DecodeSigned(ConcernPasswordReset, token)
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestDecodeSigned_Garbage(t *testing.T) {
	issuer := NewIssuer("test-secret")

	_, err := issuer.DecodeSigned(ConcernVerification, "not-a-jwt")
	assert.ErrorIs(t, err, ErrTokenInvalid)
}

func TestIssueOpaque(t *testing.T) {
	issuer := NewIssuer("test-secret")

	token, expires, err := issuer.IssueOpaque(5 * time.Minute)
	require.NoError(t, err)
	assert.Len(t, token, 40)
	assert.WithinDuration(t, time.Now().Add(5*time.Minute), expires, 2*time.Second)

	other, _, err := issuer.IssueOpaque(5 * time.Minute)
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
