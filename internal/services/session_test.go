package services

import (
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSessionSigner_RoundTrip(t *testing.T) {
	s := NewSessionSigner("secret", 72*time.Hour)
	token, err := s.Sign(42, true)
	require.NoError(t, err)

	claims, err := s.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, uint(42), claims.UserID)
	assert.True(t, claims.IsAdmin)
	assert.Equal(t, "42", claims.Subject)
}

func TestSessionSigner_Expired(t *testing.T) {
	s := NewSessionSigner("secret", time.Hour)
	issued := time.Now().Add(-2 * time.Hour)
	s.now = func() time.Time { return issued }
	token, err := s.Sign(1, false)
	require.NoError(t, err)

	s.now = time.Now
	_, err = s.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestSessionSigner_Rejects(t *testing.T) {
	s := NewSessionSigner("secret", time.Hour)
	token, err := s.Sign(1, false)
	require.NoError(t, err)

	other := NewSessionSigner("another-secret", time.Hour)
	_, err = other.Verify(token)
	assert.ErrorIs(t, err, ErrInvalidSession, "wrong secret")

	parts := strings.Split(token, ".")
	_, err = s.Verify(parts[0] + "." + parts[1] + ".AAAA")
	assert.ErrorIs(t, err, ErrInvalidSession, "bad signature")

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, SessionClaims{UserID: 1, IsAdmin: true}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = s.Verify(none)
	assert.ErrorIs(t, err, ErrInvalidSession, "alg none")

	_, err = s.Verify("garbage")
	assert.ErrorIs(t, err, ErrInvalidSession)
}

func TestBcryptHasher(t *testing.T) {
	h := NewBcryptHasher(4)
	hash, err := h.Hash("Str0ngP@ss")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ngP@ss", hash)
	assert.True(t, h.Verify("Str0ngP@ss", hash))
	assert.False(t, h.Verify("Str0ngP@sS", hash))

	assert.Equal(t, DefaultBcryptCost, NewBcryptHasher(0).Cost)
}

func TestGenerateToken(t *testing.T) {
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		tok, err := GenerateToken()
		require.NoError(t, err)
		assert.Len(t, tok, 64)
		assert.False(t, seen[tok], "duplicate token")
		seen[tok] = true
	}
}
