package session

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClaims_ReadsSubjectAndExpiry(t *testing.T) {
	exp := time.Date(2030, 1, 2, 3, 4, 5, 0, time.UTC)
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "a@x.com",
		ExpiresAt: jwt.NewNumericDate(exp),
	}).SignedString([]byte("server-secret"))
	require.NoError(t, err)

	c, err := ParseClaims(tok)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", c.Subject)
	assert.True(t, exp.Equal(c.ExpiresAt))
}

func TestParseClaims_ExpiredTokenStillDecodes(t *testing.T) {
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "old@x.com",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(-time.Hour)),
	}).SignedString([]byte("k"))
	require.NoError(t, err)

	c, err := ParseClaims(tok)
	require.NoError(t, err)
	assert.Equal(t, "old@x.com", c.Subject)
}

func TestParseClaims_OpaqueToken(t *testing.T) {
	_, err := ParseClaims("not-a-jwt")
	require.Error(t, err)
}
