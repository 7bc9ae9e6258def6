package jwthelper

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndParse(t *testing.T) {
	now := time.Now()
	token, exp, err := GenerateToken("k3y", "admin", now, time.Minute)
	require.NoError(t, err)
	assert.WithinDuration(t, now.Add(time.Minute), exp, time.Second)

	claims, err := ParseToken("k3y", token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Subject)
}

func TestParseToken_Rejects(t *testing.T) {
	token, _, err := GenerateToken("k3y", "admin", time.Now(), time.Minute)
	require.NoError(t, err)

	_, err = ParseToken("other", token)
	assert.Error(t, err)

	expired, _, err := GenerateToken("k3y", "admin", time.Now().Add(-time.Hour), time.Minute)
	require.NoError(t, err)
	_, err = ParseToken("k3y", expired)
	assert.ErrorIs(t, err, jwt.ErrTokenExpired)

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.RegisteredClaims{Subject: "admin"}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)
	_, err = ParseToken("k3y", none)
	assert.Error(t, err)

	_, err = ParseToken("", token)
	assert.ErrorIs(t, err, ErrEmptySigningKey)
}
