package jwthelper

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptySigningKey = errors.New("jwt signing key is empty")

// GenerateToken signs an HS256 token for subject that expires after ttl.
func GenerateToken(signingKey, subject string, now time.Time, ttl time.Duration) (string, time.Time, error) {
	if signingKey == "" {
		return "", time.Time{}, ErrEmptySigningKey
	}

	expiresAt := now.Add(ttl)
	claims := jwt.RegisteredClaims{
		Subject:   subject,
		IssuedAt:  jwt.NewNumericDate(now),
		NotBefore: jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(signingKey))
	if err != nil {
		return "", time.Time{}, fmt.Errorf("token.SignedString -> %w", err)
	}

	return signed, expiresAt, nil
}

// ParseToken verifies tokenString and returns its claims. Only HS256 is accepted.
func ParseToken(signingKey, tokenString string) (*jwt.RegisteredClaims, error) {
	if signingKey == "" {
		return nil, ErrEmptySigningKey
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(signingKey), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return nil, fmt.Errorf("jwt.ParseWithClaims -> %w", err)
	}

	return claims, nil
}
