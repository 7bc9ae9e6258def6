package auth

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/baylot/raffle-api/internal/config"
	"github.com/baylot/raffle-api/internal/pkg/jwthelper"
)

var ErrUnauthorized = errors.New("unauthorized")

const adminSubject = "admin"

// Credentials is what a request presented to prove it may mutate the registry.
type Credentials struct {
	AdminKey    string
	BearerToken string
}

// Gate decides whether a caller may perform a mutating operation.
type Gate interface {
	Authorize(ctx context.Context, creds Credentials) error
}

// SharedSecretGate accepts the configured admin key. An empty key accepts nothing.
type SharedSecretGate struct {
	secret []byte
}

func NewSharedSecretGate(secret string) *SharedSecretGate {
	return &SharedSecretGate{secret: []byte(secret)}
}

func (g *SharedSecretGate) Authorize(_ context.Context, creds Credentials) error {
	if len(g.secret) == 0 || creds.AdminKey == "" {
		return ErrUnauthorized
	}
	if subtle.ConstantTimeCompare(g.secret, []byte(creds.AdminKey)) != 1 {
		return ErrUnauthorized
	}

	return nil
}

// HashedSecretGate accepts any admin key matching a bcrypt hash.
type HashedSecretGate struct {
	hash []byte
}

func NewHashedSecretGate(hash string) *HashedSecretGate {
	return &HashedSecretGate{hash: []byte(hash)}
}

func (g *HashedSecretGate) Authorize(_ context.Context, creds Credentials) error {
	if len(g.hash) == 0 || creds.AdminKey == "" {
		return ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword(g.hash, []byte(creds.AdminKey)); err != nil {
		return ErrUnauthorized
	}

	return nil
}

// TokenGate accepts short-lived admin bearer tokens and issues them.
type TokenGate struct {
	signingKey string
	ttl        time.Duration
	now        func() time.Time
}

func NewTokenGate(signingKey string, ttl time.Duration) *TokenGate {
	return &TokenGate{
		signingKey: signingKey,
		ttl:        ttl,
		now:        time.Now,
	}
}

func (g *TokenGate) Authorize(_ context.Context, creds Credentials) error {
	if g.signingKey == "" || creds.BearerToken == "" {
		return ErrUnauthorized
	}

	claims, err := jwthelper.ParseToken(g.signingKey, creds.BearerToken)
	if err != nil || claims.Subject != adminSubject {
		return ErrUnauthorized
	}

	return nil
}

func (g *TokenGate) Issue() (string, time.Time, error) {
	token, expiresAt, err := jwthelper.GenerateToken(g.signingKey, adminSubject, g.now(), g.ttl)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("jwthelper.GenerateToken -> %w", err)
	}

	return token, expiresAt, nil
}

// AnyGate authorizes when at least one of its gates does.
type AnyGate []Gate

func (gs AnyGate) Authorize(ctx context.Context, creds Credentials) error {
	for _, g := range gs {
		if g.Authorize(ctx, creds) == nil {
			return nil
		}
	}

	return ErrUnauthorized
}

// NewGates builds the admin-key gate from conf and, when a signing key is configured, the token gate.
// The returned gate accepts either.
func NewGates(conf *config.AdminConfig) (keyGate Gate, tokens *TokenGate, gate Gate) {
	keys := AnyGate{}
	if conf.Key != "" {
		keys = append(keys, NewSharedSecretGate(conf.Key))
	}
	if conf.KeyHash != "" {
		keys = append(keys, NewHashedSecretGate(conf.KeyHash))
	}

	if conf.TokenSigningKey == "" {
		return keys, nil, keys
	}

	tokens = NewTokenGate(conf.TokenSigningKey, conf.TokenTTL)

	return keys, tokens, AnyGate{keys, tokens}
}
