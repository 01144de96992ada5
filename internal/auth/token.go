// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/oklog/ulid/v2"

	"github.com/inkpress/inkpress/internal/apperr"
)

// DefaultTokenTTL is the bearer token lifetime when none is configured.
const DefaultTokenTTL = 24 * time.Hour

// TokenManager signs and verifies bearer tokens. The signing secret is an
// explicit constructor argument, never read from process-wide state inside
// the verification call.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager. A zero ttl falls back to
// DefaultTokenTTL. An empty secret is tolerated here so that a misconfigured
// deployment fails per-request with a classified 500 instead of a 401.
func NewTokenManager(secret []byte, ttl time.Duration) *TokenManager {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenManager{secret: secret, ttl: ttl, now: time.Now}
}

// WithClock overrides the clock. Test hook.
func (m *TokenManager) WithClock(now func() time.Time) *TokenManager {
	m.now = now
	return m
}

// Issue signs an HS256 token whose subject is the account ID.
func (m *TokenManager) Issue(accountID ulid.ULID) (string, error) {
	if len(m.secret) == 0 {
		return "", apperr.Internal("token signing secret is not configured")
	}

	now := m.now()
	claims := jwt.RegisteredClaims{
		Subject:   accountID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", apperr.Internal("token signing failed: %s", err.Error())
	}
	return signed, nil
}

// Verify checks the token's signature and expiry and returns the account ID
// from its subject.
//
// Failure classification matters here: a missing secret is a deployment
// error (500), a bad or expired token is a client error (401), and a token
// that verifies but carries a missing or malformed subject indicates a
// token-issuing bug (500), not a client attack.
func (m *TokenManager) Verify(tokenString string) (ulid.ULID, error) {
	if len(m.secret) == 0 {
		return ulid.ULID{}, apperr.Internal("token signing secret is not configured")
	}

	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
	)
	if err != nil {
		return ulid.ULID{}, apperr.Unauthorized("invalid or expired token")
	}

	if claims.Subject == "" {
		return ulid.ULID{}, apperr.Internal("token payload carries no subject")
	}
	id, err := ulid.Parse(claims.Subject)
	if err != nil {
		return ulid.ULID{}, apperr.Internal("token payload subject is not an account id")
	}
	return id, nil
}
