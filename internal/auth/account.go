// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package auth

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Account represents a registered principal. Usernames are the email
// addresses reset tokens are delivered to.
type Account struct {
	ID           ulid.ULID
	Username     string
	PasswordHash string
	FirstName    *string
	LastName     *string

	// Reset-token state. TokenHash and ExpiresAt are set and cleared
	// together; Verified may only be true while an unexpired hash exists.
	ResetTokenHash      *string
	ResetTokenExpiresAt *time.Time
	ResetVerified       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewAccount creates an Account with a fresh ID and timestamps.
func NewAccount(username, passwordHash string) (*Account, error) {
	if username == "" {
		return nil, oops.Code("ACCOUNT_INVALID_USERNAME").Errorf("username cannot be empty")
	}
	if passwordHash == "" {
		return nil, oops.Code("ACCOUNT_INVALID_HASH").Errorf("password hash cannot be empty")
	}
	now := time.Now().UTC()
	return &Account{
		ID:           ulid.Make(),
		Username:     username,
		PasswordHash: passwordHash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// HasLiveReset reports whether the account holds an unexpired reset token.
// Expiry is always checked against the supplied clock, never inferred from
// the verified flag.
func (a *Account) HasLiveReset(now time.Time) bool {
	return a.ResetTokenHash != nil && a.ResetTokenExpiresAt != nil && now.Before(*a.ResetTokenExpiresAt)
}

// AccountRepository manages account persistence.
type AccountRepository interface {
	// Create stores a new account.
	Create(ctx context.Context, account *Account) error

	// GetByID retrieves an account by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Account, error)

	// GetByUsername retrieves an account by username (case-insensitive).
	GetByUsername(ctx context.Context, username string) (*Account, error)

	// UpdateProfile updates the optional profile fields.
	UpdateProfile(ctx context.Context, id ulid.ULID, firstName, lastName *string) error

	// UpdatePassword replaces only the password hash.
	UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error

	// SetResetToken stores a reset-token hash and expiry together and
	// clears any prior verified flag.
	SetResetToken(ctx context.Context, id ulid.ULID, tokenHash string, expiresAt time.Time) error

	// ListPendingResets returns accounts whose reset token is unexpired
	// as of now.
	ListPendingResets(ctx context.Context, now time.Time) ([]*Account, error)

	// MarkResetVerified sets the verified flag. The row must still hold a
	// reset-token hash.
	MarkResetVerified(ctx context.Context, id ulid.ULID) error

	// ConsumeReset replaces the password hash and clears the reset-token
	// hash, expiry, and verified flag in a single conditional update.
	// Returns ErrNotFound if the account holds no reset token.
	ConsumeReset(ctx context.Context, id ulid.ULID, newPasswordHash string) error

	// Delete removes an account. Owned posts cascade; comment authorship
	// is nulled by the schema.
	Delete(ctx context.Context, id ulid.ULID) error
}
