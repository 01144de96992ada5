// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package auth

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/inkpress/inkpress/internal/apperr"
)

// Service provides account operations: registration, login, and the
// authenticated password-change flow.
type Service struct {
	accounts AccountRepository
	hasher   PasswordHasher
	tokens   *TokenManager
}

// NewService creates a new Service.
func NewService(accounts AccountRepository, hasher PasswordHasher, tokens *TokenManager) (*Service, error) {
	if accounts == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if tokens == nil {
		return nil, oops.Code("AUTH_SERVICE_INVALID").Errorf("token manager is required")
	}
	return &Service{accounts: accounts, hasher: hasher, tokens: tokens}, nil
}

// dummyPasswordHash is verified when a username doesn't exist so that the
// response time stays consistent. It is a fake hash that never matches.
//
//nolint:gosec // G101: intentionally fake hash for timing attack prevention, not a credential.
const dummyPasswordHash = "$argon2id$v=19$m=65536,t=1,p=4$AAAAAAAAAAAAAAAAAAAAAA$AAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"

// Register creates an account. A duplicate username surfaces as the
// storage layer's uniqueness violation and classifies to 400.
func (s *Service) Register(ctx context.Context, username, password string, firstName, lastName *string) (*Account, error) {
	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, oops.Code("ACCOUNT_REGISTER_FAILED").
			With("operation", "hash password").
			Wrap(err)
	}

	account, err := NewAccount(username, hash)
	if err != nil {
		return nil, err
	}
	account.FirstName = firstName
	account.LastName = lastName

	if err := s.accounts.Create(ctx, account); err != nil {
		return nil, err
	}
	return account, nil
}

// Login verifies credentials and returns a signed bearer token. Unknown
// usernames and wrong passwords produce the same 401.
func (s *Service) Login(ctx context.Context, username, password string) (*Account, string, error) {
	account, lookupErr := s.accounts.GetByUsername(ctx, username)

	targetHash := dummyPasswordHash
	exists := false
	if lookupErr != nil {
		if !errors.Is(lookupErr, ErrNotFound) {
			return nil, "", oops.Code("AUTH_LOGIN_FAILED").
				With("operation", "get account by username").
				Wrap(lookupErr)
		}
	} else {
		targetHash = account.PasswordHash
		exists = true
	}

	valid, verifyErr := s.hasher.Verify(password, targetHash)
	if verifyErr != nil && exists {
		return nil, "", oops.Code("AUTH_LOGIN_FAILED").
			With("operation", "verify password").
			Wrap(verifyErr)
	}
	if !exists || !valid {
		return nil, "", apperr.Unauthorized("invalid username or password")
	}

	token, err := s.tokens.Issue(account.ID)
	if err != nil {
		return nil, "", err
	}
	return account, token, nil
}

// ChangePassword replaces the password for an already-authenticated
// account after verifying the current one. Distinct from the reset flow:
// a wrong current password is a 401, and an account with no stored hash at
// all is a 400.
func (s *Service) ChangePassword(ctx context.Context, accountID ulid.ULID, currentPassword, newPassword string) error {
	account, err := s.accounts.GetByID(ctx, accountID)
	if err != nil {
		return err
	}

	if account.PasswordHash == "" {
		return apperr.BadRequest("account has no password set")
	}

	valid, err := s.hasher.Verify(currentPassword, account.PasswordHash)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "verify current password").
			Wrap(err)
	}
	if !valid {
		return apperr.Unauthorized("current password is incorrect")
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("AUTH_CHANGE_PASSWORD_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	return s.accounts.UpdatePassword(ctx, accountID, newHash)
}

// UpdateProfile updates the optional profile fields.
func (s *Service) UpdateProfile(ctx context.Context, accountID ulid.ULID, firstName, lastName *string) error {
	return s.accounts.UpdateProfile(ctx, accountID, firstName, lastName)
}

// DeleteAccount removes the account. Owned posts cascade at the storage
// layer; authored comments survive with a nulled owner.
func (s *Service) DeleteAccount(ctx context.Context, accountID ulid.ULID) error {
	return s.accounts.Delete(ctx, accountID)
}
