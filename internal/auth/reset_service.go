// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/samber/oops"

	"github.com/inkpress/inkpress/internal/apperr"
)

// Mailer delivers the raw reset token out-of-band. Failures must propagate
// as classified errors, never be swallowed.
type Mailer interface {
	SendPasswordReset(ctx context.Context, recipient, token string) error
}

// PasswordResetService orchestrates the reset-token lifecycle:
// no pending reset -> issued -> optionally verified -> consumed. Issued and
// verified states both lapse once the stored expiry passes, regardless of
// the stored verified flag.
type PasswordResetService struct {
	accounts AccountRepository
	hasher   PasswordHasher
	mailer   Mailer
	ttl      time.Duration
	now      func() time.Time
}

// NewPasswordResetService creates a new PasswordResetService.
func NewPasswordResetService(accounts AccountRepository, hasher PasswordHasher, mailer Mailer) (*PasswordResetService, error) {
	if accounts == nil {
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("account repository is required")
	}
	if hasher == nil {
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("password hasher is required")
	}
	if mailer == nil {
		return nil, oops.Code("RESET_SERVICE_INVALID").Errorf("mailer is required")
	}
	return &PasswordResetService{
		accounts: accounts,
		hasher:   hasher,
		mailer:   mailer,
		ttl:      ResetTokenExpiry,
		now:      time.Now,
	}, nil
}

// WithTTL overrides how long issued tokens stay live.
func (s *PasswordResetService) WithTTL(ttl time.Duration) *PasswordResetService {
	if ttl > 0 {
		s.ttl = ttl
	}
	return s
}

// WithClock overrides the clock. Test hook.
func (s *PasswordResetService) WithClock(now func() time.Time) *PasswordResetService {
	s.now = now
	return s
}

// RequestReset issues a reset token for the account and mails it. An
// unknown username succeeds with no side effects so that responses never
// reveal which usernames are registered.
func (s *PasswordResetService) RequestReset(ctx context.Context, username string) error {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil
		}
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "get account by username").
			Wrap(err)
	}

	token, hash, err := GenerateResetToken()
	if err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "generate reset token").
			Wrap(err)
	}

	expiresAt := s.now().Add(s.ttl)
	if err := s.accounts.SetResetToken(ctx, account.ID, hash, expiresAt); err != nil {
		return oops.Code("RESET_REQUEST_FAILED").
			With("operation", "store reset token").
			Wrap(err)
	}

	if err := s.mailer.SendPasswordReset(ctx, account.Username, token); err != nil {
		return oops.Code("RESET_EMAIL_FAILED").
			With("operation", "send reset email").
			Wrap(err)
	}
	return nil
}

// VerifyToken marks the matching pending reset as verified. Tokens are not
// indexed -- the stored hash is not invertible, so the match is found by
// trial comparison over every live reset. Optional step: callers may skip
// straight to ResetPassword.
func (s *PasswordResetService) VerifyToken(ctx context.Context, token string) error {
	if token == "" {
		return apperr.BadRequest("invalid or expired reset token")
	}

	pending, err := s.accounts.ListPendingResets(ctx, s.now())
	if err != nil {
		return oops.Code("RESET_VERIFY_FAILED").
			With("operation", "list pending resets").
			Wrap(err)
	}

	for _, account := range pending {
		if account.ResetTokenHash == nil {
			continue
		}
		if VerifyResetToken(token, *account.ResetTokenHash) {
			if err := s.accounts.MarkResetVerified(ctx, account.ID); err != nil {
				return oops.Code("RESET_VERIFY_FAILED").
					With("operation", "mark reset verified").
					Wrap(err)
			}
			return nil
		}
	}
	return apperr.BadRequest("invalid or expired reset token")
}

// ResetPassword consumes a reset token: on match it replaces the password
// hash and clears the token hash, expiry, and verified flag together.
// Every failure mode -- unknown username, no pending reset, expired token,
// wrong token, already consumed -- yields the same generic 400 so the
// endpoint cannot be used as an oracle.
func (s *PasswordResetService) ResetPassword(ctx context.Context, username, token, newPassword string) error {
	account, err := s.accounts.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.BadRequest("invalid or expired reset token")
		}
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "get account by username").
			Wrap(err)
	}

	if !account.HasLiveReset(s.now()) || !VerifyResetToken(token, *account.ResetTokenHash) {
		return apperr.BadRequest("invalid or expired reset token")
	}

	newHash, err := s.hasher.Hash(newPassword)
	if err != nil {
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "hash new password").
			Wrap(err)
	}

	if err := s.accounts.ConsumeReset(ctx, account.ID, newHash); err != nil {
		// A concurrent consume can clear the token between the check and
		// the update; that is the same generic failure to the caller.
		if errors.Is(err, ErrNotFound) {
			return apperr.BadRequest("invalid or expired reset token")
		}
		return oops.Code("RESET_PASSWORD_FAILED").
			With("operation", "consume reset").
			Wrap(err)
	}
	return nil
}
