// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package auth_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/inkpress/inkpress/internal/apperr"
	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/auth/mocks"
	"github.com/inkpress/inkpress/pkg/errutil"
)

func newResetService(t *testing.T) (*auth.PasswordResetService, *mocks.MockAccountRepository, *mocks.MockPasswordHasher, *mocks.MockMailer) {
	t.Helper()
	accounts := mocks.NewMockAccountRepository(t)
	hasher := mocks.NewMockPasswordHasher(t)
	mailer := mocks.NewMockMailer(t)
	svc, err := auth.NewPasswordResetService(accounts, hasher, mailer)
	require.NoError(t, err)
	return svc, accounts, hasher, mailer
}

func TestNewPasswordResetService_NilDependencies(t *testing.T) {
	tests := []struct {
		name        string
		accounts    auth.AccountRepository
		hasher      auth.PasswordHasher
		mailer      auth.Mailer
		expectError string
	}{
		{"nil account repository", nil, mocks.NewMockPasswordHasher(t), mocks.NewMockMailer(t), "account repository is required"},
		{"nil password hasher", mocks.NewMockAccountRepository(t), nil, mocks.NewMockMailer(t), "password hasher is required"},
		{"nil mailer", mocks.NewMockAccountRepository(t), mocks.NewMockPasswordHasher(t), nil, "mailer is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, err := auth.NewPasswordResetService(tt.accounts, tt.hasher, tt.mailer)
			require.Error(t, err)
			assert.Nil(t, svc)
			assert.Contains(t, err.Error(), tt.expectError)
		})
	}
}

func TestPasswordResetService_RequestReset(t *testing.T) {
	ctx := context.Background()
	accountID := ulid.Make()

	t.Run("stores hash with expiry and mails the raw token", func(t *testing.T) {
		svc, accounts, _, mailer := newResetService(t)
		issued := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
		svc.WithClock(func() time.Time { return issued })

		account := &auth.Account{ID: accountID, Username: "ada@example.com"}
		accounts.On("GetByUsername", ctx, "ada@example.com").Return(account, nil)

		var storedHash, mailedToken string
		accounts.On("SetResetToken", ctx, accountID, mock.AnythingOfType("string"), issued.Add(auth.ResetTokenExpiry)).
			Run(func(args mock.Arguments) { storedHash = args.String(2) }).
			Return(nil)
		mailer.On("SendPasswordReset", ctx, "ada@example.com", mock.AnythingOfType("string")).
			Run(func(args mock.Arguments) { mailedToken = args.String(2) }).
			Return(nil)

		require.NoError(t, svc.RequestReset(ctx, "ada@example.com"))

		// Only the hash is persisted; the mailed token must hash to it.
		assert.NotEqual(t, mailedToken, storedHash)
		assert.Equal(t, auth.HashResetToken(mailedToken), storedHash)
	})

	t.Run("unknown username succeeds silently to prevent enumeration", func(t *testing.T) {
		svc, accounts, _, _ := newResetService(t)

		accounts.On("GetByUsername", ctx, "ghost@example.com").Return(nil, auth.ErrNotFound)

		require.NoError(t, svc.RequestReset(ctx, "ghost@example.com"))
		accounts.AssertNotCalled(t, "SetResetToken")
	})

	t.Run("mailer failure propagates", func(t *testing.T) {
		svc, accounts, _, mailer := newResetService(t)
		account := &auth.Account{ID: accountID, Username: "ada@example.com"}

		accounts.On("GetByUsername", ctx, "ada@example.com").Return(account, nil)
		accounts.On("SetResetToken", ctx, accountID, mock.Anything, mock.Anything).Return(nil)
		mailer.On("SendPasswordReset", ctx, "ada@example.com", mock.Anything).Return(assert.AnError)

		err := svc.RequestReset(ctx, "ada@example.com")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_EMAIL_FAILED")
	})

	t.Run("storage failure propagates", func(t *testing.T) {
		svc, accounts, _, _ := newResetService(t)

		accounts.On("GetByUsername", ctx, "ada@example.com").Return(nil, assert.AnError)

		err := svc.RequestReset(ctx, "ada@example.com")
		require.Error(t, err)
		errutil.AssertErrorCode(t, err, "RESET_REQUEST_FAILED")
	})
}

func TestPasswordResetService_VerifyToken(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)

	pendingAccount := func(id ulid.ULID, token string) *auth.Account {
		hash := auth.HashResetToken(token)
		expires := now.Add(30 * time.Minute)
		return &auth.Account{ID: id, ResetTokenHash: &hash, ResetTokenExpiresAt: &expires}
	}

	t.Run("marks the matching pending reset verified", func(t *testing.T) {
		svc, accounts, _, _ := newResetService(t)
		svc.WithClock(func() time.Time { return now })

		matchID := ulid.Make()
		pending := []*auth.Account{
			pendingAccount(ulid.Make(), "other-token"),
			pendingAccount(matchID, "the-token"),
		}
		accounts.On("ListPendingResets", ctx, now).Return(pending, nil)
		accounts.On("MarkResetVerified", ctx, matchID).Return(nil)

		require.NoError(t, svc.VerifyToken(ctx, "the-token"))
	})

	t.Run("no match among live tokens is a generic 400", func(t *testing.T) {
		svc, accounts, _, _ := newResetService(t)
		svc.WithClock(func() time.Time { return now })

		accounts.On("ListPendingResets", ctx, now).Return([]*auth.Account{pendingAccount(ulid.Make(), "other")}, nil)

		err := svc.VerifyToken(ctx, "the-token")
		assertStatus(t, err, http.StatusBadRequest)
		accounts.AssertNotCalled(t, "MarkResetVerified")
	})

	t.Run("empty token never scans", func(t *testing.T) {
		svc, accounts, _, _ := newResetService(t)

		err := svc.VerifyToken(ctx, "")
		assertStatus(t, err, http.StatusBadRequest)
		accounts.AssertNotCalled(t, "ListPendingResets")
	})
}

func TestPasswordResetService_ResetPassword(t *testing.T) {
	ctx := context.Background()
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	accountID := ulid.Make()

	accountWithReset := func(token string, expiresAt time.Time) *auth.Account {
		hash := auth.HashResetToken(token)
		return &auth.Account{
			ID:                  accountID,
			Username:            "ada@example.com",
			PasswordHash:        "$argon2id$old",
			ResetTokenHash:      &hash,
			ResetTokenExpiresAt: &expiresAt,
		}
	}

	t.Run("consumes token and swaps password atomically", func(t *testing.T) {
		svc, accounts, hasher, _ := newResetService(t)
		svc.WithClock(func() time.Time { return now })

		accounts.On("GetByUsername", ctx, "ada@example.com").
			Return(accountWithReset("the-token", now.Add(10*time.Minute)), nil)
		hasher.On("Hash", "new-pw").Return("$argon2id$new", nil)
		accounts.On("ConsumeReset", ctx, accountID, "$argon2id$new").Return(nil)

		require.NoError(t, svc.ResetPassword(ctx, "ada@example.com", "the-token", "new-pw"))
	})

	t.Run("expired token fails exactly like a wrong one", func(t *testing.T) {
		svc, accounts, _, _ := newResetService(t)
		svc.WithClock(func() time.Time { return now })

		accounts.On("GetByUsername", ctx, "ada@example.com").
			Return(accountWithReset("the-token", now.Add(-time.Minute)), nil).Once()
		expiredErr := svc.ResetPassword(ctx, "ada@example.com", "the-token", "new-pw")

		accounts.On("GetByUsername", ctx, "ada@example.com").
			Return(accountWithReset("the-token", now.Add(10*time.Minute)), nil).Once()
		wrongErr := svc.ResetPassword(ctx, "ada@example.com", "not-the-token", "new-pw")

		require.Error(t, expiredErr)
		require.Error(t, wrongErr)
		assert.Equal(t, apperr.Classify(expiredErr), apperr.Classify(wrongErr))
		assert.Equal(t, http.StatusBadRequest, apperr.Classify(expiredErr).Status)
	})

	t.Run("unknown username fails with the same generic error", func(t *testing.T) {
		svc, accounts, _, _ := newResetService(t)
		svc.WithClock(func() time.Time { return now })

		accounts.On("GetByUsername", ctx, "ghost@example.com").Return(nil, auth.ErrNotFound)

		err := svc.ResetPassword(ctx, "ghost@example.com", "the-token", "new-pw")
		assertStatus(t, err, http.StatusBadRequest)
		assert.Equal(t, "invalid or expired reset token", apperr.Classify(err).Message)
	})

	t.Run("second consume of the same token fails the same way", func(t *testing.T) {
		svc, accounts, hasher, _ := newResetService(t)
		svc.WithClock(func() time.Time { return now })

		// First call consumes.
		accounts.On("GetByUsername", ctx, "ada@example.com").
			Return(accountWithReset("the-token", now.Add(10*time.Minute)), nil).Once()
		hasher.On("Hash", "new-pw").Return("$argon2id$new", nil)
		accounts.On("ConsumeReset", ctx, accountID, "$argon2id$new").Return(nil).Once()
		require.NoError(t, svc.ResetPassword(ctx, "ada@example.com", "the-token", "new-pw"))

		// Second call sees the cleared reset fields.
		consumed := &auth.Account{ID: accountID, Username: "ada@example.com", PasswordHash: "$argon2id$new"}
		accounts.On("GetByUsername", ctx, "ada@example.com").Return(consumed, nil).Once()

		err := svc.ResetPassword(ctx, "ada@example.com", "the-token", "new-pw")
		assertStatus(t, err, http.StatusBadRequest)
		assert.Equal(t, "invalid or expired reset token", apperr.Classify(err).Message)
	})

	t.Run("lost consume race maps to the generic error", func(t *testing.T) {
		svc, accounts, hasher, _ := newResetService(t)
		svc.WithClock(func() time.Time { return now })

		accounts.On("GetByUsername", ctx, "ada@example.com").
			Return(accountWithReset("the-token", now.Add(10*time.Minute)), nil)
		hasher.On("Hash", "new-pw").Return("$argon2id$new", nil)
		accounts.On("ConsumeReset", ctx, accountID, "$argon2id$new").Return(auth.ErrNotFound)

		err := svc.ResetPassword(ctx, "ada@example.com", "the-token", "new-pw")
		assertStatus(t, err, http.StatusBadRequest)
	})
}

func TestResetThenLoginRoundTrip(t *testing.T) {
	// End-to-end over the real hasher: request a reset, consume it, then
	// authenticate with the new password and fail with the old one.
	ctx := context.Background()
	hasher := auth.NewArgon2idHasher()

	oldHash, err := hasher.Hash("old-password")
	require.NoError(t, err)

	accountID := ulid.Make()
	stored := &auth.Account{ID: accountID, Username: "ada@example.com", PasswordHash: oldHash}

	accounts := mocks.NewMockAccountRepository(t)
	mailer := mocks.NewMockMailer(t)

	var rawToken string
	accounts.On("GetByUsername", ctx, "ada@example.com").Return(stored, nil)
	accounts.On("SetResetToken", ctx, accountID, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) {
			hash := args.String(2)
			expires := args.Get(3).(time.Time)
			stored.ResetTokenHash = &hash
			stored.ResetTokenExpiresAt = &expires
			stored.ResetVerified = false
		}).
		Return(nil)
	mailer.On("SendPasswordReset", ctx, "ada@example.com", mock.Anything).
		Run(func(args mock.Arguments) { rawToken = args.String(2) }).
		Return(nil)
	accounts.On("ConsumeReset", ctx, accountID, mock.Anything).
		Run(func(args mock.Arguments) {
			stored.PasswordHash = args.String(2)
			stored.ResetTokenHash = nil
			stored.ResetTokenExpiresAt = nil
			stored.ResetVerified = false
		}).
		Return(nil)

	resets, err := auth.NewPasswordResetService(accounts, hasher, mailer)
	require.NoError(t, err)
	svc, err := auth.NewService(accounts, hasher, auth.NewTokenManager(testSecret, time.Hour))
	require.NoError(t, err)

	require.NoError(t, resets.RequestReset(ctx, "ada@example.com"))
	require.NotEmpty(t, rawToken)
	require.NoError(t, resets.ResetPassword(ctx, "ada@example.com", rawToken, "new-password"))

	// Reset state is fully cleared, no partial remnants.
	assert.Nil(t, stored.ResetTokenHash)
	assert.Nil(t, stored.ResetTokenExpiresAt)
	assert.False(t, stored.ResetVerified)

	_, _, err = svc.Login(ctx, "ada@example.com", "new-password")
	require.NoError(t, err)

	_, _, err = svc.Login(ctx, "ada@example.com", "old-password")
	assertStatus(t, err, http.StatusUnauthorized)
}
