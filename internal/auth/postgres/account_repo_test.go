// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package postgres_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/inkpress/inkpress/internal/auth"
	"github.com/inkpress/inkpress/internal/auth/postgres"
	"github.com/inkpress/inkpress/pkg/errutil"
)

var accountCols = []string{
	"id", "username", "password_hash", "first_name", "last_name",
	"reset_token_hash", "reset_token_expires_at", "reset_verified",
	"created_at", "updated_at",
}

func strPtr(s string) *string { return &s }

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err, "failed to create mock")
	t.Cleanup(func() {
		assert.NoError(t, mock.ExpectationsWereMet(), "unfulfilled expectations")
		mock.Close()
	})
	return mock
}

func TestAccountRepository_Create(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewAccountRepository(mock)

	account, err := auth.NewAccount("ada@example.com", "$argon2id$hash")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(account.ID.String(), "ada@example.com", "$argon2id$hash",
			nil, nil, nil, nil, false, account.CreatedAt, account.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), account))
}

func TestAccountRepository_Create_Error(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewAccountRepository(mock)

	account, err := auth.NewAccount("ada@example.com", "$argon2id$hash")
	require.NoError(t, err)

	mock.ExpectExec("INSERT INTO accounts").
		WithArgs(account.ID.String(), "ada@example.com", "$argon2id$hash",
			nil, nil, nil, nil, false, account.CreatedAt, account.UpdatedAt).
		WillReturnError(errors.New("connection refused"))

	err = repo.Create(context.Background(), account)
	require.Error(t, err)
	errutil.AssertErrorCode(t, err, "ACCOUNT_CREATE_FAILED")
}

func TestAccountRepository_GetByUsername(t *testing.T) {
	t.Run("returns account", func(t *testing.T) {
		mock := newMock(t)
		repo := postgres.NewAccountRepository(mock)

		id := ulid.Make()
		now := time.Now().UTC()
		rows := pgxmock.NewRows(accountCols).
			AddRow(id.String(), "ada@example.com", "$argon2id$hash",
				strPtr("Ada"), nil, nil, nil, false, now, now)

		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WithArgs("ada@example.com").
			WillReturnRows(rows)

		account, err := repo.GetByUsername(context.Background(), "ada@example.com")
		require.NoError(t, err)
		assert.Equal(t, id, account.ID)
		assert.Equal(t, "ada@example.com", account.Username)
		require.NotNil(t, account.FirstName)
		assert.Equal(t, "Ada", *account.FirstName)
		assert.Nil(t, account.ResetTokenHash)
	})

	t.Run("wraps ErrNotFound on no rows", func(t *testing.T) {
		mock := newMock(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectQuery("SELECT (.+) FROM accounts").
			WithArgs("ghost@example.com").
			WillReturnRows(pgxmock.NewRows(accountCols))

		_, err := repo.GetByUsername(context.Background(), "ghost@example.com")
		require.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestAccountRepository_UpdatePassword(t *testing.T) {
	id := ulid.Make()

	t.Run("updates existing account", func(t *testing.T) {
		mock := newMock(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectExec("UPDATE accounts SET password_hash").
			WithArgs(id.String(), "$argon2id$new", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.UpdatePassword(context.Background(), id, "$argon2id$new"))
	})

	t.Run("missing account surfaces ErrNotFound", func(t *testing.T) {
		mock := newMock(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectExec("UPDATE accounts SET password_hash").
			WithArgs(id.String(), "$argon2id$new", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.UpdatePassword(context.Background(), id, "$argon2id$new")
		require.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestAccountRepository_SetResetToken(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewAccountRepository(mock)

	id := ulid.Make()
	expires := time.Now().Add(time.Hour).UTC()

	mock.ExpectExec("UPDATE accounts SET").
		WithArgs(id.String(), "tokenhash", expires, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetResetToken(context.Background(), id, "tokenhash", expires))
}

func TestAccountRepository_ListPendingResets(t *testing.T) {
	mock := newMock(t)
	repo := postgres.NewAccountRepository(mock)

	id := ulid.Make()
	now := time.Now().UTC()
	expires := now.Add(30 * time.Minute)
	rows := pgxmock.NewRows(accountCols).
		AddRow(id.String(), "ada@example.com", "$argon2id$hash",
			nil, nil, strPtr("tokenhash"), &expires, false, now, now)

	mock.ExpectQuery("SELECT (.+) FROM accounts").
		WithArgs(now).
		WillReturnRows(rows)

	pending, err := repo.ListPendingResets(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, id, pending[0].ID)
	require.NotNil(t, pending[0].ResetTokenHash)
	assert.Equal(t, "tokenhash", *pending[0].ResetTokenHash)
}

func TestAccountRepository_MarkResetVerified(t *testing.T) {
	id := ulid.Make()

	t.Run("sets flag when a token is present", func(t *testing.T) {
		mock := newMock(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectExec("UPDATE accounts SET reset_verified").
			WithArgs(id.String(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.MarkResetVerified(context.Background(), id))
	})

	t.Run("no token means no flag", func(t *testing.T) {
		mock := newMock(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectExec("UPDATE accounts SET reset_verified").
			WithArgs(id.String(), pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.MarkResetVerified(context.Background(), id)
		require.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestAccountRepository_ConsumeReset(t *testing.T) {
	id := ulid.Make()

	t.Run("consumes pending reset", func(t *testing.T) {
		mock := newMock(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectExec("UPDATE accounts SET").
			WithArgs(id.String(), "$argon2id$new", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 1))

		require.NoError(t, repo.ConsumeReset(context.Background(), id, "$argon2id$new"))
	})

	t.Run("already-consumed reset surfaces ErrNotFound", func(t *testing.T) {
		mock := newMock(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectExec("UPDATE accounts SET").
			WithArgs(id.String(), "$argon2id$new", pgxmock.AnyArg()).
			WillReturnResult(pgxmock.NewResult("UPDATE", 0))

		err := repo.ConsumeReset(context.Background(), id, "$argon2id$new")
		require.ErrorIs(t, err, auth.ErrNotFound)
	})
}

func TestAccountRepository_Delete(t *testing.T) {
	id := ulid.Make()

	t.Run("deletes account", func(t *testing.T) {
		mock := newMock(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectExec("DELETE FROM accounts").
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 1))

		require.NoError(t, repo.Delete(context.Background(), id))
	})

	t.Run("second delete affects zero rows and fails cleanly", func(t *testing.T) {
		mock := newMock(t)
		repo := postgres.NewAccountRepository(mock)

		mock.ExpectExec("DELETE FROM accounts").
			WithArgs(id.String()).
			WillReturnResult(pgxmock.NewResult("DELETE", 0))

		err := repo.Delete(context.Background(), id)
		require.ErrorIs(t, err, auth.ErrNotFound)
	})
}
