// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

// Package postgres provides PostgreSQL implementations of auth repositories.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/inkpress/inkpress/internal/auth"
)

// pool abstracts *pgxpool.Pool so repositories can be tested with pgxmock.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const accountColumns = `id, username, password_hash, first_name, last_name,
	       reset_token_hash, reset_token_expires_at, reset_verified,
	       created_at, updated_at`

// AccountRepository implements auth.AccountRepository using PostgreSQL.
type AccountRepository struct {
	pool pool
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

// Create stores a new account.
func (r *AccountRepository) Create(ctx context.Context, account *auth.Account) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO accounts (
			id, username, password_hash, first_name, last_name,
			reset_token_hash, reset_token_expires_at, reset_verified,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`,
		account.ID.String(),
		account.Username,
		account.PasswordHash,
		account.FirstName,
		account.LastName,
		account.ResetTokenHash,
		account.ResetTokenExpiresAt,
		account.ResetVerified,
		account.CreatedAt,
		account.UpdatedAt,
	)
	if err != nil {
		return oops.Code("ACCOUNT_CREATE_FAILED").
			With("operation", "insert account").
			With("username", account.Username).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves an account by ID.
func (r *AccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id.String())

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_ID_FAILED").
			With("operation", "get account by id").
			With("id", id.String()).
			Wrap(err)
	}
	return account, nil
}

// GetByUsername retrieves an account by username (case-insensitive).
func (r *AccountRepository) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE LOWER(username) = LOWER($1)
	`, username)

	account, err := scanAccount(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("ACCOUNT_NOT_FOUND").
			With("username", username).
			Wrap(auth.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("ACCOUNT_GET_BY_USERNAME_FAILED").
			With("operation", "get account by username").
			With("username", username).
			Wrap(err)
	}
	return account, nil
}

// UpdateProfile updates the optional profile fields.
func (r *AccountRepository) UpdateProfile(ctx context.Context, id ulid.ULID, firstName, lastName *string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET first_name = $2, last_name = $3, updated_at = $4
		WHERE id = $1
	`, id.String(), firstName, lastName, time.Now().UTC())
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_PROFILE_FAILED").
			With("operation", "update profile").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// UpdatePassword replaces only the password hash.
func (r *AccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET password_hash = $2, updated_at = $3
		WHERE id = $1
	`, id.String(), passwordHash, time.Now().UTC())
	if err != nil {
		return oops.Code("ACCOUNT_UPDATE_PASSWORD_FAILED").
			With("operation", "update password").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// SetResetToken stores the token hash and expiry together and clears any
// prior verified flag. The schema's CHECK constraint keeps hash and expiry
// paired even if a future caller gets this wrong.
func (r *AccountRepository) SetResetToken(ctx context.Context, id ulid.ULID, tokenHash string, expiresAt time.Time) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET
			reset_token_hash = $2,
			reset_token_expires_at = $3,
			reset_verified = FALSE,
			updated_at = $4
		WHERE id = $1
	`, id.String(), tokenHash, expiresAt, time.Now().UTC())
	if err != nil {
		return oops.Code("ACCOUNT_SET_RESET_TOKEN_FAILED").
			With("operation", "set reset token").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// ListPendingResets returns accounts whose reset token is unexpired as of now.
func (r *AccountRepository) ListPendingResets(ctx context.Context, now time.Time) ([]*auth.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE reset_token_hash IS NOT NULL AND reset_token_expires_at > $1
	`, now)
	if err != nil {
		return nil, oops.Code("ACCOUNT_LIST_PENDING_RESETS_FAILED").
			With("operation", "list pending resets").
			Wrap(err)
	}
	defer rows.Close()

	var accounts []*auth.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, oops.Code("ACCOUNT_LIST_PENDING_RESETS_FAILED").
				With("operation", "scan pending reset row").
				Wrap(err)
		}
		accounts = append(accounts, account)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ACCOUNT_LIST_PENDING_RESETS_FAILED").
			With("operation", "iterate pending resets").
			Wrap(err)
	}
	return accounts, nil
}

// MarkResetVerified sets the verified flag. Conditional on a token hash
// still being present so the flag can never be true without one.
func (r *AccountRepository) MarkResetVerified(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET reset_verified = TRUE, updated_at = $2
		WHERE id = $1 AND reset_token_hash IS NOT NULL
	`, id.String(), time.Now().UTC())
	if err != nil {
		return oops.Code("ACCOUNT_MARK_RESET_VERIFIED_FAILED").
			With("operation", "mark reset verified").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// ConsumeReset replaces the password hash and clears all reset-token state
// in one conditional statement. A concurrent consume makes the second
// caller see zero rows, which surfaces as ErrNotFound.
func (r *AccountRepository) ConsumeReset(ctx context.Context, id ulid.ULID, newPasswordHash string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE accounts SET
			password_hash = $2,
			reset_token_hash = NULL,
			reset_token_expires_at = NULL,
			reset_verified = FALSE,
			updated_at = $3
		WHERE id = $1 AND reset_token_hash IS NOT NULL
	`, id.String(), newPasswordHash, time.Now().UTC())
	if err != nil {
		return oops.Code("ACCOUNT_CONSUME_RESET_FAILED").
			With("operation", "consume reset").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// Delete removes an account. Post rows cascade and comment authorship is
// nulled by the schema's foreign keys.
func (r *AccountRepository) Delete(ctx context.Context, id ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM accounts WHERE id = $1
	`, id.String())
	if err != nil {
		return oops.Code("ACCOUNT_DELETE_FAILED").
			With("operation", "delete account").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("ACCOUNT_NOT_FOUND").
			With("id", id.String()).
			Wrap(auth.ErrNotFound)
	}
	return nil
}

// scanAccount scans a single row into an Account.
// Callers are responsible for handling pgx.ErrNoRows.
func scanAccount(row pgx.Row) (*auth.Account, error) {
	var (
		idStr               string
		username            string
		passwordHash        string
		firstName           *string
		lastName            *string
		resetTokenHash      *string
		resetTokenExpiresAt *time.Time
		resetVerified       bool
		createdAt           time.Time
		updatedAt           time.Time
	)

	err := row.Scan(
		&idStr,
		&username,
		&passwordHash,
		&firstName,
		&lastName,
		&resetTokenHash,
		&resetTokenExpiresAt,
		&resetVerified,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("ACCOUNT_SCAN_FAILED").
			With("operation", "scan account").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("ACCOUNT_INVALID_ID").
			With("operation", "parse account id").
			With("id", idStr).
			Wrap(err)
	}

	return &auth.Account{
		ID:                  id,
		Username:            username,
		PasswordHash:        passwordHash,
		FirstName:           firstName,
		LastName:            lastName,
		ResetTokenHash:      resetTokenHash,
		ResetTokenExpiresAt: resetTokenExpiresAt,
		ResetVerified:       resetVerified,
		CreatedAt:           createdAt,
		UpdatedAt:           updatedAt,
	}, nil
}

// Compile-time interface check.
var _ auth.AccountRepository = (*AccountRepository)(nil)
