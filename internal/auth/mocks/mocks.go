// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

// Package mocks provides testify mocks for auth interfaces.
package mocks

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/inkpress/inkpress/internal/auth"
)

// MockAccountRepository is a mock implementation of auth.AccountRepository.
type MockAccountRepository struct {
	mock.Mock
}

// NewMockAccountRepository creates a MockAccountRepository with expectations
// asserted on test cleanup.
func NewMockAccountRepository(t *testing.T) *MockAccountRepository {
	m := &MockAccountRepository{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockAccountRepository) Create(ctx context.Context, account *auth.Account) error {
	args := m.Called(ctx, account)
	return args.Error(0)
}

func (m *MockAccountRepository) GetByID(ctx context.Context, id ulid.ULID) (*auth.Account, error) {
	args := m.Called(ctx, id)
	if a := args.Get(0); a != nil {
		return a.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) GetByUsername(ctx context.Context, username string) (*auth.Account, error) {
	args := m.Called(ctx, username)
	if a := args.Get(0); a != nil {
		return a.(*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) UpdateProfile(ctx context.Context, id ulid.ULID, firstName, lastName *string) error {
	args := m.Called(ctx, id, firstName, lastName)
	return args.Error(0)
}

func (m *MockAccountRepository) UpdatePassword(ctx context.Context, id ulid.ULID, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) SetResetToken(ctx context.Context, id ulid.ULID, tokenHash string, expiresAt time.Time) error {
	args := m.Called(ctx, id, tokenHash, expiresAt)
	return args.Error(0)
}

func (m *MockAccountRepository) ListPendingResets(ctx context.Context, now time.Time) ([]*auth.Account, error) {
	args := m.Called(ctx, now)
	if a := args.Get(0); a != nil {
		return a.([]*auth.Account), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockAccountRepository) MarkResetVerified(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockAccountRepository) ConsumeReset(ctx context.Context, id ulid.ULID, newPasswordHash string) error {
	args := m.Called(ctx, id, newPasswordHash)
	return args.Error(0)
}

func (m *MockAccountRepository) Delete(ctx context.Context, id ulid.ULID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockPasswordHasher is a mock implementation of auth.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a MockPasswordHasher with expectations
// asserted on test cleanup.
func NewMockPasswordHasher(t *testing.T) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)
	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)
	return args.Bool(0), args.Error(1)
}

// MockMailer is a mock implementation of auth.Mailer.
type MockMailer struct {
	mock.Mock
}

// NewMockMailer creates a MockMailer with expectations asserted on test
// cleanup.
func NewMockMailer(t *testing.T) *MockMailer {
	m := &MockMailer{}
	m.Mock.Test(t)
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockMailer) SendPasswordReset(ctx context.Context, recipient, token string) error {
	args := m.Called(ctx, recipient, token)
	return args.Error(0)
}

// Compile-time interface checks.
var (
	_ auth.AccountRepository = (*MockAccountRepository)(nil)
	_ auth.PasswordHasher    = (*MockPasswordHasher)(nil)
	_ auth.Mailer            = (*MockMailer)(nil)
)
