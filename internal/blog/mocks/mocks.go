// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

// Package mocks provides testify mocks for the blog package interfaces.
package mocks

import (
	"context"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/mock"

	"github.com/inkpress/inkpress/internal/blog"
)

// MockPostRepository is a testify mock for blog.PostRepository.
type MockPostRepository struct {
	mock.Mock
}

var _ blog.PostRepository = (*MockPostRepository)(nil)

// NewMockPostRepository creates a mock that asserts its expectations on
// test cleanup.
func NewMockPostRepository(t *testing.T) *MockPostRepository {
	t.Helper()
	m := &MockPostRepository{}
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockPostRepository) Create(ctx context.Context, post *blog.Post) error {
	args := m.Called(ctx, post)
	return args.Error(0)
}

func (m *MockPostRepository) GetByID(ctx context.Context, id ulid.ULID) (*blog.Post, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blog.Post), args.Error(1)
}

func (m *MockPostRepository) List(ctx context.Context, limit int) ([]*blog.Post, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*blog.Post), args.Error(1)
}

func (m *MockPostRepository) Update(ctx context.Context, id, owner ulid.ULID, title, content string) error {
	args := m.Called(ctx, id, owner, title, content)
	return args.Error(0)
}

func (m *MockPostRepository) Delete(ctx context.Context, id, owner ulid.ULID) error {
	args := m.Called(ctx, id, owner)
	return args.Error(0)
}

// MockCommentRepository is a testify mock for blog.CommentRepository.
type MockCommentRepository struct {
	mock.Mock
}

var _ blog.CommentRepository = (*MockCommentRepository)(nil)

// NewMockCommentRepository creates a mock that asserts its expectations on
// test cleanup.
func NewMockCommentRepository(t *testing.T) *MockCommentRepository {
	t.Helper()
	m := &MockCommentRepository{}
	t.Cleanup(func() { m.AssertExpectations(t) })
	return m
}

func (m *MockCommentRepository) Create(ctx context.Context, comment *blog.Comment) error {
	args := m.Called(ctx, comment)
	return args.Error(0)
}

func (m *MockCommentRepository) GetByID(ctx context.Context, id ulid.ULID) (*blog.Comment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*blog.Comment), args.Error(1)
}

func (m *MockCommentRepository) ListByPost(ctx context.Context, postID ulid.ULID) ([]*blog.Comment, error) {
	args := m.Called(ctx, postID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*blog.Comment), args.Error(1)
}

func (m *MockCommentRepository) Update(ctx context.Context, id, actor ulid.ULID, content string) error {
	args := m.Called(ctx, id, actor, content)
	return args.Error(0)
}

func (m *MockCommentRepository) Delete(ctx context.Context, id, actor ulid.ULID) error {
	args := m.Called(ctx, id, actor)
	return args.Error(0)
}
