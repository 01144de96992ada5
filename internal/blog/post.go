// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package blog

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Post is a top-level piece of content owned by exactly one account.
// Deleting the owning account deletes its posts.
type Post struct {
	ID        ulid.ULID
	AuthorID  ulid.ULID
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewPost creates a Post with a fresh ID and timestamps.
func NewPost(authorID ulid.ULID, title, content string) (*Post, error) {
	if authorID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("POST_INVALID_AUTHOR").Errorf("author id is required")
	}
	if title == "" {
		return nil, oops.Code("POST_INVALID_TITLE").Errorf("title cannot be empty")
	}
	now := time.Now().UTC()
	return &Post{
		ID:        ulid.Make(),
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// PostRepository manages post persistence.
type PostRepository interface {
	// Create stores a new post.
	Create(ctx context.Context, post *Post) error

	// GetByID retrieves a post by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Post, error)

	// List returns posts newest-first, capped at limit.
	List(ctx context.Context, limit int) ([]*Post, error)

	// Update replaces a post's title and content in a single statement
	// conditional on ownership. Zero matched rows, whether the post is
	// gone or owned by someone else, return ErrNotFound.
	Update(ctx context.Context, id, owner ulid.ULID, title, content string) error

	// Delete removes a post conditional on ownership; its comments
	// cascade at the storage layer. Zero matched rows return ErrNotFound.
	Delete(ctx context.Context, id, owner ulid.ULID) error
}
