// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package blog

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"
)

// Comment is attached to a post. Its author reference is nullable: when the
// authoring account is deleted the comment survives with AuthorID nil,
// while the parent post is required for as long as the comment exists.
type Comment struct {
	ID        ulid.ULID
	PostID    ulid.ULID
	AuthorID  *ulid.ULID
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// NewComment creates a Comment with a fresh ID and timestamps.
func NewComment(postID, authorID ulid.ULID, content string) (*Comment, error) {
	if postID.Compare(ulid.ULID{}) == 0 {
		return nil, oops.Code("COMMENT_INVALID_POST").Errorf("post id is required")
	}
	if content == "" {
		return nil, oops.Code("COMMENT_INVALID_CONTENT").Errorf("content cannot be empty")
	}
	now := time.Now().UTC()
	return &Comment{
		ID:        ulid.Make(),
		PostID:    postID,
		AuthorID:  &authorID,
		Content:   content,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// CommentRepository manages comment persistence.
type CommentRepository interface {
	// Create stores a new comment against an existing post.
	Create(ctx context.Context, comment *Comment) error

	// GetByID retrieves a comment by ID.
	GetByID(ctx context.Context, id ulid.ULID) (*Comment, error)

	// ListByPost returns a post's comments oldest-first.
	ListByPost(ctx context.Context, postID ulid.ULID) ([]*Comment, error)

	// Update replaces a comment's content in a single statement
	// conditional on the ownership cascade: the actor must be the
	// comment's author or the parent post's owner. Zero matched rows
	// return ErrNotFound.
	Update(ctx context.Context, id, actor ulid.ULID, content string) error

	// Delete removes a comment under the same cascade condition as
	// Update. Zero matched rows return ErrNotFound.
	Delete(ctx context.Context, id, actor ulid.ULID) error
}
