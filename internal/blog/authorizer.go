// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package blog

import (
	"context"
	"errors"

	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/inkpress/inkpress/internal/apperr"
)

// Authorizer decides whether an acting account may mutate a post or
// comment. Failures never reveal who the actual owner is.
type Authorizer struct {
	posts    PostRepository
	comments CommentRepository
}

// NewAuthorizer creates a new Authorizer.
func NewAuthorizer(posts PostRepository, comments CommentRepository) (*Authorizer, error) {
	if posts == nil {
		return nil, oops.Code("AUTHORIZER_INVALID").Errorf("post repository is required")
	}
	if comments == nil {
		return nil, oops.Code("AUTHORIZER_INVALID").Errorf("comment repository is required")
	}
	return &Authorizer{posts: posts, comments: comments}, nil
}

// AuthorizePost succeeds iff actor owns the post. Posts have no parent, so
// there is no second authority to fall back to.
func (a *Authorizer) AuthorizePost(ctx context.Context, postID, actor ulid.ULID) error {
	post, err := a.posts.GetByID(ctx, postID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("post does not exist")
		}
		return oops.Code("POST_AUTHORIZE_FAILED").
			With("operation", "get post").
			With("post_id", postID.String()).
			Wrap(err)
	}
	if post.AuthorID == actor {
		return nil
	}
	return apperr.Forbidden("not allowed to modify this post")
}

// AuthorizeComment applies the two-tier ownership cascade:
//
//  1. The comment's own author may mutate it.
//  2. Otherwise the parent post's owner may -- this keeps comments whose
//     author account was deleted (author reference null) manageable
//     instead of orphaned forever.
//
// The parent lookup always runs when tier 1 fails, whether the author
// reference is null or merely someone else.
func (a *Authorizer) AuthorizeComment(ctx context.Context, commentID, actor ulid.ULID) error {
	comment, err := a.comments.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return apperr.NotFound("comment does not exist")
		}
		return oops.Code("COMMENT_AUTHORIZE_FAILED").
			With("operation", "get comment").
			With("comment_id", commentID.String()).
			Wrap(err)
	}

	if comment.AuthorID != nil && *comment.AuthorID == actor {
		return nil
	}

	post, err := a.posts.GetByID(ctx, comment.PostID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			// The schema guarantees a live parent; a missing one here
			// means the post vanished mid-request.
			return apperr.NotFound("post does not exist")
		}
		return oops.Code("COMMENT_AUTHORIZE_FAILED").
			With("operation", "get parent post").
			With("comment_id", commentID.String()).
			Wrap(err)
	}
	if post.AuthorID == actor {
		return nil
	}
	return apperr.Forbidden("not allowed to modify this comment")
}
