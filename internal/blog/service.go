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

// Service coordinates post and comment operations. Every mutation runs the
// ownership check first to distinguish a missing resource from a forbidden
// one, then executes as a single actor-conditional statement at the storage
// layer, so a row that changes hands between check and write matches zero
// rows instead of being clobbered.
type Service struct {
	posts      PostRepository
	comments   CommentRepository
	authorizer *Authorizer
}

// NewService creates a new Service.
func NewService(posts PostRepository, comments CommentRepository, authorizer *Authorizer) (*Service, error) {
	if posts == nil {
		return nil, oops.Code("BLOG_SERVICE_INVALID").Errorf("post repository is required")
	}
	if comments == nil {
		return nil, oops.Code("BLOG_SERVICE_INVALID").Errorf("comment repository is required")
	}
	if authorizer == nil {
		return nil, oops.Code("BLOG_SERVICE_INVALID").Errorf("authorizer is required")
	}
	return &Service{posts: posts, comments: comments, authorizer: authorizer}, nil
}

// CreatePost creates a post owned by the actor.
func (s *Service) CreatePost(ctx context.Context, actor ulid.ULID, title, content string) (*Post, error) {
	post, err := NewPost(actor, title, content)
	if err != nil {
		return nil, err
	}
	if err := s.posts.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetPost retrieves a single post. Public read, no authorization.
func (s *Service) GetPost(ctx context.Context, id ulid.ULID) (*Post, error) {
	post, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound("post does not exist")
		}
		return nil, err
	}
	return post, nil
}

// ListPosts returns recent posts. Public read, no authorization.
func (s *Service) ListPosts(ctx context.Context, limit int) ([]*Post, error) {
	return s.posts.List(ctx, limit)
}

// UpdatePost edits a post after the ownership check.
func (s *Service) UpdatePost(ctx context.Context, actor, postID ulid.ULID, title, content string) error {
	if err := s.authorizer.AuthorizePost(ctx, postID, actor); err != nil {
		return err
	}
	err := s.posts.Update(ctx, postID, actor, title, content)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("post does not exist")
	}
	return err
}

// DeletePost removes a post after the ownership check.
func (s *Service) DeletePost(ctx context.Context, actor, postID ulid.ULID) error {
	if err := s.authorizer.AuthorizePost(ctx, postID, actor); err != nil {
		return err
	}
	err := s.posts.Delete(ctx, postID, actor)
	if errors.Is(err, ErrNotFound) {
		// Lost a benign race: someone else deleted it after the check.
		return apperr.NotFound("post does not exist")
	}
	return err
}

// CreateComment attaches a comment to an existing post. Any authenticated
// account may comment; a missing post surfaces as the storage layer's
// foreign-key violation and classifies to 400.
func (s *Service) CreateComment(ctx context.Context, actor, postID ulid.ULID, content string) (*Comment, error) {
	comment, err := NewComment(postID, actor, content)
	if err != nil {
		return nil, err
	}
	if err := s.comments.Create(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}

// ListComments returns a post's comments. Public read, no authorization.
func (s *Service) ListComments(ctx context.Context, postID ulid.ULID) ([]*Comment, error) {
	return s.comments.ListByPost(ctx, postID)
}

// UpdateComment edits a comment after the cascade check.
func (s *Service) UpdateComment(ctx context.Context, actor, commentID ulid.ULID, content string) error {
	if err := s.authorizer.AuthorizeComment(ctx, commentID, actor); err != nil {
		return err
	}
	err := s.comments.Update(ctx, commentID, actor, content)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("comment does not exist")
	}
	return err
}

// DeleteComment removes a comment after the cascade check.
func (s *Service) DeleteComment(ctx context.Context, actor, commentID ulid.ULID) error {
	if err := s.authorizer.AuthorizeComment(ctx, commentID, actor); err != nil {
		return err
	}
	err := s.comments.Delete(ctx, commentID, actor)
	if errors.Is(err, ErrNotFound) {
		return apperr.NotFound("comment does not exist")
	}
	return err
}
