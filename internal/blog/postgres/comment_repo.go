// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/inkpress/inkpress/internal/blog"
)

const commentColumns = `id, post_id, author_id, content, created_at, updated_at`

// CommentRepository implements blog.CommentRepository using PostgreSQL.
type CommentRepository struct {
	pool pool
}

// NewCommentRepository creates a new CommentRepository.
func NewCommentRepository(pool pool) *CommentRepository {
	return &CommentRepository{pool: pool}
}

// Create stores a new comment. A dangling post reference violates the
// foreign key and surfaces as a constraint error.
func (r *CommentRepository) Create(ctx context.Context, comment *blog.Comment) error {
	var authorID *string
	if comment.AuthorID != nil {
		s := comment.AuthorID.String()
		authorID = &s
	}
	_, err := r.pool.Exec(ctx, `
		INSERT INTO comments (id, post_id, author_id, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		comment.ID.String(),
		comment.PostID.String(),
		authorID,
		comment.Content,
		comment.CreatedAt,
		comment.UpdatedAt,
	)
	if err != nil {
		return oops.Code("COMMENT_CREATE_FAILED").
			With("operation", "insert comment").
			With("post_id", comment.PostID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a comment by ID.
func (r *CommentRepository) GetByID(ctx context.Context, id ulid.ULID) (*blog.Comment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE id = $1
	`, id.String())

	comment, err := scanComment(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("COMMENT_NOT_FOUND").
			With("id", id.String()).
			Wrap(blog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("COMMENT_GET_FAILED").
			With("operation", "get comment by id").
			With("id", id.String()).
			Wrap(err)
	}
	return comment, nil
}

// ListByPost returns a post's comments oldest-first.
func (r *CommentRepository) ListByPost(ctx context.Context, postID ulid.ULID) ([]*blog.Comment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+commentColumns+`
		FROM comments
		WHERE post_id = $1
		ORDER BY created_at ASC
	`, postID.String())
	if err != nil {
		return nil, oops.Code("COMMENT_LIST_FAILED").
			With("operation", "list comments").
			With("post_id", postID.String()).
			Wrap(err)
	}
	defer rows.Close()

	var comments []*blog.Comment
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, oops.Code("COMMENT_LIST_FAILED").
				With("operation", "scan comment row").
				Wrap(err)
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("COMMENT_LIST_FAILED").
			With("operation", "iterate comments").
			Wrap(err)
	}
	return comments, nil
}

// commentActorPredicate restricts a mutation to rows the actor may touch:
// the comment's own author, or the owner of the parent post. Mirrors the
// authorizer's cascade so the mutation stays a single conditional statement.
const commentActorPredicate = `
	id = $1 AND (
		author_id = $2
		OR EXISTS (
			SELECT 1 FROM posts
			WHERE posts.id = comments.post_id AND posts.author_id = $2
		)
	)`

// Update replaces a comment's content, conditional on the actor holding
// authority over the row.
func (r *CommentRepository) Update(ctx context.Context, id, actor ulid.ULID, content string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE comments SET content = $3, updated_at = $4
		WHERE `+commentActorPredicate+`
	`, id.String(), actor.String(), content, time.Now().UTC())
	if err != nil {
		return oops.Code("COMMENT_UPDATE_FAILED").
			With("operation", "update comment").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("COMMENT_NOT_FOUND").
			With("id", id.String()).
			Wrap(blog.ErrNotFound)
	}
	return nil
}

// Delete removes a comment, conditional on the actor holding authority
// over the row.
func (r *CommentRepository) Delete(ctx context.Context, id, actor ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM comments
		WHERE `+commentActorPredicate+`
	`, id.String(), actor.String())
	if err != nil {
		return oops.Code("COMMENT_DELETE_FAILED").
			With("operation", "delete comment").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("COMMENT_NOT_FOUND").
			With("id", id.String()).
			Wrap(blog.ErrNotFound)
	}
	return nil
}

// scanComment scans a single row into a Comment.
// Callers are responsible for handling pgx.ErrNoRows.
func scanComment(row pgx.Row) (*blog.Comment, error) {
	var (
		idStr     string
		postStr   string
		authorStr *string
		content   string
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&idStr, &postStr, &authorStr, &content, &createdAt, &updatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("COMMENT_SCAN_FAILED").
			With("operation", "scan comment").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("COMMENT_INVALID_ID").
			With("operation", "parse comment id").
			With("id", idStr).
			Wrap(err)
	}
	postID, err := ulid.Parse(postStr)
	if err != nil {
		return nil, oops.Code("COMMENT_INVALID_ID").
			With("operation", "parse post id").
			With("id", postStr).
			Wrap(err)
	}
	var authorID *ulid.ULID
	if authorStr != nil {
		parsed, err := ulid.Parse(*authorStr)
		if err != nil {
			return nil, oops.Code("COMMENT_INVALID_ID").
				With("operation", "parse author id").
				With("id", *authorStr).
				Wrap(err)
		}
		authorID = &parsed
	}

	return &blog.Comment{
		ID:        id,
		PostID:    postID,
		AuthorID:  authorID,
		Content:   content,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Compile-time interface check.
var _ blog.CommentRepository = (*CommentRepository)(nil)
