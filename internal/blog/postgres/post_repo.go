// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

// Package postgres provides PostgreSQL implementations of blog repositories.
package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/oklog/ulid/v2"
	"github.com/samber/oops"

	"github.com/inkpress/inkpress/internal/blog"
)

// pool abstracts *pgxpool.Pool so repositories can be tested with pgxmock.
type pool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const postColumns = `id, author_id, title, content, created_at, updated_at`

// defaultListLimit caps unbounded post listings.
const defaultListLimit = 50

// PostRepository implements blog.PostRepository using PostgreSQL.
type PostRepository struct {
	pool pool
}

// NewPostRepository creates a new PostRepository.
func NewPostRepository(pool pool) *PostRepository {
	return &PostRepository{pool: pool}
}

// Create stores a new post.
func (r *PostRepository) Create(ctx context.Context, post *blog.Post) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO posts (id, author_id, title, content, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		post.ID.String(),
		post.AuthorID.String(),
		post.Title,
		post.Content,
		post.CreatedAt,
		post.UpdatedAt,
	)
	if err != nil {
		return oops.Code("POST_CREATE_FAILED").
			With("operation", "insert post").
			With("author_id", post.AuthorID.String()).
			Wrap(err)
	}
	return nil
}

// GetByID retrieves a post by ID.
func (r *PostRepository) GetByID(ctx context.Context, id ulid.ULID) (*blog.Post, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+postColumns+`
		FROM posts
		WHERE id = $1
	`, id.String())

	post, err := scanPost(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, oops.Code("POST_NOT_FOUND").
			With("id", id.String()).
			Wrap(blog.ErrNotFound)
	}
	if err != nil {
		return nil, oops.Code("POST_GET_FAILED").
			With("operation", "get post by id").
			With("id", id.String()).
			Wrap(err)
	}
	return post, nil
}

// List returns posts newest-first, capped at limit.
func (r *PostRepository) List(ctx context.Context, limit int) ([]*blog.Post, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	rows, err := r.pool.Query(ctx, `
		SELECT `+postColumns+`
		FROM posts
		ORDER BY created_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, oops.Code("POST_LIST_FAILED").
			With("operation", "list posts").
			Wrap(err)
	}
	defer rows.Close()

	var posts []*blog.Post
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, oops.Code("POST_LIST_FAILED").
				With("operation", "scan post row").
				Wrap(err)
		}
		posts = append(posts, post)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("POST_LIST_FAILED").
			With("operation", "iterate posts").
			Wrap(err)
	}
	return posts, nil
}

// Update replaces a post's title and content. The owner predicate makes the
// mutation conditional in a single statement, so a post deleted or reassigned
// between check and write matches zero rows instead of clobbering.
func (r *PostRepository) Update(ctx context.Context, id, owner ulid.ULID, title, content string) error {
	result, err := r.pool.Exec(ctx, `
		UPDATE posts SET title = $3, content = $4, updated_at = $5
		WHERE id = $1 AND author_id = $2
	`, id.String(), owner.String(), title, content, time.Now().UTC())
	if err != nil {
		return oops.Code("POST_UPDATE_FAILED").
			With("operation", "update post").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("POST_NOT_FOUND").
			With("id", id.String()).
			Wrap(blog.ErrNotFound)
	}
	return nil
}

// Delete removes a post conditional on ownership. Its comments cascade at
// the schema level.
func (r *PostRepository) Delete(ctx context.Context, id, owner ulid.ULID) error {
	result, err := r.pool.Exec(ctx, `
		DELETE FROM posts WHERE id = $1 AND author_id = $2
	`, id.String(), owner.String())
	if err != nil {
		return oops.Code("POST_DELETE_FAILED").
			With("operation", "delete post").
			With("id", id.String()).
			Wrap(err)
	}
	if result.RowsAffected() == 0 {
		return oops.Code("POST_NOT_FOUND").
			With("id", id.String()).
			Wrap(blog.ErrNotFound)
	}
	return nil
}

// scanPost scans a single row into a Post.
// Callers are responsible for handling pgx.ErrNoRows.
func scanPost(row pgx.Row) (*blog.Post, error) {
	var (
		idStr     string
		authorStr string
		title     string
		content   string
		createdAt time.Time
		updatedAt time.Time
	)

	err := row.Scan(&idStr, &authorStr, &title, &content, &createdAt, &updatedAt)
	if err != nil {
		// Propagate pgx.ErrNoRows unchanged for callers to handle with context.
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, err //nolint:wrapcheck // Callers wrap with context-specific info
		}
		return nil, oops.Code("POST_SCAN_FAILED").
			With("operation", "scan post").
			Wrap(err)
	}

	id, err := ulid.Parse(idStr)
	if err != nil {
		return nil, oops.Code("POST_INVALID_ID").
			With("operation", "parse post id").
			With("id", idStr).
			Wrap(err)
	}
	authorID, err := ulid.Parse(authorStr)
	if err != nil {
		return nil, oops.Code("POST_INVALID_ID").
			With("operation", "parse author id").
			With("id", authorStr).
			Wrap(err)
	}

	return &blog.Post{
		ID:        id,
		AuthorID:  authorID,
		Title:     title,
		Content:   content,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

// Compile-time interface check.
var _ blog.PostRepository = (*PostRepository)(nil)
