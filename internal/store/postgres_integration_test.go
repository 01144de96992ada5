// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/inkpress/inkpress/internal/auth"
	authpg "github.com/inkpress/inkpress/internal/auth/postgres"
	"github.com/inkpress/inkpress/internal/blog"
	blogpg "github.com/inkpress/inkpress/internal/blog/postgres"
	"github.com/inkpress/inkpress/internal/store"
)

// startPostgres runs a throwaway PostgreSQL container and returns its DSN.
func startPostgres(t *testing.T) string {
	t.Helper()
	ctx := context.Background()

	container, err := postgres.Run(ctx,
		"postgres:16-alpine",
		postgres.WithDatabase("inkpress_test"),
		postgres.WithUsername("inkpress"),
		postgres.WithPassword("inkpress"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	dsn, err := container.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)
	return dsn
}

// TestSchema_ReferentialRules drives the migrated schema through the
// referential behavior the repositories rely on: comment authorship survives
// author deletion, comments follow their post, and posts follow their owner.
func TestSchema_ReferentialRules(t *testing.T) {
	ctx := context.Background()
	dsn := startPostgres(t)

	migrator, err := store.NewMigrator(dsn)
	require.NoError(t, err)
	require.NoError(t, migrator.Up())
	require.NoError(t, migrator.Close())

	pool, err := store.Connect(ctx, dsn)
	require.NoError(t, err)
	defer pool.Close()

	accounts := authpg.NewAccountRepository(pool)
	posts := blogpg.NewPostRepository(pool)
	comments := blogpg.NewCommentRepository(pool)

	owner, err := auth.NewAccount("owner", "not-a-real-hash")
	require.NoError(t, err)
	require.NoError(t, accounts.Create(ctx, owner))

	commenter, err := auth.NewAccount("commenter", "not-a-real-hash")
	require.NoError(t, err)
	require.NoError(t, accounts.Create(ctx, commenter))

	post, err := blog.NewPost(owner.ID, "Hello", "First post")
	require.NoError(t, err)
	require.NoError(t, posts.Create(ctx, post))

	comment, err := blog.NewComment(post.ID, commenter.ID, "nice post")
	require.NoError(t, err)
	require.NoError(t, comments.Create(ctx, comment))

	// Reset columns are paired by a table constraint: a token hash without
	// an expiry must be rejected at the schema level.
	_, err = pool.Exec(ctx, `
		UPDATE accounts SET reset_token_hash = 'dangling' WHERE id = $1
	`, owner.ID.String())
	require.Error(t, err)

	// Deleting the commenting account orphans its comments instead of
	// removing them.
	require.NoError(t, accounts.Delete(ctx, commenter.ID))

	got, err := comments.GetByID(ctx, comment.ID)
	require.NoError(t, err)
	assert.Nil(t, got.AuthorID)
	assert.Equal(t, "nice post", got.Content)

	// Deleting the post takes its comments with it.
	require.NoError(t, posts.Delete(ctx, post.ID, owner.ID))

	_, err = comments.GetByID(ctx, comment.ID)
	require.ErrorIs(t, err, blog.ErrNotFound)

	// Deleting the owning account takes its remaining posts with it.
	second, err := blog.NewPost(owner.ID, "Second", "body")
	require.NoError(t, err)
	require.NoError(t, posts.Create(ctx, second))

	require.NoError(t, accounts.Delete(ctx, owner.ID))

	_, err = posts.GetByID(ctx, second.ID)
	require.ErrorIs(t, err, blog.ErrNotFound)
}
