// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package blog_test

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/inkpress/inkpress/internal/blog"
	"github.com/inkpress/inkpress/internal/blog/mocks"
)

func newService(t *testing.T) (*blog.Service, *mocks.MockPostRepository, *mocks.MockCommentRepository) {
	t.Helper()
	posts := mocks.NewMockPostRepository(t)
	comments := mocks.NewMockCommentRepository(t)
	authorizer, err := blog.NewAuthorizer(posts, comments)
	require.NoError(t, err)
	svc, err := blog.NewService(posts, comments, authorizer)
	require.NoError(t, err)
	return svc, posts, comments
}

func TestNewService_Validation(t *testing.T) {
	posts := &mocks.MockPostRepository{}
	comments := &mocks.MockCommentRepository{}
	authorizer, err := blog.NewAuthorizer(posts, comments)
	require.NoError(t, err)

	_, err = blog.NewService(nil, comments, authorizer)
	require.Error(t, err)

	_, err = blog.NewService(posts, nil, authorizer)
	require.Error(t, err)

	_, err = blog.NewService(posts, comments, nil)
	require.Error(t, err)
}

func TestCreatePost(t *testing.T) {
	actor := ulid.Make()

	t.Run("success", func(t *testing.T) {
		svc, posts, _ := newService(t)
		posts.On("Create", mock.Anything, mock.AnythingOfType("*blog.Post")).Return(nil)

		post, err := svc.CreatePost(context.Background(), actor, "First", "Hello")
		require.NoError(t, err)
		assert.Equal(t, actor, post.AuthorID)
		assert.Equal(t, "First", post.Title)
		assert.NotZero(t, post.ID)
	})

	t.Run("empty title rejected", func(t *testing.T) {
		svc, _, _ := newService(t)

		_, err := svc.CreatePost(context.Background(), actor, "", "Hello")
		require.Error(t, err)
	})

	t.Run("storage error propagates", func(t *testing.T) {
		svc, posts, _ := newService(t)
		boom := errors.New("insert failed")
		posts.On("Create", mock.Anything, mock.AnythingOfType("*blog.Post")).Return(boom)

		_, err := svc.CreatePost(context.Background(), actor, "First", "Hello")
		require.ErrorIs(t, err, boom)
	})
}

func TestUpdatePost_OwnershipEnforced(t *testing.T) {
	owner := ulid.Make()
	stranger := ulid.Make()
	post := &blog.Post{ID: ulid.Make(), AuthorID: owner, Title: "old", Content: "old"}

	t.Run("owner may edit", func(t *testing.T) {
		svc, posts, _ := newService(t)
		posts.On("GetByID", mock.Anything, post.ID).Return(post, nil)
		posts.On("Update", mock.Anything, post.ID, owner, "new", "body").Return(nil)

		require.NoError(t, svc.UpdatePost(context.Background(), owner, post.ID, "new", "body"))
	})

	t.Run("stranger forbidden, no mutation attempted", func(t *testing.T) {
		svc, posts, _ := newService(t)
		posts.On("GetByID", mock.Anything, post.ID).Return(post, nil)

		err := svc.UpdatePost(context.Background(), stranger, post.ID, "new", "body")
		assertStatus(t, err, http.StatusForbidden)
		posts.AssertNotCalled(t, "Update",
			mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestDeletePost_RaceAfterCheck(t *testing.T) {
	owner := ulid.Make()
	post := &blog.Post{ID: ulid.Make(), AuthorID: owner, Title: "t", Content: "c"}

	svc, posts, _ := newService(t)
	posts.On("GetByID", mock.Anything, post.ID).Return(post, nil)
	posts.On("Delete", mock.Anything, post.ID, owner).Return(blog.ErrNotFound)

	err := svc.DeletePost(context.Background(), owner, post.ID)
	assertStatus(t, err, http.StatusNotFound)
}

func TestGetPost(t *testing.T) {
	post := &blog.Post{ID: ulid.Make(), AuthorID: ulid.Make(), Title: "t", Content: "c"}

	t.Run("found", func(t *testing.T) {
		svc, posts, _ := newService(t)
		posts.On("GetByID", mock.Anything, post.ID).Return(post, nil)

		got, err := svc.GetPost(context.Background(), post.ID)
		require.NoError(t, err)
		assert.Equal(t, post, got)
	})

	t.Run("missing is 404", func(t *testing.T) {
		svc, posts, _ := newService(t)
		posts.On("GetByID", mock.Anything, post.ID).Return(nil, blog.ErrNotFound)

		_, err := svc.GetPost(context.Background(), post.ID)
		assertStatus(t, err, http.StatusNotFound)
	})
}

func TestCreateComment(t *testing.T) {
	actor := ulid.Make()
	postID := ulid.Make()

	svc, _, comments := newService(t)
	comments.On("Create", mock.Anything, mock.AnythingOfType("*blog.Comment")).Return(nil)

	comment, err := svc.CreateComment(context.Background(), actor, postID, "nice post")
	require.NoError(t, err)
	require.NotNil(t, comment.AuthorID)
	assert.Equal(t, actor, *comment.AuthorID)
	assert.Equal(t, postID, comment.PostID)
}

func TestDeleteComment_Cascade(t *testing.T) {
	postOwner := ulid.Make()
	commenter := ulid.Make()
	stranger := ulid.Make()

	post := &blog.Post{ID: ulid.Make(), AuthorID: postOwner, Title: "t", Content: "c"}
	comment := &blog.Comment{ID: ulid.Make(), PostID: post.ID, AuthorID: &commenter, Content: "hi"}

	t.Run("author deletes own comment", func(t *testing.T) {
		svc, _, comments := newService(t)
		comments.On("GetByID", mock.Anything, comment.ID).Return(comment, nil)
		comments.On("Delete", mock.Anything, comment.ID, commenter).Return(nil)

		require.NoError(t, svc.DeleteComment(context.Background(), commenter, comment.ID))
	})

	t.Run("post owner deletes someone else's comment", func(t *testing.T) {
		svc, posts, comments := newService(t)
		comments.On("GetByID", mock.Anything, comment.ID).Return(comment, nil)
		posts.On("GetByID", mock.Anything, post.ID).Return(post, nil)
		comments.On("Delete", mock.Anything, comment.ID, postOwner).Return(nil)

		require.NoError(t, svc.DeleteComment(context.Background(), postOwner, comment.ID))
	})

	t.Run("stranger forbidden", func(t *testing.T) {
		svc, posts, comments := newService(t)
		comments.On("GetByID", mock.Anything, comment.ID).Return(comment, nil)
		posts.On("GetByID", mock.Anything, post.ID).Return(post, nil)

		err := svc.DeleteComment(context.Background(), stranger, comment.ID)
		assertStatus(t, err, http.StatusForbidden)
		comments.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestUpdateComment(t *testing.T) {
	commenter := ulid.Make()
	comment := &blog.Comment{ID: ulid.Make(), PostID: ulid.Make(), AuthorID: &commenter, Content: "old"}

	svc, _, comments := newService(t)
	comments.On("GetByID", mock.Anything, comment.ID).Return(comment, nil)
	comments.On("Update", mock.Anything, comment.ID, commenter, "new").Return(nil)

	require.NoError(t, svc.UpdateComment(context.Background(), commenter, comment.ID, "new"))
}
