// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package web

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/inkpress/inkpress/internal/apperr"
	"github.com/inkpress/inkpress/internal/blog"
)

type postResponse struct {
	ID        string `json:"id"`
	AuthorID  string `json:"author_id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func toPostResponse(post *blog.Post) postResponse {
	return postResponse{
		ID:        post.ID.String(),
		AuthorID:  post.AuthorID.String(),
		Title:     post.Title,
		Content:   post.Content,
		CreatedAt: post.CreatedAt.Format(time.RFC3339),
		UpdatedAt: post.UpdatedAt.Format(time.RFC3339),
	}
}

func validatePostBody(title, content string) (string, string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", "", apperr.BadRequest("title is required")
	}
	if len(title) > maxTitleLen {
		return "", "", apperr.BadRequest("title is too long")
	}
	if strings.TrimSpace(content) == "" {
		return "", "", apperr.BadRequest("content is required")
	}
	if len(content) > maxPostContentLen {
		return "", "", apperr.BadRequest("content is too long")
	}
	return title, content, nil
}

func (s *Server) handleListPosts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, s.logger, apperr.BadRequest("limit must be a non-negative integer"))
			return
		}
		limit = parsed
	}

	posts, err := s.blogs.ListPosts(r.Context(), limit)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	out := make([]postResponse, 0, len(posts))
	for _, post := range posts {
		out = append(out, toPostResponse(post))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleGetPost(w http.ResponseWriter, r *http.Request) {
	id, err := pathULID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	post, err := s.blogs.GetPost(r.Context(), id)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, toPostResponse(post))
}

func (s *Server) handleCreatePost(w http.ResponseWriter, r *http.Request) {
	actor, ok := accountID(r.Context())
	if !ok {
		writeError(w, s.logger, apperr.Internal("request reached a protected handler without an account"))
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	title, content, err := validatePostBody(req.Title, req.Content)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	post, err := s.blogs.CreatePost(r.Context(), actor, title, content)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toPostResponse(post))
}

func (s *Server) handleUpdatePost(w http.ResponseWriter, r *http.Request) {
	actor, ok := accountID(r.Context())
	if !ok {
		writeError(w, s.logger, apperr.Internal("request reached a protected handler without an account"))
		return
	}
	id, err := pathULID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	var req struct {
		Title   string `json:"title"`
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	title, content, err := validatePostBody(req.Title, req.Content)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.blogs.UpdatePost(r.Context(), actor, id, title, content); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeletePost(w http.ResponseWriter, r *http.Request) {
	actor, ok := accountID(r.Context())
	if !ok {
		writeError(w, s.logger, apperr.Internal("request reached a protected handler without an account"))
		return
	}
	id, err := pathULID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.blogs.DeletePost(r.Context(), actor, id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
