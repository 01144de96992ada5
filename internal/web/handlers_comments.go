// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package web

import (
	"net/http"
	"strings"
	"time"

	"github.com/inkpress/inkpress/internal/apperr"
	"github.com/inkpress/inkpress/internal/blog"
)

type commentResponse struct {
	ID        string  `json:"id"`
	PostID    string  `json:"post_id"`
	AuthorID  *string `json:"author_id"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"created_at"`
	UpdatedAt string  `json:"updated_at"`
}

func toCommentResponse(comment *blog.Comment) commentResponse {
	var authorID *string
	if comment.AuthorID != nil {
		s := comment.AuthorID.String()
		authorID = &s
	}
	return commentResponse{
		ID:        comment.ID.String(),
		PostID:    comment.PostID.String(),
		AuthorID:  authorID,
		Content:   comment.Content,
		CreatedAt: comment.CreatedAt.Format(time.RFC3339),
		UpdatedAt: comment.UpdatedAt.Format(time.RFC3339),
	}
}

func validateCommentBody(content string) (string, error) {
	if strings.TrimSpace(content) == "" {
		return "", apperr.BadRequest("content is required")
	}
	if len(content) > maxCommentLen {
		return "", apperr.BadRequest("content is too long")
	}
	return content, nil
}

func (s *Server) handleListComments(w http.ResponseWriter, r *http.Request) {
	postID, err := pathULID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	comments, err := s.blogs.ListComments(r.Context(), postID)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	out := make([]commentResponse, 0, len(comments))
	for _, comment := range comments {
		out = append(out, toCommentResponse(comment))
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateComment(w http.ResponseWriter, r *http.Request) {
	actor, ok := accountID(r.Context())
	if !ok {
		writeError(w, s.logger, apperr.Internal("request reached a protected handler without an account"))
		return
	}
	postID, err := pathULID(r)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	var req struct {
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	content, err := validateCommentBody(req.Content)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	comment, err := s.blogs.CreateComment(r.Context(), actor, postID, content)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusCreated, toCommentResponse(comment))
}

func (s *Server) handleUpdateComment(w http.ResponseWriter, r *http.Request) {
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
		Content string `json:"content"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	content, err := validateCommentBody(req.Content)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.blogs.UpdateComment(r.Context(), actor, id, content); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteComment(w http.ResponseWriter, r *http.Request) {
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

	if err := s.blogs.DeleteComment(r.Context(), actor, id); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
