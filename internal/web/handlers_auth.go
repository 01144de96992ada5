// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package web

import (
	"net/http"
	"time"

	"github.com/inkpress/inkpress/internal/apperr"
	"github.com/inkpress/inkpress/internal/auth"
)

type accountResponse struct {
	ID        string  `json:"id"`
	Username  string  `json:"username"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	CreatedAt string  `json:"created_at"`
}

func toAccountResponse(account *auth.Account) accountResponse {
	return accountResponse{
		ID:        account.ID.String(),
		Username:  account.Username,
		FirstName: account.FirstName,
		LastName:  account.LastName,
		CreatedAt: account.CreatedAt.Format(time.RFC3339),
	}
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username  string  `json:"username"`
		Password  string  `json:"password"`
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	username, err := validateUsername(req.Username)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	if err := validatePassword(req.Password); err != nil {
		writeError(w, s.logger, err)
		return
	}
	firstName, err := validateOptionalName(req.FirstName, "first_name")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	lastName, err := validateOptionalName(req.LastName, "last_name")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	account, err := s.auths.Register(r.Context(), username, req.Password, firstName, lastName)
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAccountResponse(account))
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.Username == "" || req.Password == "" {
		writeError(w, s.logger, apperr.BadRequest("username and password are required"))
		return
	}

	account, token, err := s.auths.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		if apperr.Classify(err).Status == http.StatusUnauthorized {
			s.recordAuthFailure("bad_credentials")
		}
		writeError(w, s.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, struct {
		Token   string          `json:"token"`
		Account accountResponse `json:"account"`
	}{
		Token:   token,
		Account: toAccountResponse(account),
	})
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	actor, ok := accountID(r.Context())
	if !ok {
		writeError(w, s.logger, apperr.Internal("request reached a protected handler without an account"))
		return
	}

	var req struct {
		FirstName *string `json:"first_name"`
		LastName  *string `json:"last_name"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	firstName, err := validateOptionalName(req.FirstName, "first_name")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}
	lastName, err := validateOptionalName(req.LastName, "last_name")
	if err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.auths.UpdateProfile(r.Context(), actor, firstName, lastName); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	actor, ok := accountID(r.Context())
	if !ok {
		writeError(w, s.logger, apperr.Internal("request reached a protected handler without an account"))
		return
	}

	if err := s.auths.DeleteAccount(r.Context(), actor); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusNoContent, nil)
}
