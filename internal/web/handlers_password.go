// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package web

import (
	"net/http"

	"github.com/inkpress/inkpress/internal/apperr"
	"github.com/inkpress/inkpress/pkg/errutil"
)

// handleForgotPassword always answers 202. Whether the username exists,
// and whether the mail went out, is not observable from the response.
func (s *Server) handleForgotPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
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

	outcome := "sent"
	if err := s.resets.RequestReset(r.Context(), username); err != nil {
		// Logged but never surfaced, to keep account existence private.
		errutil.LogError(s.logger, "password reset request failed", err)
		outcome = "failed"
	}
	if s.metrics != nil {
		s.metrics.ResetRequestsTotal.WithLabelValues(outcome).Inc()
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"message": "if the account exists, a reset token has been sent",
	})
}

func (s *Server) handleVerifyResetToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Token string `json:"token"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.resets.VerifyToken(r.Context(), req.Token); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "token is valid"})
}

func (s *Server) handleResetPassword(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username    string `json:"username"`
		Token       string `json:"token"`
		NewPassword string `json:"new_password"`
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
	if err := validatePassword(req.NewPassword); err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.resets.ResetPassword(r.Context(), username, req.Token, req.NewPassword); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password has been reset"})
}

func (s *Server) handleChangePassword(w http.ResponseWriter, r *http.Request) {
	actor, ok := accountID(r.Context())
	if !ok {
		writeError(w, s.logger, apperr.Internal("request reached a protected handler without an account"))
		return
	}

	var req struct {
		CurrentPassword string `json:"current_password"`
		NewPassword     string `json:"new_password"`
	}
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, s.logger, err)
		return
	}
	if req.CurrentPassword == "" {
		writeError(w, s.logger, apperr.BadRequest("current_password is required"))
		return
	}
	if err := validatePassword(req.NewPassword); err != nil {
		writeError(w, s.logger, err)
		return
	}

	if err := s.auths.ChangePassword(r.Context(), actor, req.CurrentPassword, req.NewPassword); err != nil {
		writeError(w, s.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "password has been changed"})
}
