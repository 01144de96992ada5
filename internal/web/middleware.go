// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package web

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/inkpress/inkpress/internal/apperr"
)

type contextKey string

const accountIDKey contextKey = "account_id"

// accountID returns the authenticated account id stored by requireAuth.
// The second return is false on routes that never went through the guard.
func accountID(ctx context.Context) (ulid.ULID, bool) {
	id, ok := ctx.Value(accountIDKey).(ulid.ULID)
	return id, ok
}

// requireAuth guards a handler behind bearer-token authentication. On
// success the verified account id is placed in the request context; the
// wrapped handler never runs on failure.
func (s *Server) requireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		header := r.Header.Get("Authorization")
		if header == "" {
			s.recordAuthFailure("missing_token")
			writeError(w, s.logger, apperr.Unauthorized("missing bearer token"))
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || token == "" {
			s.recordAuthFailure("malformed_header")
			writeError(w, s.logger, apperr.Unauthorized("authorization header must be a bearer token"))
			return
		}

		id, err := s.tokens.Verify(token)
		if err != nil {
			s.recordAuthFailure("invalid_token")
			writeError(w, s.logger, err)
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), accountIDKey, id)))
	}
}

// statusRecorder captures the response status for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// instrument counts every request against the route pattern it matched.
func (s *Server) instrument(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next(rec, r)
		if s.metrics != nil {
			s.metrics.HTTPRequestsTotal.
				WithLabelValues(r.Method, route, strconv.Itoa(rec.status)).
				Inc()
		}
	}
}

func (s *Server) recordAuthFailure(reason string) {
	if s.metrics != nil {
		s.metrics.AuthFailuresTotal.WithLabelValues(reason).Inc()
	}
}
