// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/inkpress/inkpress/internal/apperr"
)

// Request body limits. Content caps keep a single write from dominating
// storage; the overall body cap bounds decode work.
const (
	maxBodyBytes      = 1 << 20
	maxUsernameLen    = 254
	minPasswordLen    = 8
	maxPasswordLen    = 128
	maxNameLen        = 100
	maxTitleLen       = 200
	maxPostContentLen = 100_000
	maxCommentLen     = 10_000
)

// decodeJSON reads the request body into v, rejecting oversized bodies,
// unknown fields, and trailing garbage.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(v); err != nil {
		return apperr.BadRequest("request body is not valid JSON")
	}
	if dec.More() {
		return apperr.BadRequest("request body must contain a single JSON object")
	}
	return nil
}

// pathULID parses the {id} path segment.
func pathULID(r *http.Request) (ulid.ULID, error) {
	id, err := ulid.Parse(r.PathValue("id"))
	if err != nil {
		return ulid.ULID{}, apperr.BadRequest("malformed id in path")
	}
	return id, nil
}

func validateUsername(username string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return "", apperr.BadRequest("username is required")
	}
	if len(username) > maxUsernameLen {
		return "", apperr.BadRequest("username is too long")
	}
	return username, nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLen {
		return apperr.BadRequest("password must be at least 8 characters")
	}
	if len(password) > maxPasswordLen {
		return apperr.BadRequest("password is too long")
	}
	return nil
}

// validateOptionalName shapes an optional profile field, mapping empty
// strings to absent.
func validateOptionalName(name *string, field string) (*string, error) {
	if name == nil {
		return nil, nil
	}
	trimmed := strings.TrimSpace(*name)
	if trimmed == "" {
		return nil, nil
	}
	if len(trimmed) > maxNameLen {
		return nil, apperr.BadRequest("%s is too long", field)
	}
	return &trimmed, nil
}
