// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

// Package apperr defines domain errors with stable HTTP status codes and the
// classifier that maps raw storage failures onto them.
package apperr

import (
	"fmt"
	"net/http"
)

// Error is a domain error carrying a stable status code and a user-facing
// message, independent of the storage vendor's raw error shape.
type Error struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.Message
}

// New creates an Error with an explicit status code.
func New(status int, format string, args ...any) *Error {
	return &Error{Status: status, Message: fmt.Sprintf(format, args...)}
}

// Unauthorized creates a 401 error for bad, missing, or expired credentials.
func Unauthorized(format string, args ...any) *Error {
	return New(http.StatusUnauthorized, format, args...)
}

// Forbidden creates a 403 error for authenticated but unauthorized access.
func Forbidden(format string, args ...any) *Error {
	return New(http.StatusForbidden, format, args...)
}

// BadRequest creates a 400 error for constraint violations and invalid input.
func BadRequest(format string, args ...any) *Error {
	return New(http.StatusBadRequest, format, args...)
}

// NotFound creates a 404 error for a missing referent.
func NotFound(format string, args ...any) *Error {
	return New(http.StatusNotFound, format, args...)
}

// Internal creates a 500 error for deployment or configuration defects.
func Internal(format string, args ...any) *Error {
	return New(http.StatusInternalServerError, format, args...)
}

// Unavailable creates a 503 error for transient storage unavailability.
func Unavailable(format string, args ...any) *Error {
	return New(http.StatusServiceUnavailable, format, args...)
}
