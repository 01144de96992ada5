// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package apperr

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
)

// pgStatusTable maps PostgreSQL SQLSTATE codes to HTTP status codes.
// Codes absent from the table are unclassified and surface as 500s.
var pgStatusTable = map[string]int{
	// Constraint violations: the client sent something the schema rejects.
	pgerrcode.UniqueViolation:     http.StatusBadRequest,
	pgerrcode.ForeignKeyViolation: http.StatusBadRequest,
	pgerrcode.NotNullViolation:    http.StatusBadRequest,
	pgerrcode.CheckViolation:      http.StatusBadRequest,
	pgerrcode.ExclusionViolation:  http.StatusBadRequest,

	// Malformed input reaching the database layer.
	pgerrcode.StringDataRightTruncationDataException: http.StatusBadRequest,
	pgerrcode.NumericValueOutOfRange:                 http.StatusBadRequest,
	pgerrcode.InvalidDatetimeFormat:                  http.StatusBadRequest,
	pgerrcode.DatetimeFieldOverflow:                  http.StatusBadRequest,

	// Statement defects. Surfaced as 400 so they are visible in responses
	// during development instead of being buried in a generic 500.
	pgerrcode.UndefinedTable:    http.StatusBadRequest,
	pgerrcode.UndefinedColumn:   http.StatusBadRequest,
	pgerrcode.UndefinedFunction: http.StatusBadRequest,
	pgerrcode.SyntaxError:       http.StatusBadRequest,

	pgerrcode.InsufficientPrivilege: http.StatusForbidden,

	// Transient conditions: the request may succeed if retried by the client.
	pgerrcode.SerializationFailure: http.StatusServiceUnavailable,
	pgerrcode.DeadlockDetected:     http.StatusServiceUnavailable,
	pgerrcode.AdminShutdown:        http.StatusServiceUnavailable,
	pgerrcode.CrashShutdown:        http.StatusServiceUnavailable,
	pgerrcode.CannotConnectNow:     http.StatusServiceUnavailable,
	pgerrcode.QueryCanceled:        http.StatusServiceUnavailable,
}

// Classify maps a raw failure to a domain Error. A domain Error anywhere in
// the chain passes through unchanged; a PostgreSQL error is mapped through
// the fixed SQLSTATE table; anything else becomes a 500 with the original
// message preserved for diagnostics. Pure mapping, no I/O and no logging --
// logging unclassified 500s is the transport layer's job.
func Classify(err error) *Error {
	var domain *Error
	if errors.As(err, &domain) {
		return domain
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if status, ok := pgStatusTable[pgErr.Code]; ok {
			return New(status, "%s", pgErr.Message)
		}
		return Internal("unclassified database error: %s", pgErr.Message)
	}

	return Internal("unable to determine status: %s", err.Error())
}

const (
	unclassifiedDB  = "unclassified database error: "
	unclassifiedRaw = "unable to determine status: "
)

// IsUnclassified reports whether e came out of Classify without a recognized
// domain status or vendor code. The transport layer logs these before
// responding and renders them under an "error" key instead of "message".
func IsUnclassified(e *Error) bool {
	return e.Status == http.StatusInternalServerError &&
		(strings.HasPrefix(e.Message, unclassifiedDB) || strings.HasPrefix(e.Message, unclassifiedRaw))
}
