// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

// Package errutil bridges oops-tagged errors into slog records and test
// assertions.
package errutil

import (
	"log/slog"

	"github.com/samber/oops"
)

// LogError emits err through logger at error level. Errors built with oops
// carry their code and key/value context into the record; anything else is
// logged as a plain error string.
func LogError(logger *slog.Logger, msg string, err error) {
	if oopsErr, ok := oops.AsOops(err); ok {
		attrs := []any{
			"error", oopsErr.Error(),
		}
		if code := oopsErr.Code(); code != nil {
			attrs = append(attrs, "code", code)
		}
		if ctx := oopsErr.Context(); len(ctx) > 0 {
			attrs = append(attrs, "context", ctx)
		}
		logger.Error(msg, attrs...)
	} else {
		logger.Error(msg, "error", err)
	}
}
