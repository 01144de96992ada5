// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Inkpress Contributors

package web

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/inkpress/inkpress/internal/apperr"
	"github.com/inkpress/inkpress/pkg/errutil"
)

// writeJSON writes v as a JSON response body with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	//nolint:errcheck // response write failure means the client is gone
	json.NewEncoder(w).Encode(v)
}

// writeError classifies err and writes the JSON error body. Classified
// failures carry a client-safe message under "message". Unclassified
// failures are logged with full context and reported under "error"
// without internal detail.
func writeError(w http.ResponseWriter, logger *slog.Logger, err error) {
	appErr := apperr.Classify(err)
	if apperr.IsUnclassified(appErr) {
		errutil.LogError(logger, "request failed with unclassified error", err)
		writeJSON(w, appErr.Status, map[string]string{"error": "internal server error"})
		return
	}
	if appErr.Status >= http.StatusInternalServerError {
		errutil.LogError(logger, "request failed", err)
	}
	writeJSON(w, appErr.Status, map[string]string{"message": appErr.Message})
}
