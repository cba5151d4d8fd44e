// Package api exposes the chat pipeline over HTTP.
package api

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
)

// ErrorResponse is the body of every non-2xx reply. Messages come from a
// fixed catalog; internal error text never reaches clients. Code is a
// stable machine-readable class for client handling.
type ErrorResponse struct {
	Code    string   `json:"code"`
	Error   string   `json:"error"`
	Reasons []string `json:"reasons,omitempty"`
}

// writeJSON encodes v into a buffer before touching the ResponseWriter, so
// an encoding failure can still produce a clean 500.
func writeJSON(w http.ResponseWriter, logger *slog.Logger, status int, v any) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(v); err != nil {
		logger.Error("response encoding failed", "error", err)
		http.Error(w, `{"code":"internal_error","error":"internal server error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func writeError(w http.ResponseWriter, logger *slog.Logger, status int, code, message string, reasons []string) {
	writeJSON(w, logger, status, ErrorResponse{Code: code, Error: message, Reasons: reasons})
}
