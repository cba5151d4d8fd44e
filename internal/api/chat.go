package api

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"

	"github.com/fprada/ferbot/internal/chat"
)

// maxBodyBytes bounds the chat request body.
const maxBodyBytes = 1 << 20

// maxHistoryEntries bounds client-supplied conversation history.
const maxHistoryEntries = 10

// Client-facing message catalog with stable error codes.
const (
	codeRateLimited    = "rate_limited"
	codeInvalidBody    = "invalid_body"
	codeInvalidInput   = "invalid_input"
	codeInputBlocked   = "input_blocked"
	codeContentBlocked = "content_blocked"
	codeUpstream       = "upstream_unavailable"
	codeInternal       = "internal_error"

	msgRateLimited    = "too many requests, slow down"
	msgInvalidBody    = "request body must be valid JSON"
	msgInvalidInput   = "question is missing or malformed"
	msgInputBlocked   = "question rejected by safety checks"
	msgContentBlocked = "content rejected by moderation"
	msgInternal       = "internal server error"
	msgUpstream       = "assistant temporarily unavailable, try again later"
)

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req chat.Request
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, s.logger, http.StatusBadRequest, codeInvalidBody, msgInvalidBody, nil)
		return
	}

	switch req.Language {
	case "", "es":
		req.Language = "es"
	case "en":
	default:
		writeError(w, s.logger, http.StatusBadRequest, codeInvalidInput, msgInvalidInput, nil)
		return
	}
	if len(req.History) > maxHistoryEntries {
		req.History = req.History[len(req.History)-maxHistoryEntries:]
	}

	result, err := s.responder.Respond(r.Context(), s.clientIP(r), req)
	if err != nil {
		s.writeChatError(w, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, result)
}

// writeChatError maps pipeline failures to HTTP statuses and catalog
// messages. Blocked errors carry their reason lists through.
func (s *Server) writeChatError(w http.ResponseWriter, err error) {
	var reasons []string
	var blocked *chat.Blocked
	if errors.As(err, &blocked) {
		reasons = blocked.Reasons
	}

	switch {
	case errors.Is(err, chat.ErrRateLimited):
		w.Header().Set("Retry-After", "60")
		writeError(w, s.logger, http.StatusTooManyRequests, codeRateLimited, msgRateLimited, nil)
	case errors.Is(err, chat.ErrInputInvalid):
		writeError(w, s.logger, http.StatusBadRequest, codeInvalidInput, msgInvalidInput, reasons)
	case errors.Is(err, chat.ErrInputBlocked):
		writeError(w, s.logger, http.StatusForbidden, codeInputBlocked, msgInputBlocked, reasons)
	case errors.Is(err, chat.ErrContentBlocked):
		writeError(w, s.logger, http.StatusForbidden, codeContentBlocked, msgContentBlocked, reasons)
	case errors.Is(err, chat.ErrUpstreamUnavailable):
		writeError(w, s.logger, http.StatusInternalServerError, codeUpstream, msgUpstream, nil)
	default:
		s.logger.Error("unclassified pipeline error", "error", err)
		writeError(w, s.logger, http.StatusInternalServerError, codeInternal, msgInternal, nil)
	}
}

// clientIP identifies the caller for rate limiting. Behind a trusted proxy
// X-Real-IP wins, then the first X-Forwarded-For hop; otherwise the
// connection's remote address is used as-is.
func (s *Server) clientIP(r *http.Request) string {
	if s.trustProxy {
		if real := strings.TrimSpace(r.Header.Get("X-Real-IP")); real != "" {
			return real
		}
		if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
			first := strings.TrimSpace(strings.Split(fwd, ",")[0])
			if first != "" {
				return first
			}
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
