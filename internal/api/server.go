package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/fprada/ferbot/internal/chat"
)

// Responder answers a chat question for an identified client.
type Responder interface {
	Respond(ctx context.Context, clientID string, req chat.Request) (*chat.Result, error)
}

// KnowledgeStatus reports on the knowledge cache for health checks.
type KnowledgeStatus interface {
	Ready() bool
	Len() int
}

// ServerConfig wires the HTTP layer.
type ServerConfig struct {
	Logger      *slog.Logger
	Responder   Responder
	Store       KnowledgeStatus
	CORSOrigins []string
	// TrustProxy enables client identification via X-Forwarded-For. Only
	// set it when the service runs behind a proxy that overwrites the
	// header.
	TrustProxy bool
}

// Server is the HTTP front of the chat pipeline.
type Server struct {
	logger      *slog.Logger
	responder   Responder
	store       KnowledgeStatus
	corsOrigins []string
	trustProxy  bool
	handler     http.Handler
}

// NewServer builds the server and its middleware chain.
func NewServer(cfg ServerConfig) *Server {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{
		logger:      logger,
		responder:   cfg.Responder,
		store:       cfg.Store,
		corsOrigins: cfg.CORSOrigins,
		trustProxy:  cfg.TrustProxy,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/chat", s.handleChat)

	var h http.Handler = mux
	h = withSecurityHeaders(h)
	h = s.withCORS(h)
	h = s.withLogging(h)
	h = s.withRequestID(h)
	h = s.withRecovery(h)

	// Health stays outside the middleware stack so probes are not logged or
	// assigned request IDs.
	top := http.NewServeMux()
	top.HandleFunc("GET /health", s.handleHealth)
	top.Handle("/", h)
	s.handler = top
	return s
}

// Handler returns the fully wrapped root handler.
func (s *Server) Handler() http.Handler { return s.handler }

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.handler.ServeHTTP(w, r)
}
