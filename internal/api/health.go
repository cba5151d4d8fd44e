package api

import "net/http"

type healthResponse struct {
	Status         string `json:"status"`
	KnowledgeReady bool   `json:"knowledge_ready"`
	KnowledgeSize  int    `json:"knowledge_size"`
}

// handleHealth reports liveness plus the state of the knowledge cache. The
// service stays healthy on a cold cache since retrieval degrades gracefully.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := healthResponse{Status: "ok"}
	if s.store != nil {
		resp.KnowledgeReady = s.store.Ready()
		resp.KnowledgeSize = s.store.Len()
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}
