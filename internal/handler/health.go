package handler

import (
	"net/http"

	"github.com/eduworld/portal/internal/chatbot"
	natsclient "github.com/eduworld/portal/internal/nats"
)

// User store backends reported by /ready.
const (
	UserStoreMemory = "memory"
	UserStoreNATS   = "nats"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	natsClient *natsclient.Client
	kb         *chatbot.KnowledgeBase
}

// NewHealthHandler creates a new health handler. natsClient is nil when the
// service runs without NATS, in which case users are kept in memory.
func NewHealthHandler(natsClient *natsclient.Client, kb *chatbot.KnowledgeBase) *HealthHandler {
	return &HealthHandler{
		natsClient: natsClient,
		kb:         kb,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready. The service is ready once the knowledge base is
// loaded and, when configured, NATS is connected.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	store := UserStoreMemory
	if h.natsClient != nil {
		store = UserStoreNATS
	}

	if h.kb == nil || len(h.kb.Topics) == 0 {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":     "not ready",
			"reason":     "knowledge base not loaded",
			"user_store": store,
		})
		return
	}
	if h.natsClient != nil && !h.natsClient.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]interface{}{
			"status":     "not ready",
			"reason":     "NATS not connected",
			"user_store": store,
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":           "ready",
		"user_store":       store,
		"knowledge_topics": len(h.kb.Topics),
	})
}
