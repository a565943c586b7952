// Package handler provides HTTP handlers for the API.
package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/eduworld/portal/internal/chatbot"
	"github.com/eduworld/portal/internal/middleware"
	"github.com/eduworld/portal/internal/model"
	"github.com/eduworld/portal/internal/service"
	"github.com/eduworld/portal/pkg/logger"
)

// ChatHandler handles chat widget endpoints.
type ChatHandler struct {
	service  *service.ChatService
	resolver *chatbot.Resolver
	logger   *logger.Logger
}

// NewChatHandler creates a new chat handler.
func NewChatHandler(svc *service.ChatService, resolver *chatbot.Resolver, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		service:  svc,
		resolver: resolver,
		logger:   log,
	}
}

// Create handles POST /api/v1/chat/sessions
func (h *ChatHandler) Create(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusCreated, h.service.Create(r.Context()))
}

// Get handles GET /api/v1/chat/sessions/{id}
func (h *ChatHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	snap, err := h.service.Snapshot(r.Context(), id)
	h.respond(w, r, http.StatusOK, snap, err)
}

// Delete handles DELETE /api/v1/chat/sessions/{id}
func (h *ChatHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Open handles POST /api/v1/chat/sessions/{id}/open
func (h *ChatHandler) Open(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Open)
}

// Minimize handles POST /api/v1/chat/sessions/{id}/minimize
func (h *ChatHandler) Minimize(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Minimize)
}

// Restore handles POST /api/v1/chat/sessions/{id}/restore
func (h *ChatHandler) Restore(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Restore)
}

// Close handles POST /api/v1/chat/sessions/{id}/close
func (h *ChatHandler) Close(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Close)
}

// Reset handles POST /api/v1/chat/sessions/{id}/reset
func (h *ChatHandler) Reset(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Reset)
}

// Draft handles PUT /api/v1/chat/sessions/{id}/draft
func (h *ChatHandler) Draft(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req model.DraftRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateUtterance(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.service.SetDraft(r.Context(), id, req.Text)
	h.respond(w, r, http.StatusOK, snap, err)
}

// Send handles POST /api/v1/chat/sessions/{id}/messages
//
// The reply is appended after the typing delay; clients poll the session.
func (h *ChatHandler) Send(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	var req model.SendMessageRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateUtterance(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.service.Submit(r.Context(), id, req.Text)
	h.respond(w, r, http.StatusAccepted, snap, err)
}

// SubmitDraft handles POST /api/v1/chat/sessions/{id}/draft/submit
//
// It sends whatever the input buffer holds; an empty buffer is a no-op.
func (h *ChatHandler) SubmitDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	snap, err := h.service.SubmitDraft(r.Context(), id)
	h.respond(w, r, http.StatusAccepted, snap, err)
}

// Feedback handles POST /api/v1/chat/sessions/{id}/messages/{messageID}/feedback
func (h *ChatHandler) Feedback(w http.ResponseWriter, r *http.Request) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}

	messageID := chi.URLParam(r, "messageID")
	if err := middleware.ValidateMessageID(messageID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.FeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if _, err := model.ParseFeedback(req.Value); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	snap, err := h.service.Rate(r.Context(), id, messageID, req.Value)
	h.respond(w, r, http.StatusOK, snap, err)
}

// Knowledge handles GET /api/v1/chat/knowledge
func (h *ChatHandler) Knowledge(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.resolver.KnowledgeBase())
}

func (h *ChatHandler) transition(w http.ResponseWriter, r *http.Request, op func(ctx context.Context, id string) (model.SessionSnapshot, error)) {
	id, ok := sessionID(w, r)
	if !ok {
		return
	}
	snap, err := op(r.Context(), id)
	h.respond(w, r, http.StatusOK, snap, err)
}

// respond maps session errors to HTTP. Blank submits and ratings of
// unknown messages are no-ops and answer with the unchanged session.
func (h *ChatHandler) respond(w http.ResponseWriter, r *http.Request, status int, snap model.SessionSnapshot, err error) {
	switch {
	case err == nil:
		writeJSON(w, status, snap)
	case errors.Is(err, chatbot.ErrEmptyInput), errors.Is(err, chatbot.ErrUnknownMessage):
		h.logger.WithSession(middleware.GetCorrelationID(r.Context()), snap.ID).
			Debug("ignored chat operation", zap.Error(err))
		writeJSON(w, http.StatusOK, snap)
	case errors.Is(err, service.ErrSessionNotFound):
		writeError(w, http.StatusNotFound, "session not found")
	case errors.Is(err, chatbot.ErrInvalidTransition), errors.Is(err, chatbot.ErrNotOpen):
		writeJSON(w, http.StatusConflict, map[string]interface{}{
			"error":   err.Error(),
			"session": snap,
		})
	default:
		h.logger.WithSession(middleware.GetCorrelationID(r.Context()), chi.URLParam(r, "id")).
			Error("chat operation failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "chat operation failed")
	}
}

func sessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := middleware.ValidateSessionID(id); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return "", false
	}
	return id, true
}
