package handler

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/eduworld/portal/internal/form"
	"github.com/eduworld/portal/internal/middleware"
	"github.com/eduworld/portal/internal/model"
	"github.com/eduworld/portal/internal/service"
	"github.com/eduworld/portal/internal/store"
	"github.com/eduworld/portal/pkg/logger"
)

// AuthHandler handles auth form, registration and login endpoints.
type AuthHandler struct {
	service *service.AccountService
	logger  *logger.Logger
}

// NewAuthHandler creates a new auth handler.
func NewAuthHandler(svc *service.AccountService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		service: svc,
		logger:  log,
	}
}

// Form handles GET /api/v1/forms/{mode}
func (h *AuthHandler) Form(w http.ResponseWriter, r *http.Request) {
	mode := form.Mode(chi.URLParam(r, "mode"))
	fields, err := form.Fields(mode)
	if err != nil {
		writeError(w, http.StatusNotFound, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"mode":   mode,
		"fields": fields,
	})
}

// Register handles POST /api/v1/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req model.AuthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Register(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, "registration failed", err)
		return
	}
	writeJSON(w, http.StatusCreated, resp)
}

// Login handles POST /api/v1/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.AuthRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	resp, err := h.service.Login(r.Context(), &req)
	if err != nil {
		h.handleError(w, r, "login failed", err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

// Me handles GET /api/v1/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.service.Profile(r.Context(), middleware.GetEmail(r.Context()))
	if err != nil {
		h.handleError(w, r, "profile lookup failed", err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

func (h *AuthHandler) handleError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	var fieldErrs form.FieldErrors
	var validationErr *store.ValidationError

	switch {
	case errors.As(err, &fieldErrs):
		writeFieldErrors(w, fieldErrs)
	case errors.As(err, &validationErr):
		writeFieldErrors(w, validationErr.Fields)
	case errors.Is(err, service.ErrInvalidRole):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrDuplicateKey):
		writeError(w, http.StatusConflict, "an account with this email already exists")
	case errors.Is(err, service.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "user not found")
	default:
		h.logger.Error(msg,
			zap.String("correlation_id", middleware.GetCorrelationID(r.Context())),
			zap.Error(err),
		)
		writeError(w, http.StatusInternalServerError, msg)
	}
}
