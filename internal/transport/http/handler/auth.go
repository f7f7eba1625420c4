package handler

import (
	"encoding/json"
	"net/http"

	"github.com/orbit-dashboard/orbit/internal/application/session"
	"github.com/orbit-dashboard/orbit/internal/domain"
	"github.com/orbit-dashboard/orbit/internal/pkg/validate"
	"github.com/orbit-dashboard/orbit/internal/transport/http/middleware"
)

// AuthHandler handles login and session endpoints.
type AuthHandler struct {
	svc session.Service
}

func NewAuthHandler(svc session.Service) *AuthHandler {
	return &AuthHandler{svc: svc}
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeBadRequest(w, err.Error())
		return
	}
	res, err := h.svc.Login(r.Context(), req)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, authEnvelope(res))
}

func (h *AuthHandler) GetCurrent(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	sess, err := h.svc.GetCurrent(r.Context(), claims.SessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	workspaces := sess.Workspaces
	if workspaces == nil {
		workspaces = []domain.Membership{}
	}
	writeJSON(w, http.StatusOK, SessionEnvelope{Session: sess, Account: sess.Account, Workspaces: workspaces})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	if err := h.svc.Logout(r.Context(), claims.SessionID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, MessageEnvelope{Message: "logged out"})
}
