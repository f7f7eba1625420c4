package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/orbit-dashboard/orbit/internal/application/home"
	"github.com/orbit-dashboard/orbit/internal/domain"
	"github.com/orbit-dashboard/orbit/internal/transport/http/middleware"
)

// HomeHandler serves the workspace home widgets.
type HomeHandler struct {
	svc home.Service
}

func NewHomeHandler(svc home.Service) *HomeHandler {
	return &HomeHandler{svc: svc}
}

func (h *HomeHandler) ActiveSessions(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, r, domain.ErrUnauthorized)
		return
	}
	sessions, err := h.svc.ListActiveSessions(r.Context(), claims.AccountID, chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if sessions == nil {
		sessions = []domain.ActiveSession{}
	}
	writeJSON(w, http.StatusOK, ActiveSessionsEnvelope{Sessions: sessions})
}
