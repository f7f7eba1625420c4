package handler

import (
	"net/http"

	"github.com/orbit-dashboard/orbit/internal/domain"
)

// OAuthHandler exposes the external OAuth provider as an availability flag
// and a redirect. The provider protocol itself lives elsewhere.
type OAuthHandler struct {
	startURL string
}

func NewOAuthHandler(startURL string) *OAuthHandler {
	return &OAuthHandler{startURL: startURL}
}

func (h *OAuthHandler) Status(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, OAuthEnvelope{Available: h.startURL != "", RedirectURL: h.startURL})
}

func (h *OAuthHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h.startURL == "" {
		writeError(w, r, domain.ErrNotFound)
		return
	}
	http.Redirect(w, r, h.startURL, http.StatusFound)
}
