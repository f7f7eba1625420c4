package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/orbit-dashboard/orbit/internal/application/session"
	"github.com/orbit-dashboard/orbit/internal/domain"
)

// MessageEnvelope is the generic response wrapper. Every error body carries
// both a human message and the error kind.
type MessageEnvelope struct {
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
	Kind    string `json:"kind,omitempty"`
}

// AuthEnvelope wraps login and signup-finish responses. Success is only set
// by signup finish.
type AuthEnvelope struct {
	Success    *bool               `json:"success,omitempty"`
	Bearer     string              `json:"bearer"`
	Session    *domain.Session     `json:"session"`
	Account    *domain.Account     `json:"account"`
	Workspaces []domain.Membership `json:"workspaces"`
}

// MismatchEnvelope is the signup-finish answer when the bio does not carry
// the code yet. It is not an error: the same code can be checked again.
type MismatchEnvelope struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Kind    string `json:"kind"`
}

// SessionEnvelope wraps current-session responses.
type SessionEnvelope struct {
	Session    *domain.Session     `json:"session"`
	Account    *domain.Account     `json:"account"`
	Workspaces []domain.Membership `json:"workspaces"`
}

type StartSignupEnvelope struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

// ActiveSessionsEnvelope always serialises Sessions as an array.
type ActiveSessionsEnvelope struct {
	Sessions []domain.ActiveSession `json:"sessions"`
}

type OAuthEnvelope struct {
	Available   bool   `json:"available"`
	RedirectURL string `json:"redirect_url,omitempty"`
}

func authEnvelope(res *session.Result) AuthEnvelope {
	workspaces := res.Session.Workspaces
	if workspaces == nil {
		workspaces = []domain.Membership{}
	}
	return AuthEnvelope{
		Bearer:     res.Bearer,
		Session:    res.Session,
		Account:    res.Session.Account,
		Workspaces: workspaces,
	}
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
