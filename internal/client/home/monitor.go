package home

import (
	"context"
	"fmt"

	"github.com/orbit-dashboard/orbit/internal/domain"
)

const defaultPreview = 3

// SessionLister fetches the active sessions of a workspace. *api.Client
// implements it.
type SessionLister interface {
	ActiveSessions(ctx context.Context, workspaceID string) ([]domain.ActiveSession, error)
}

// SessionsView is what the workspace home shows in its active sessions card.
type SessionsView struct {
	WorkspaceID string
	Sessions    []domain.ActiveSession
	ViewAllPath string
}

// Empty reports whether the placeholder should be shown instead of a list.
func (v SessionsView) Empty() bool {
	return len(v.Sessions) == 0
}

// Preview returns at most n sessions in server order. n <= 0 uses the default.
func (v SessionsView) Preview(n int) []domain.ActiveSession {
	if n <= 0 {
		n = defaultPreview
	}
	if len(v.Sessions) <= n {
		return v.Sessions
	}
	return v.Sessions[:n]
}

// More is the number of sessions not included in Preview(n).
func (v SessionsView) More(n int) int {
	return len(v.Sessions) - len(v.Preview(n))
}

// OwnerName is the display label for a session's owner.
func OwnerName(s domain.ActiveSession) string {
	if s.Owner == nil {
		return "Unknown"
	}
	if s.Owner.DisplayName != "" {
		return s.Owner.DisplayName
	}
	return s.Owner.Username
}

type Monitor struct {
	sessions SessionLister
}

func NewMonitor(sessions SessionLister) *Monitor {
	return &Monitor{sessions: sessions}
}

// Load fetches the current sessions of workspaceID.
func (m *Monitor) Load(ctx context.Context, workspaceID string) (SessionsView, error) {
	sessions, err := m.sessions.ActiveSessions(ctx, workspaceID)
	if err != nil {
		return SessionsView{}, fmt.Errorf("load active sessions: %w", err)
	}
	if sessions == nil {
		sessions = []domain.ActiveSession{}
	}
	return SessionsView{
		WorkspaceID: workspaceID,
		Sessions:    sessions,
		ViewAllPath: fmt.Sprintf("/workspace/%s/sessions", workspaceID),
	}, nil
}
