package home

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/orbit-dashboard/orbit/internal/domain"
	"github.com/samber/lo"
)

type Service interface {
	ListActiveSessions(ctx context.Context, accountID, workspaceID string) ([]domain.ActiveSession, error)
}

type membershipStore interface {
	Get(ctx context.Context, accountID, workspaceID string) (*domain.Membership, error)
}

type activeSessionStore interface {
	ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.ActiveSession, error)
}

type accountStore interface {
	GetByID(ctx context.Context, accountID string) (*domain.Account, error)
}

type service struct {
	memberships membershipStore
	sessions    activeSessionStore
	accounts    accountStore
}

type ServiceDeps struct {
	MembershipRepo    membershipStore
	ActiveSessionRepo activeSessionStore
	AccountRepo       accountStore
}

func NewService(deps ServiceDeps) Service {
	return &service{
		memberships: deps.MembershipRepo,
		sessions:    deps.ActiveSessionRepo,
		accounts:    deps.AccountRepo,
	}
}

// ListActiveSessions returns the workspace's running sessions with each owner
// projected to its public view. The caller must be a member of the workspace.
// The result is never nil.
func (s *service) ListActiveSessions(ctx context.Context, accountID, workspaceID string) ([]domain.ActiveSession, error) {
	_, err := s.memberships.Get(ctx, accountID, workspaceID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("workspace %s: %w", workspaceID, domain.ErrForbidden)
	}
	if err != nil {
		return nil, err
	}

	sessions, err := s.sessions.ListByWorkspace(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return []domain.ActiveSession{}, nil
	}

	ownerIDs := lo.Uniq(lo.Map(sessions, func(as domain.ActiveSession, _ int) string {
		return as.OwnerAccountID
	}))
	owners := make(map[string]*domain.PublicAccount, len(ownerIDs))
	for _, ownerID := range ownerIDs {
		a, err := s.accounts.GetByID(ctx, ownerID)
		if errors.Is(err, domain.ErrNotFound) {
			slog.Warn("active session owner not found", "workspace_id", workspaceID, "account_id", ownerID)
			continue
		}
		if err != nil {
			return nil, err
		}
		owners[ownerID] = a.Public()
	}

	for i := range sessions {
		sessions[i].Owner = owners[sessions[i].OwnerAccountID]
	}
	return sessions, nil
}
