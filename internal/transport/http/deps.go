package http

import (
	"context"
	"time"

	"github.com/orbit-dashboard/orbit/internal/domain"
	jwtinfra "github.com/orbit-dashboard/orbit/internal/infrastructure/jwt"
)

// AccountRepository is the minimal interface the router requires from an account store.
type AccountRepository interface {
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByID(ctx context.Context, accountID string) (*domain.Account, error)
	// Create must fail with ErrUsernameTaken when the username key exists.
	Create(ctx context.Context, a *domain.Account) error
}

// PendingSignupRepository is the minimal interface the router requires from a pending-signup store.
type PendingSignupRepository interface {
	// Put replaces any pending signup for the same username.
	Put(ctx context.Context, p *domain.PendingSignup) error
	GetByCode(ctx context.Context, code string) (*domain.PendingSignup, error)
	Consume(ctx context.Context, usernameKey, code string) error
}

// SessionRepository is the minimal interface the router requires from a session store.
type SessionRepository interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

// MembershipRepository is the minimal interface the router requires from a membership store.
type MembershipRepository interface {
	Get(ctx context.Context, accountID, workspaceID string) (*domain.Membership, error)
	ListByAccount(ctx context.Context, accountID string) ([]domain.Membership, error)
}

// ActiveSessionRepository is the minimal interface the router requires from an active-session store.
type ActiveSessionRepository interface {
	ListByWorkspace(ctx context.Context, workspaceID string) ([]domain.ActiveSession, error)
}

// ProfileDirectory looks up external profiles for bio verification.
type ProfileDirectory interface {
	Lookup(ctx context.Context, username string) (*domain.ExternalProfile, error)
}

// SignupEvents is notified after each completed signup.
type SignupEvents interface {
	AccountVerified(ctx context.Context, a *domain.Account) error
}

// BearerProvider signs and verifies bearer tokens.
type BearerProvider interface {
	Sign(accountID, sessionID string, expiresAt time.Time) (string, error)
	Verify(token string) (*jwtinfra.Claims, error)
}
