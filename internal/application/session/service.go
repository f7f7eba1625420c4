package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/orbit-dashboard/orbit/internal/domain"
	pkgtoken "github.com/orbit-dashboard/orbit/internal/pkg/token"
	"golang.org/x/crypto/bcrypt"
)

// Result is what a successful login or signup hands back to the caller.
// Session carries the account and its workspace memberships.
type Result struct {
	Bearer  string
	Session *domain.Session
}

type Service interface {
	Login(ctx context.Context, req domain.LoginRequest) (*Result, error)
	Issue(ctx context.Context, a *domain.Account) (*Result, error)
	Authorize(ctx context.Context, token string) (*domain.Session, error)
	GetCurrent(ctx context.Context, token string) (*domain.Session, error)
	Logout(ctx context.Context, token string) error
}

type accountStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	GetByID(ctx context.Context, accountID string) (*domain.Account, error)
}

type sessionStore interface {
	Put(ctx context.Context, s *domain.Session) error
	Get(ctx context.Context, token string) (*domain.Session, error)
	Delete(ctx context.Context, token string) error
}

type membershipStore interface {
	ListByAccount(ctx context.Context, accountID string) ([]domain.Membership, error)
}

type jwtSigner interface {
	Sign(accountID, sessionID string, expiresAt time.Time) (string, error)
}

type service struct {
	accounts    accountStore
	sessions    sessionStore
	memberships membershipStore
	jwtProvider jwtSigner
	ttl         time.Duration
	now         func() time.Time
}

type ServiceDeps struct {
	AccountRepo    accountStore
	SessionRepo    sessionStore
	MembershipRepo membershipStore
	JWTProvider    jwtSigner
	SessionTTL     time.Duration
	Now            func() time.Time // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		accounts:    deps.AccountRepo,
		sessions:    deps.SessionRepo,
		memberships: deps.MembershipRepo,
		jwtProvider: deps.JWTProvider,
		ttl:         deps.SessionTTL,
		now:         now,
	}
}

// Login checks credentials. Unknown usernames and wrong passwords fail with
// different errors so the client can point at the right field.
func (s *service) Login(ctx context.Context, req domain.LoginRequest) (*Result, error) {
	a, err := s.accounts.GetByUsername(ctx, req.Username)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("login %q: %w", req.Username, domain.ErrUserNotFound)
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(a.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("login %q: %w", req.Username, domain.ErrInvalidCredentials)
	}
	return s.Issue(ctx, a)
}

// Issue opens a new session for an already authenticated account.
func (s *service) Issue(ctx context.Context, a *domain.Account) (*Result, error) {
	workspaces, err := s.memberships.ListByAccount(ctx, a.AccountID)
	if err != nil {
		return nil, err
	}
	tok, err := pkgtoken.NewSessionToken()
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	expires := now.Add(s.ttl)
	sess := &domain.Session{
		Token:     tok,
		AccountID: a.AccountID,
		CreatedAt: now,
		ExpiresAt: expires.Unix(),
	}
	if err := s.sessions.Put(ctx, sess); err != nil {
		return nil, err
	}
	bearer, err := s.jwtProvider.Sign(a.AccountID, tok, expires)
	if err != nil {
		return nil, fmt.Errorf("sign bearer: %w", err)
	}
	sess.Account = a
	sess.Workspaces = workspaces
	return &Result{Bearer: bearer, Session: sess}, nil
}

// Authorize returns the live session for token. Missing and expired sessions
// are both ErrUnauthorized; TTL deletion lags so expiry is checked here too.
func (s *service) Authorize(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.sessions.Get(ctx, token)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("session: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(s.now()) {
		return nil, fmt.Errorf("session expired: %w", domain.ErrUnauthorized)
	}
	return sess, nil
}

func (s *service) GetCurrent(ctx context.Context, token string) (*domain.Session, error) {
	sess, err := s.Authorize(ctx, token)
	if err != nil {
		return nil, err
	}
	a, err := s.accounts.GetByID(ctx, sess.AccountID)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("session account gone: %w", domain.ErrUnauthorized)
	}
	if err != nil {
		return nil, err
	}
	workspaces, err := s.memberships.ListByAccount(ctx, sess.AccountID)
	if err != nil {
		return nil, err
	}
	sess.Account = a
	sess.Workspaces = workspaces
	return sess, nil
}

func (s *service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}
