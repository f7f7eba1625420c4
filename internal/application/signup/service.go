package signup

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/orbit-dashboard/orbit/internal/application/session"
	"github.com/orbit-dashboard/orbit/internal/domain"
	"github.com/orbit-dashboard/orbit/internal/pkg/id"
	pkgtoken "github.com/orbit-dashboard/orbit/internal/pkg/token"
	"github.com/orbit-dashboard/orbit/internal/pkg/validate"
	"golang.org/x/crypto/bcrypt"
)

const (
	defaultCodeLength = 8
	defaultCodeTTL    = 15 * time.Minute
)

// StartResult is the code the user must place in their profile bio.
type StartResult struct {
	Code      string
	ExpiresAt time.Time
}

type Service interface {
	StartSignup(ctx context.Context, req domain.StartSignupRequest) (*StartResult, error)
	FinishSignup(ctx context.Context, req domain.FinishSignupRequest) (*session.Result, error)
}

type accountStore interface {
	GetByUsername(ctx context.Context, username string) (*domain.Account, error)
	Create(ctx context.Context, a *domain.Account) error
}

type pendingStore interface {
	Put(ctx context.Context, p *domain.PendingSignup) error
	GetByCode(ctx context.Context, code string) (*domain.PendingSignup, error)
	Consume(ctx context.Context, usernameKey, code string) error
}

type profileDirectory interface {
	Lookup(ctx context.Context, username string) (*domain.ExternalProfile, error)
}

type sessionIssuer interface {
	Issue(ctx context.Context, a *domain.Account) (*session.Result, error)
}

type eventPublisher interface {
	AccountVerified(ctx context.Context, a *domain.Account) error
}

type service struct {
	accounts   accountStore
	pending    pendingStore
	profiles   profileDirectory
	sessions   sessionIssuer
	events     eventPublisher
	codeLength int
	codeTTL    time.Duration
	newCode    func(n int) (string, error)
	now        func() time.Time
}

type ServiceDeps struct {
	AccountRepo   accountStore
	PendingRepo   pendingStore
	Profiles      profileDirectory
	Sessions      sessionIssuer
	Events        eventPublisher // optional
	CodeLength    int
	CodeTTL       time.Duration
	CodeGenerator func(n int) (string, error) // defaults to token.NewCode
	Now           func() time.Time            // defaults to time.Now
}

func NewService(deps ServiceDeps) Service {
	s := &service{
		accounts:   deps.AccountRepo,
		pending:    deps.PendingRepo,
		profiles:   deps.Profiles,
		sessions:   deps.Sessions,
		events:     deps.Events,
		codeLength: deps.CodeLength,
		codeTTL:    deps.CodeTTL,
		newCode:    deps.CodeGenerator,
		now:        deps.Now,
	}
	if s.codeLength == 0 {
		s.codeLength = defaultCodeLength
	}
	if s.codeTTL == 0 {
		s.codeTTL = defaultCodeTTL
	}
	if s.newCode == nil {
		s.newCode = pkgtoken.NewCode
	}
	if s.now == nil {
		s.now = time.Now
	}
	return s
}

// StartSignup issues a verification code for username. Any code issued
// earlier for the same username stops resolving.
func (s *service) StartSignup(ctx context.Context, req domain.StartSignupRequest) (*StartResult, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrInvalidUsername)
	}

	_, err := s.accounts.GetByUsername(ctx, req.Username)
	if err == nil {
		return nil, fmt.Errorf("signup %q: %w", req.Username, domain.ErrUsernameTaken)
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, err
	}

	code, err := s.newCode(s.codeLength)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	expires := now.Add(s.codeTTL)
	p := &domain.PendingSignup{
		Username:  req.Username,
		Code:      code,
		IssuedAt:  now.Unix(),
		ExpiresAt: expires.Unix(),
	}
	if err := s.pending.Put(ctx, p); err != nil {
		return nil, err
	}
	return &StartResult{Code: code, ExpiresAt: time.Unix(p.ExpiresAt, 0).UTC()}, nil
}

// FinishSignup checks that the bound profile's bio carries the code and, if
// so, creates the account and opens its first session. A mismatch leaves the
// pending signup in place so the check can be repeated.
func (s *service) FinishSignup(ctx context.Context, req domain.FinishSignupRequest) (*session.Result, error) {
	if err := validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%s: %w", err, domain.ErrValidation)
	}

	p, err := s.pending.GetByCode(ctx, req.Code)
	if errors.Is(err, domain.ErrNotFound) {
		return nil, fmt.Errorf("finish signup: %w", domain.ErrCodeNotFound)
	}
	if err != nil {
		return nil, err
	}
	if p.Expired(s.now()) {
		return nil, fmt.Errorf("finish signup: code expired: %w", domain.ErrCodeNotFound)
	}

	profile, err := s.profiles.Lookup(ctx, p.Username)
	switch {
	case errors.Is(err, domain.ErrProfileNotFound):
		return nil, fmt.Errorf("profile %q does not exist: %w", p.Username, domain.ErrVerificationMismatch)
	case err != nil && !errors.Is(err, domain.ErrProfileUnreachable):
		return nil, fmt.Errorf("profile lookup: %w: %w", domain.ErrProfileUnreachable, err)
	case err != nil:
		return nil, err
	}
	if !domain.BioContainsCode(p.Code, profile.Bio) {
		return nil, fmt.Errorf("profile %q: %w", p.Username, domain.ErrVerificationMismatch)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := s.now().UTC()
	a := &domain.Account{
		AccountID:          id.New(),
		Username:           p.Username,
		DisplayName:        profile.DisplayName,
		PasswordHash:       string(hash),
		ExternalProfileRef: &profile.Ref,
		CreatedAt:          now,
		UpdatedAt:          now,
	}
	if a.DisplayName == "" {
		a.DisplayName = p.Username
	}
	if profile.PictureURL != "" {
		a.PictureURL = &profile.PictureURL
	}
	if err := s.accounts.Create(ctx, a); err != nil {
		return nil, err
	}

	// A leftover pending signup cannot create a second account: replays fail
	// at the username guard in Create.
	if err := s.pending.Consume(ctx, p.UsernameKey, p.Code); err != nil {
		slog.Warn("failed to consume pending signup", "username", p.Username, "err", err)
	}
	if s.events != nil {
		if err := s.events.AccountVerified(ctx, a); err != nil {
			slog.Warn("failed to publish signup event", "account_id", a.AccountID, "err", err)
		}
	}

	return s.sessions.Issue(ctx, a)
}
