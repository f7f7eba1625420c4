package signup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/orbit-dashboard/orbit/internal/domain"
)

// In-memory stores with the same conditional semantics as the DynamoDB repos.

type memAccounts struct {
	mu    sync.Mutex
	byKey map[string]domain.Account
}

func newMemAccounts() *memAccounts { return &memAccounts{byKey: map[string]domain.Account{}} }

func (m *memAccounts) GetByUsername(_ context.Context, username string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.byKey[domain.UsernameKey(username)]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &a, nil
}

func (m *memAccounts) GetByID(_ context.Context, accountID string) (*domain.Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, a := range m.byKey {
		if a.AccountID == accountID {
			return &a, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memAccounts) Create(_ context.Context, a *domain.Account) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := domain.UsernameKey(a.Username)
	if _, ok := m.byKey[key]; ok {
		return fmt.Errorf("create: %w", domain.ErrUsernameTaken)
	}
	a.UsernameKey = key
	m.byKey[key] = *a
	return nil
}

func (m *memAccounts) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.byKey)
}

type memPending struct {
	mu         sync.Mutex
	byKey      map[string]domain.PendingSignup
	consumeErr error
}

func newMemPending() *memPending { return &memPending{byKey: map[string]domain.PendingSignup{}} }

func (m *memPending) Put(_ context.Context, p *domain.PendingSignup) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	p.UsernameKey = domain.UsernameKey(p.Username)
	m.byKey[p.UsernameKey] = *p
	return nil
}

func (m *memPending) GetByCode(_ context.Context, code string) (*domain.PendingSignup, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.byKey {
		if p.Code == code {
			return &p, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *memPending) Consume(_ context.Context, usernameKey, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.consumeErr != nil {
		return m.consumeErr
	}
	p, ok := m.byKey[usernameKey]
	if !ok || p.Code != code {
		return domain.ErrCodeNotFound
	}
	delete(m.byKey, usernameKey)
	return nil
}

type memSessions struct {
	mu      sync.Mutex
	byToken map[string]domain.Session
}

func (m *memSessions) Put(_ context.Context, s *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.byToken == nil {
		m.byToken = map[string]domain.Session{}
	}
	m.byToken[s.Token] = *s
	return nil
}

func (m *memSessions) Get(_ context.Context, token string) (*domain.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.byToken[token]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &s, nil
}

func (m *memSessions) Delete(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.byToken, token)
	return nil
}

type noMemberships struct{}

func (noMemberships) ListByAccount(context.Context, string) ([]domain.Membership, error) {
	return []domain.Membership{}, nil
}

type stubSigner struct{}

func (stubSigner) Sign(accountID, sessionID string, _ time.Time) (string, error) {
	return "bearer-" + accountID, nil
}

// bios is a settable external profile directory.
type bios struct {
	mu      sync.Mutex
	entries map[string]string
	err     error
}

func newBios() *bios { return &bios{entries: map[string]string{}} }

func (b *bios) set(username, bio string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.entries[username] = bio
}

func (b *bios) Lookup(_ context.Context, username string) (*domain.ExternalProfile, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.err != nil {
		return nil, b.err
	}
	bio, ok := b.entries[username]
	if !ok {
		return nil, domain.ErrProfileNotFound
	}
	return &domain.ExternalProfile{Ref: "ref-" + username, Username: username, DisplayName: username, Bio: bio}, nil
}

// codes hands out a fixed sequence of verification codes.
type codes struct {
	mu   sync.Mutex
	next []string
}

func (c *codes) gen(int) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	code := c.next[0]
	c.next = c.next[1:]
	return code, nil
}
