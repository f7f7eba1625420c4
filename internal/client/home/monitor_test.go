package home

import (
	"context"
	"errors"
	"testing"

	"github.com/orbit-dashboard/orbit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type listerFunc func(ctx context.Context, workspaceID string) ([]domain.ActiveSession, error)

func (f listerFunc) ActiveSessions(ctx context.Context, workspaceID string) ([]domain.ActiveSession, error) {
	return f(ctx, workspaceID)
}

func sessions(names ...string) []domain.ActiveSession {
	out := make([]domain.ActiveSession, 0, len(names))
	for _, n := range names {
		out = append(out, domain.ActiveSession{SessionID: n, Name: n})
	}
	return out
}

func TestLoad_Empty(t *testing.T) {
	m := NewMonitor(listerFunc(func(context.Context, string) ([]domain.ActiveSession, error) {
		return nil, nil
	}))

	v, err := m.Load(context.Background(), "w1")
	require.NoError(t, err)
	assert.True(t, v.Empty())
	assert.NotNil(t, v.Sessions)
	assert.Empty(t, v.Preview(0))
	assert.Equal(t, "/workspace/w1/sessions", v.ViewAllPath)
}

func TestLoad_PreviewKeepsOrder(t *testing.T) {
	m := NewMonitor(listerFunc(func(_ context.Context, id string) ([]domain.ActiveSession, error) {
		assert.Equal(t, "w1", id)
		return sessions("s1", "s2", "s3", "s4", "s5"), nil
	}))

	v, err := m.Load(context.Background(), "w1")
	require.NoError(t, err)
	assert.False(t, v.Empty())
	assert.Equal(t, sessions("s1", "s2", "s3"), v.Preview(0))
	assert.Equal(t, 2, v.More(0))
	assert.Len(t, v.Preview(10), 5)
	assert.Equal(t, 0, v.More(10))
}

func TestLoad_Error(t *testing.T) {
	m := NewMonitor(listerFunc(func(context.Context, string) ([]domain.ActiveSession, error) {
		return nil, domain.ErrForbidden
	}))

	_, err := m.Load(context.Background(), "w1")
	assert.True(t, errors.Is(err, domain.ErrForbidden))
}

func TestOwnerName(t *testing.T) {
	assert.Equal(t, "Unknown", OwnerName(domain.ActiveSession{}))
	assert.Equal(t, "bob", OwnerName(domain.ActiveSession{Owner: &domain.PublicAccount{Username: "bob"}}))
	assert.Equal(t, "Bob B", OwnerName(domain.ActiveSession{Owner: &domain.PublicAccount{Username: "bob", DisplayName: "Bob B"}}))
}
