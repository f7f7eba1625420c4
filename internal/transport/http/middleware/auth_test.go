package middleware

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orbit-dashboard/orbit/internal/domain"
	jwtinfra "github.com/orbit-dashboard/orbit/internal/infrastructure/jwt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockAuthorizer struct{ mock.Mock }

func (m *mockAuthorizer) Authorize(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s, _ := args.Get(0).(*domain.Session); s != nil {
		return s, args.Error(1)
	}
	return nil, args.Error(1)
}

func newTestProvider(t *testing.T) *jwtinfra.Provider {
	t.Helper()
	privKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)
	return jwtinfra.NewProviderFromKeys(privKey, &privKey.PublicKey)
}

func okHandler(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) }

func serve(t *testing.T, p *jwtinfra.Provider, a *mockAuthorizer, authHeader string, next http.Handler) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rr := httptest.NewRecorder()
	Auth(p, a)(next).ServeHTTP(rr, req)
	return rr
}

func TestAuth_MissingHeader(t *testing.T) {
	rr := serve(t, newTestProvider(t), &mockAuthorizer{}, "", http.HandlerFunc(okHandler))

	assert.Equal(t, http.StatusUnauthorized, rr.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, domain.KindUnauthorized, body["kind"])
}

func TestAuth_BadToken(t *testing.T) {
	rr := serve(t, newTestProvider(t), &mockAuthorizer{}, "Bearer not-a-real-token", http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_TokenFromOtherKey(t *testing.T) {
	other := newTestProvider(t)
	signed, err := other.Sign("acc-1", "sess-1", time.Now().Add(time.Hour))
	require.NoError(t, err)

	rr := serve(t, newTestProvider(t), &mockAuthorizer{}, "Bearer "+signed, http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_LoggedOutSession(t *testing.T) {
	p := newTestProvider(t)
	signed, err := p.Sign("acc-1", "sess-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	a := &mockAuthorizer{}
	a.On("Authorize", mock.Anything, "sess-1").Return(nil, domain.ErrUnauthorized)

	rr := serve(t, p, a, "Bearer "+signed, http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_SessionStoreDown(t *testing.T) {
	p := newTestProvider(t)
	signed, err := p.Sign("acc-1", "sess-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	a := &mockAuthorizer{}
	a.On("Authorize", mock.Anything, "sess-1").Return(nil, domain.ErrStorageUnavailable)

	rr := serve(t, p, a, "Bearer "+signed, http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}

func TestAuth_SessionOfAnotherAccount(t *testing.T) {
	p := newTestProvider(t)
	signed, err := p.Sign("acc-1", "sess-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	a := &mockAuthorizer{}
	a.On("Authorize", mock.Anything, "sess-1").Return(&domain.Session{Token: "sess-1", AccountID: "acc-2"}, nil)

	rr := serve(t, p, a, "Bearer "+signed, http.HandlerFunc(okHandler))
	assert.Equal(t, http.StatusUnauthorized, rr.Code)
}

func TestAuth_ValidToken_InjectsClaims(t *testing.T) {
	p := newTestProvider(t)
	signed, err := p.Sign("acc-1", "sess-1", time.Now().Add(time.Hour))
	require.NoError(t, err)
	a := &mockAuthorizer{}
	a.On("Authorize", mock.Anything, "sess-1").Return(&domain.Session{Token: "sess-1", AccountID: "acc-1"}, nil)

	var gotClaims *jwtinfra.Claims
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotClaims, _ = ClaimsFromContext(r.Context())
		w.WriteHeader(http.StatusOK)
	})
	rr := serve(t, p, a, "Bearer "+signed, capture)

	assert.Equal(t, http.StatusOK, rr.Code)
	require.NotNil(t, gotClaims)
	assert.Equal(t, "acc-1", gotClaims.AccountID)
	assert.Equal(t, "sess-1", gotClaims.SessionID)
}
