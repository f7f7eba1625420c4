package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/orbit-dashboard/orbit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func server(t *testing.T, h http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return New(srv.URL)
}

func TestLogin_StoresBearer(t *testing.T) {
	var sawAuth string
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/auth/login":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "alice", body["username"])
			_, _ = w.Write([]byte(`{"bearer":"b1","account":{"id":"acc-1","username":"alice"},"workspaces":[{"id":"w1","name":"Orbit"}]}`))
		case "/api/workspace/w1/home/activeSessions":
			sawAuth = r.Header.Get("Authorization")
			_, _ = w.Write([]byte(`{"sessions":[]}`))
		}
	})

	res, err := c.Login(context.Background(), "alice", "secret7")
	require.NoError(t, err)
	assert.Equal(t, "alice", res.Account.Username)
	assert.Equal(t, "w1", res.Workspaces[0].WorkspaceID)

	sessions, err := c.ActiveSessions(context.Background(), "w1")
	require.NoError(t, err)
	assert.NotNil(t, sessions)
	assert.Equal(t, "Bearer b1", sawAuth)
}

func TestLogin_ErrorKindsUnwrap(t *testing.T) {
	cases := []struct {
		status int
		kind   string
		want   error
	}{
		{http.StatusNotFound, domain.KindUserNotFound, domain.ErrUserNotFound},
		{http.StatusUnauthorized, domain.KindInvalidCredentials, domain.ErrInvalidCredentials},
		{http.StatusInternalServerError, domain.KindStorageUnavailable, domain.ErrStorageUnavailable},
	}
	for _, tc := range cases {
		c := server(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tc.status)
			_ = json.NewEncoder(w).Encode(map[string]string{"error": "nope", "kind": tc.kind})
		})

		_, err := c.Login(context.Background(), "alice", "x")

		var apiErr *Error
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, tc.status, apiErr.Status)
		assert.Equal(t, "nope", apiErr.Error())
		assert.ErrorIs(t, err, tc.want)
	}
}

func TestFinishSignup_Mismatch(t *testing.T) {
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":false,"error":"code not found in profile description","kind":"VerificationMismatch"}`))
	})

	res, err := c.FinishSignup(context.Background(), "XY99ZZ", "pw")
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, domain.KindVerificationMismatch, res.Kind)
	assert.Nil(t, res.Auth)
	assert.Empty(t, c.Bearer())
}

func TestFinishSignup_Success(t *testing.T) {
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"success":true,"bearer":"b2","account":{"id":"acc-9","username":"bob"},"workspaces":[]}`))
	})

	res, err := c.FinishSignup(context.Background(), "XY99ZZ", "pw")
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.Equal(t, "bob", res.Auth.Account.Username)
	assert.Equal(t, "b2", c.Bearer())
}

func TestStartSignup_UsernameTaken(t *testing.T) {
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusConflict)
		_, _ = w.Write([]byte(`{"error":"username is already taken","kind":"UsernameTaken"}`))
	})

	_, err := c.StartSignup(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrUsernameTaken)
	assert.False(t, Retryable(err))
}

func TestError_WithoutKindFallsBackToStatus(t *testing.T) {
	c := server(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	})

	_, err := c.ActiveSessions(context.Background(), "w1")
	assert.ErrorIs(t, err, domain.ErrForbidden)
}

func TestNetworkErrorIsRetryable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	srv.Close()

	_, err := New(srv.URL).Login(context.Background(), "alice", "secret7")

	var apiErr *Error
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, KindNetwork, apiErr.Kind)
	assert.True(t, Retryable(err))
}
