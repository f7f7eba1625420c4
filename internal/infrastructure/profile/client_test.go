package profile

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/orbit-dashboard/orbit/internal/config"
	"github.com/orbit-dashboard/orbit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) config.Profile {
	return config.Profile{
		BaseURL:           baseURL,
		AvatarURLTemplate: "https://img.example/%s.png",
		Timeout:           2 * time.Second,
		RatePerSecond:     100,
		Burst:             10,
	}
}

func directory(t *testing.T, bio string) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /v1/usernames/users", func(w http.ResponseWriter, r *http.Request) {
		var req usernamesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if len(req.Usernames) != 1 || req.Usernames[0] != "alice" {
			_, _ = w.Write([]byte(`{"data":[]}`))
			return
		}
		_, _ = w.Write([]byte(`{"data":[{"id":156,"name":"alice","displayName":"Alice"}]}`))
	})
	mux.HandleFunc("GET /v1/users/156", func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(userResponse{ID: 156, Name: "alice", DisplayName: "Alice", Description: bio})
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestLookup_Found(t *testing.T) {
	srv := directory(t, "hello X7Q2P9LM")
	c := NewClient(testConfig(srv.URL))

	p, err := c.Lookup(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, "156", p.Ref)
	assert.Equal(t, "alice", p.Username)
	assert.Equal(t, "Alice", p.DisplayName)
	assert.Equal(t, "hello X7Q2P9LM", p.Bio)
	assert.Equal(t, "https://img.example/156.png", p.PictureURL)
}

func TestLookup_UnknownUser(t *testing.T) {
	srv := directory(t, "")
	c := NewClient(testConfig(srv.URL))

	_, err := c.Lookup(context.Background(), "nobody")
	assert.ErrorIs(t, err, domain.ErrProfileNotFound)
}

func TestLookup_ServerErrorIsUnreachable(t *testing.T) {
	for _, status := range []int{http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable} {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))
		c := NewClient(testConfig(srv.URL))

		_, err := c.Lookup(context.Background(), "alice")
		assert.ErrorIs(t, err, domain.ErrProfileUnreachable, "status %d", status)
		assert.True(t, domain.Retryable(err))
		srv.Close()
	}
}

func TestLookup_TransportFailureIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	c := NewClient(testConfig(url))
	_, err := c.Lookup(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrProfileUnreachable)
}

func TestLookup_TimeoutIsUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Timeout = 20 * time.Millisecond
	c := NewClient(cfg)
	_, err := c.Lookup(context.Background(), "alice")
	assert.ErrorIs(t, err, domain.ErrProfileUnreachable)
}

func TestLookup_CancelledContext(t *testing.T) {
	srv := directory(t, "")
	c := NewClient(testConfig(srv.URL))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Lookup(ctx, "alice")
	assert.ErrorIs(t, err, domain.ErrProfileUnreachable)
}

func TestAvatarURL_NoTemplate(t *testing.T) {
	cfg := testConfig("http://unused")
	cfg.AvatarURLTemplate = ""
	assert.Empty(t, NewClient(cfg).AvatarURL("1"))
}
