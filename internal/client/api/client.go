package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/orbit-dashboard/orbit/internal/domain"
)

// Client talks to the Orbit HTTP API. It keeps the bearer from the last
// successful login or signup and sends it on authenticated calls.
type Client struct {
	http    *http.Client
	baseURL string

	mu     sync.RWMutex
	bearer string
}

type Option func(*Client)

// WithHTTPClient replaces the default client, which has a 10s timeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{Timeout: 10 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type StartSignupResponse struct {
	Code      string    `json:"code"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AuthResponse struct {
	Bearer     string              `json:"bearer"`
	Session    *domain.Session     `json:"session"`
	Account    *domain.Account     `json:"account"`
	Workspaces []domain.Membership `json:"workspaces"`
}

// FinishSignupResponse carries Auth only when Success is true. A false
// Success means the code was not in the profile bio yet.
type FinishSignupResponse struct {
	Success bool
	Kind    string
	Auth    *AuthResponse
}

type OAuthResponse struct {
	Available   bool   `json:"available"`
	RedirectURL string `json:"redirect_url"`
}

func (c *Client) Bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.bearer
}

func (c *Client) SetBearer(bearer string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bearer = bearer
}

func (c *Client) StartSignup(ctx context.Context, username string) (*StartSignupResponse, error) {
	var out StartSignupResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup/start", map[string]string{"username": username}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) FinishSignup(ctx context.Context, code, password string) (*FinishSignupResponse, error) {
	var out struct {
		AuthResponse
		Success bool   `json:"success"`
		Kind    string `json:"kind"`
	}
	err := c.do(ctx, http.MethodPost, "/api/auth/signup/finish", map[string]string{"code": code, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	if !out.Success {
		return &FinishSignupResponse{Success: false, Kind: out.Kind}, nil
	}
	c.SetBearer(out.Bearer)
	return &FinishSignupResponse{Success: true, Auth: &out.AuthResponse}, nil
}

func (c *Client) Login(ctx context.Context, username, password string) (*AuthResponse, error) {
	var out AuthResponse
	err := c.do(ctx, http.MethodPost, "/api/auth/login", map[string]string{"username": username, "password": password}, &out)
	if err != nil {
		return nil, err
	}
	c.SetBearer(out.Bearer)
	return &out, nil
}

func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil); err != nil {
		return err
	}
	c.SetBearer("")
	return nil
}

// ActiveSessions lists the workspace's running sessions. Never nil on success.
func (c *Client) ActiveSessions(ctx context.Context, workspaceID string) ([]domain.ActiveSession, error) {
	var out struct {
		Sessions []domain.ActiveSession `json:"sessions"`
	}
	path := "/api/workspace/" + url.PathEscape(workspaceID) + "/home/activeSessions"
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	if out.Sessions == nil {
		out.Sessions = []domain.ActiveSession{}
	}
	return out.Sessions, nil
}

func (c *Client) OAuth(ctx context.Context) (*OAuthResponse, error) {
	var out OAuthResponse
	if err := c.do(ctx, http.MethodGet, "/api/auth/oauth", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer := c.Bearer(); bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Kind: KindNetwork, Message: "could not reach server", cause: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
