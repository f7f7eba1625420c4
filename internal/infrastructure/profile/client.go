package profile

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/orbit-dashboard/orbit/internal/config"
	"github.com/orbit-dashboard/orbit/internal/domain"
	"golang.org/x/time/rate"
)

// Client reads public profiles from the external user directory.
// Outbound calls share one token bucket so verification retries cannot
// hammer the directory.
type Client struct {
	http           *http.Client
	baseURL        string
	avatarTemplate string
	limiter        *rate.Limiter
}

func NewClient(cfg config.Profile) *Client {
	return &Client{
		http:           &http.Client{Timeout: cfg.Timeout},
		baseURL:        strings.TrimRight(cfg.BaseURL, "/"),
		avatarTemplate: cfg.AvatarURLTemplate,
		limiter:        rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
	}
}

type usernamesRequest struct {
	Usernames          []string `json:"usernames"`
	ExcludeBannedUsers bool     `json:"excludeBannedUsers"`
}

type usernamesResponse struct {
	Data []struct {
		ID          int64  `json:"id"`
		Name        string `json:"name"`
		DisplayName string `json:"displayName"`
	} `json:"data"`
}

type userResponse struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	DisplayName string `json:"displayName"`
	Description string `json:"description"`
}

// Lookup resolves username to its profile including the current bio.
// Returns ErrProfileNotFound when the directory has no such user and
// ErrProfileUnreachable on transport failures, throttling or 5xx.
func (c *Client) Lookup(ctx context.Context, username string) (*domain.ExternalProfile, error) {
	var ids usernamesResponse
	err := c.do(ctx, http.MethodPost, "/v1/usernames/users", usernamesRequest{
		Usernames:          []string{username},
		ExcludeBannedUsers: true,
	}, &ids)
	if err != nil {
		return nil, err
	}
	if len(ids.Data) == 0 {
		return nil, fmt.Errorf("profile %q: %w", username, domain.ErrProfileNotFound)
	}

	var u userResponse
	if err := c.do(ctx, http.MethodGet, "/v1/users/"+strconv.FormatInt(ids.Data[0].ID, 10), nil, &u); err != nil {
		return nil, err
	}

	ref := strconv.FormatInt(u.ID, 10)
	return &domain.ExternalProfile{
		Ref:         ref,
		Username:    u.Name,
		DisplayName: u.DisplayName,
		Bio:         u.Description,
		PictureURL:  c.AvatarURL(ref),
	}, nil
}

// AvatarURL returns the headshot URL for a profile ref, or "" when no
// template is configured.
func (c *Client) AvatarURL(ref string) string {
	if c.avatarTemplate == "" {
		return ""
	}
	return fmt.Sprintf(c.avatarTemplate, ref)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("profile rate limit: %w: %w", domain.ErrProfileUnreachable, err)
	}

	var reader io.Reader = http.NoBody
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal profile request: %w", err)
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build profile request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w: %w", method, path, domain.ErrProfileUnreachable, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, domain.ErrProfileNotFound)
	case resp.StatusCode == http.StatusTooManyRequests, resp.StatusCode >= 500:
		return fmt.Errorf("%s %s: status %d: %w", method, path, resp.StatusCode, domain.ErrProfileUnreachable)
	case resp.StatusCode >= 400:
		return fmt.Errorf("%s %s: unexpected status %d", method, path, resp.StatusCode)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode profile response: %w: %w", domain.ErrProfileUnreachable, err)
	}
	return nil
}
