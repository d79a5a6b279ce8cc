package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// HTTPClient talks JSON to the identity endpoint. It holds the
// endpoint-issued token pair and transparently refreshes the access token
// once when a request is rejected as unauthenticated.
type HTTPClient struct {
	baseURL string
	http    *http.Client

	mu           sync.Mutex
	accessToken  string
	refreshToken string
}

func NewHTTPClient(baseURL string) *HTTPClient {
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginResponse struct {
	User         models.User `json:"user"`
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

func (c *HTTPClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	var resp loginResponse
	status, err := c.post(ctx, "/api/auth/login", loginRequest{Email: email, Password: password}, &resp, "")
	if err != nil {
		return nil, err
	}

	switch status {
	case http.StatusOK:
	case http.StatusUnauthorized:
		return nil, ErrUnauthorized
	case http.StatusTooManyRequests:
		return nil, ErrRateLimited
	default:
		return nil, fmt.Errorf("login: unexpected status %d", status)
	}

	c.mu.Lock()
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	c.mu.Unlock()

	return &resp.User, nil
}

func (c *HTTPClient) Logout(ctx context.Context) error {
	c.mu.Lock()
	access := c.accessToken
	c.accessToken = ""
	c.refreshToken = ""
	c.mu.Unlock()

	if access == "" {
		return nil
	}

	status, err := c.post(ctx, "/api/auth/logout", nil, nil, access)
	if err != nil {
		return err
	}
	if status != http.StatusNoContent && status != http.StatusOK {
		return fmt.Errorf("logout: unexpected status %d", status)
	}
	return nil
}

// Refresh rotates the endpoint-issued pair. Exposed for long-lived
// sessions; Login stores the pair it returns.
func (c *HTTPClient) Refresh(ctx context.Context) error {
	c.mu.Lock()
	refresh := c.refreshToken
	c.mu.Unlock()

	if refresh == "" {
		return ErrUnauthorized
	}

	var resp refreshResponse
	status, err := c.post(ctx, "/api/auth/refresh", refreshRequest{RefreshToken: refresh}, &resp, "")
	if err != nil {
		return err
	}
	if status == http.StatusUnauthorized {
		return ErrUnauthorized
	}
	if status != http.StatusOK {
		return fmt.Errorf("refresh: unexpected status %d", status)
	}

	c.mu.Lock()
	c.accessToken = resp.AccessToken
	c.refreshToken = resp.RefreshToken
	c.mu.Unlock()
	return nil
}

func (c *HTTPClient) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/ping", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ping: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPClient) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// post sends a JSON request and decodes a JSON response into out (when out
// is non-nil and the endpoint returned a body). Transport failures map to
// ErrUnavailable; HTTP status handling is the caller's business.
func (c *HTTPClient) post(ctx context.Context, path string, body, out any, accessToken string) (int, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return 0, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, reader)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")
	if accessToken != "" {
		req.Header.Set(common.AccessTokenHeaderName, "Bearer "+accessToken)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if out != nil && resp.StatusCode == http.StatusOK {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return resp.StatusCode, fmt.Errorf("decoding response: %w", err)
		}
	}
	return resp.StatusCode, nil
}
