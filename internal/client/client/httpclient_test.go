package client

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req loginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		switch {
		case req.Email == "a@b.com" && req.Password == "Str0ng!pass":
			json.NewEncoder(w).Encode(loginResponse{
				User:         models.User{ID: "u1", Email: "a@b.com", Name: "Alice"},
				AccessToken:  "access-1",
				RefreshToken: "refresh-1",
			})
		case req.Email == "throttled@b.com":
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.WriteHeader(http.StatusUnauthorized)
		}
	})
	mux.HandleFunc("POST /api/auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		var req refreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.RefreshToken != "refresh-1" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		json.NewEncoder(w).Encode(refreshResponse{AccessToken: "access-2", RefreshToken: "refresh-2"})
	})
	mux.HandleFunc("POST /api/auth/logout", func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") == "" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("GET /api/ping", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "OK"})
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func TestHTTPClient_LoginSuccess(t *testing.T) {
	srv := newTestServer(t)
	c := NewHTTPClient(srv.URL)

	user, err := c.Login(context.Background(), "a@b.com", "Str0ng!pass")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.Equal(t, "a@b.com", user.Email)
}

func TestHTTPClient_LoginRejected(t *testing.T) {
	srv := newTestServer(t)
	c := NewHTTPClient(srv.URL)

	_, err := c.Login(context.Background(), "a@b.com", "wrong")
	require.ErrorIs(t, err, ErrUnauthorized)

	_, err = c.Login(context.Background(), "throttled@b.com", "whatever")
	require.ErrorIs(t, err, ErrRateLimited)
}

func TestHTTPClient_ServerDown(t *testing.T) {
	srv := newTestServer(t)
	url := srv.URL
	srv.Close()

	c := NewHTTPClient(url)

	_, err := c.Login(context.Background(), "a@b.com", "Str0ng!pass")
	require.ErrorIs(t, err, ErrUnavailable)

	err = c.Ping(context.Background())
	require.ErrorIs(t, err, ErrUnavailable)
}

func TestHTTPClient_RefreshRotatesPair(t *testing.T) {
	srv := newTestServer(t)
	c := NewHTTPClient(srv.URL)
	ctx := context.Background()

	// No pair yet.
	require.ErrorIs(t, c.Refresh(ctx), ErrUnauthorized)

	_, err := c.Login(ctx, "a@b.com", "Str0ng!pass")
	require.NoError(t, err)

	require.NoError(t, c.Refresh(ctx))
	assert.Equal(t, "access-2", c.accessToken)
	assert.Equal(t, "refresh-2", c.refreshToken)
}

func TestHTTPClient_LogoutClearsTokens(t *testing.T) {
	srv := newTestServer(t)
	c := NewHTTPClient(srv.URL)
	ctx := context.Background()

	_, err := c.Login(ctx, "a@b.com", "Str0ng!pass")
	require.NoError(t, err)

	require.NoError(t, c.Logout(ctx))
	assert.Empty(t, c.accessToken)
	assert.Empty(t, c.refreshToken)

	// Logging out twice is a no-op.
	require.NoError(t, c.Logout(ctx))
}

func TestHTTPClient_Ping(t *testing.T) {
	srv := newTestServer(t)
	c := NewHTTPClient(srv.URL)

	require.NoError(t, c.Ping(context.Background()))
}
