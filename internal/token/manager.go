// Package token issues and verifies the signed session token pair.
// Tokens are compact JWS (HS256) with issued-at and expiration claims;
// the access and refresh tokens carry the same identity claims and differ
// only in lifetime.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

const (
	DefaultAccessTTL  = 15 * time.Minute
	DefaultRefreshTTL = 7 * 24 * time.Hour
)

// Claims carries the authenticated user identity inside a token.
type Claims struct {
	jwt.RegisteredClaims
	UserID string `json:"uid"`
	Email  string `json:"email"`
	Name   string `json:"name,omitempty"`
	Role   string `json:"role,omitempty"`
}

// Pair is a freshly issued access/refresh token pair.
type Pair struct {
	AccessToken  string
	RefreshToken string
}

// Manager signs and verifies token pairs with a symmetric secret.
// The now field is injectable for expiry tests.
type Manager struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithTTL overrides the access and refresh token lifetimes.
func WithTTL(access, refresh time.Duration) Option {
	return func(m *Manager) {
		if access > 0 {
			m.accessTTL = access
		}
		if refresh > 0 {
			m.refreshTTL = refresh
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a Manager. The secret must not be empty; length
// normalization is the config layer's responsibility.
func NewManager(secret []byte, opts ...Option) (*Manager, error) {
	if len(secret) == 0 {
		return nil, errors.New("token: empty signing secret")
	}
	m := &Manager{
		secret:     secret,
		accessTTL:  DefaultAccessTTL,
		refreshTTL: DefaultRefreshTTL,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// GeneratePair signs the same identity claims twice, once with the access
// TTL and once with the refresh TTL.
func (m *Manager) GeneratePair(userID, email, name, role string) (*Pair, error) {
	access, err := m.sign(userID, email, name, role, m.accessTTL)
	if err != nil {
		return nil, fmt.Errorf("signing access token: %w", err)
	}
	refresh, err := m.sign(userID, email, name, role, m.refreshTTL)
	if err != nil {
		return nil, fmt.Errorf("signing refresh token: %w", err)
	}
	return &Pair{AccessToken: access, RefreshToken: refresh}, nil
}

// GenerateAccessToken signs the identity claims with the access TTL only.
// Used by the server, whose refresh tokens are opaque and stored server-side.
func (m *Manager) GenerateAccessToken(userID, email, name, role string) (string, error) {
	return m.sign(userID, email, name, role, m.accessTTL)
}

func (m *Manager) sign(userID, email, name, role string, ttl time.Duration) (string, error) {
	now := m.now()
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
		UserID: userID,
		Email:  email,
		Name:   name,
		Role:   role,
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
}

// Verify validates signature and expiration and returns the decoded claims.
// Any failure (malformed token, bad signature, expired) yields a nil Claims
// and an error; Verify never panics.
func (m *Manager) Verify(tokenStr string) (*Claims, error) {
	claims := &Claims{}

	parsed, err := jwt.ParseWithClaims(tokenStr, claims,
		func(t *jwt.Token) (any, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, common.ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	if !parsed.Valid {
		return nil, common.ErrInvalidToken
	}

	return claims, nil
}
