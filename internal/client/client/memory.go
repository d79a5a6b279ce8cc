package client

import (
	"context"
	"crypto/subtle"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
)

// Account is one record in the static credential set.
type Account struct {
	User     models.User
	Password string
}

// MemoryClient is an in-process identity stand-in backed by a static
// credential set. Used in tests and offline development; a production
// deployment points the core at the HTTP client instead.
type MemoryClient struct {
	accounts map[string]Account
}

// NewMemoryClient copies the given accounts keyed by email.
func NewMemoryClient(accounts []Account) *MemoryClient {
	m := make(map[string]Account, len(accounts))
	for _, a := range accounts {
		m[a.User.Email] = a
	}
	return &MemoryClient{accounts: m}
}

func (c *MemoryClient) Login(ctx context.Context, email, password string) (*models.User, error) {
	account, ok := c.accounts[email]

	// Compare even for unknown users to keep timing uniform.
	expected := []byte(account.Password)
	match := subtle.ConstantTimeCompare(expected, []byte(password)) == 1
	if !ok || !match {
		return nil, ErrUnauthorized
	}

	user := account.User
	return &user, nil
}

func (c *MemoryClient) Logout(ctx context.Context) error { return nil }

func (c *MemoryClient) Ping(ctx context.Context) error { return nil }

func (c *MemoryClient) Close() error { return nil }
