// Package client defines the identity-endpoint boundary the login core
// depends on, with an HTTP implementation for the real endpoint and an
// in-memory implementation used as a stand-in credential set.
package client

import (
	"context"

	"github.com/dmitrijs2005/authkeeper/internal/client/models"
)

// Client is the external identity boundary: everything the login core
// needs from an identity provider.
type Client interface {
	Close() error
	// Login validates credentials and returns the sanitized user record.
	Login(ctx context.Context, email, password string) (*models.User, error)
	// Logout notifies the endpoint that the session ended. Best effort.
	Logout(ctx context.Context) error
	Ping(ctx context.Context) error
}
