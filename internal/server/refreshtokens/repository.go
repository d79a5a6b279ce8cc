// Package refreshtokens stores the opaque refresh tokens issued alongside
// access tokens.
package refreshtokens

import (
	"context"
	"time"
)

type RefreshToken struct {
	UserID    string
	Token     string
	ExpiresAt time.Time
}

type Repository interface {
	Create(ctx context.Context, userID string, token string, validity time.Duration) error
	// Find returns common.ErrNotFound for an unknown token.
	Find(ctx context.Context, token string) (*RefreshToken, error)
	Delete(ctx context.Context, token string) error
	// DeleteByUser removes every token issued to the user; used on logout.
	DeleteByUser(ctx context.Context, userID string) error
}
