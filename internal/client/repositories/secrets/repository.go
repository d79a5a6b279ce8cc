// Package secrets is the small key-value store for client-side session
// artifacts: the encrypted session blob and the session marker.
package secrets

import "context"

type Repository interface {
	// Get returns the value for key, or (nil, nil) when the key is absent.
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Clear removes every entry; used on logout.
	Clear(ctx context.Context) error
}
