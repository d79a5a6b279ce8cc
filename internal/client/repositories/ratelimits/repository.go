// Package ratelimits persists per-identifier login-attempt entries in the
// client database.
package ratelimits

import (
	"context"
	"time"
)

// Entry is the persisted rate-limit state for one identifier (the login
// email). FirstAttempt anchors the sliding window; BlockExpires is the zero
// time when no block is active.
type Entry struct {
	Identifier   string
	Count        int
	FirstAttempt time.Time
	Attempts     int
	Blocked      bool
	BlockExpires time.Time
}

type Repository interface {
	// Get returns the entry for identifier, or common.ErrNotFound.
	Get(ctx context.Context, identifier string) (*Entry, error)
	// Save inserts or replaces the entry.
	Save(ctx context.Context, entry *Entry) error
	// Delete removes the entry; deleting a missing entry is not an error.
	Delete(ctx context.Context, identifier string) error
}
