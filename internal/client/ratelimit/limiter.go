// Package ratelimit enforces the login-attempt budget per identifier:
// failed attempts accumulate inside a sliding window, and crossing the
// budget triggers an exponential-backoff block. State is persisted so a
// block survives process restart.
package ratelimit

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/ratelimits"
	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
)

const (
	// MaxAttempts is the failed-attempt budget inside one window.
	MaxAttempts = 5
	// Window is the sliding window within which attempts accumulate.
	Window = 15 * time.Minute
	// BaseBlockDuration is the first block length; it doubles per extra
	// attempt past the budget.
	BaseBlockDuration = time.Minute
	// MaxBlockDuration caps the backoff.
	MaxBlockDuration = time.Hour

	// maxBackoffShift caps the doubling exponent so the shift cannot
	// overflow before MaxBlockDuration clamps the result.
	maxBackoffShift = 6
)

// Result is the outcome of a Check call.
type Result struct {
	Allowed           bool
	WaitMinutes       int
	RemainingAttempts int
}

// LimitError is the user-facing denial carrying the computed wait time.
// errors.Is(err, common.ErrRateLimited) matches it.
type LimitError struct {
	WaitMinutes       int
	RemainingAttempts int
}

func (e *LimitError) Error() string {
	return fmt.Sprintf("too many login attempts, try again in %d minute(s)", e.WaitMinutes)
}

func (e *LimitError) Is(target error) bool {
	return target == common.ErrRateLimited
}

// Limiter tracks login attempts per identifier. The read-modify-write of
// an entry is a critical section: a process-wide mutex plus a database
// transaction, so interleaved calls never lose updates.
type Limiter struct {
	db  *sql.DB
	mu  sync.Mutex
	now func() time.Time
}

// Option configures a Limiter.
type Option func(*Limiter)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// New creates a Limiter persisting entries in the given client database.
func New(db *sql.DB, opts ...Option) *Limiter {
	l := &Limiter{db: db, now: time.Now}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Check records a login attempt for identifier and decides whether it may
// proceed. A denied check while a block is active does not increment the
// counters.
func (l *Limiter) Check(ctx context.Context, identifier string) (*Result, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	var result *Result

	err := dbx.WithTx(ctx, l.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := ratelimits.NewSQLiteRepository(tx)
		now := l.now()

		entry, err := repo.Get(ctx, identifier)
		if errors.Is(err, common.ErrNotFound) {
			entry = &ratelimits.Entry{Identifier: identifier, FirstAttempt: now}
		} else if err != nil {
			return err
		}

		// Active block: deny without counting the attempt.
		if entry.Blocked && now.Before(entry.BlockExpires) {
			result = &Result{
				Allowed:           false,
				WaitMinutes:       waitMinutes(entry.BlockExpires.Sub(now)),
				RemainingAttempts: remaining(entry.Attempts),
			}
			return nil
		}

		// Lazy unblock: an entry is never observed blocked past its expiry.
		if entry.Blocked {
			entry.Blocked = false
			entry.BlockExpires = time.Time{}
			entry.Attempts = 0
		}

		if now.Sub(entry.FirstAttempt) > Window {
			entry.Count = 0
			entry.FirstAttempt = now
			entry.Attempts = 0
		}

		entry.Count++
		entry.Attempts++

		if entry.Attempts >= MaxAttempts {
			blockDuration := backoffDuration(entry.Attempts)
			entry.Blocked = true
			entry.BlockExpires = now.Add(blockDuration)

			if err := repo.Save(ctx, entry); err != nil {
				return err
			}
			result = &Result{
				Allowed:           false,
				WaitMinutes:       waitMinutes(blockDuration),
				RemainingAttempts: remaining(entry.Attempts),
			}
			return nil
		}

		if err := repo.Save(ctx, entry); err != nil {
			return err
		}
		result = &Result{
			Allowed:           true,
			RemainingAttempts: remaining(entry.Attempts),
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("checking rate limit for %s: %w", identifier, err)
	}

	return result, nil
}

// Reset deletes the entry for identifier entirely. Called after a
// successful login.
func (l *Limiter) Reset(ctx context.Context, identifier string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	repo := ratelimits.NewSQLiteRepository(l.db)
	if err := repo.Delete(ctx, identifier); err != nil {
		return fmt.Errorf("resetting rate limit for %s: %w", identifier, err)
	}
	return nil
}

// backoffDuration doubles the base duration for every attempt past the
// budget, capped at MaxBlockDuration.
func backoffDuration(attempts int) time.Duration {
	shift := attempts - MaxAttempts
	if shift > maxBackoffShift {
		shift = maxBackoffShift
	}
	d := BaseBlockDuration << shift
	if d > MaxBlockDuration {
		d = MaxBlockDuration
	}
	return d
}

func waitMinutes(d time.Duration) int {
	m := int((d + time.Minute - 1) / time.Minute)
	if m < 1 {
		m = 1
	}
	return m
}

func remaining(attempts int) int {
	r := MaxAttempts - attempts
	if r < 0 {
		return 0
	}
	return r
}
