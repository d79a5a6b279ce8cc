package ratelimits

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
	"github.com/dmitrijs2005/authkeeper/internal/dbx"
)

type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository wraps the given handle; pass a transaction to make a
// read-modify-write sequence atomic.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// Timestamps are stored as unix milliseconds; 0 means "no value".

func (r *SQLiteRepository) Get(ctx context.Context, identifier string) (*Entry, error) {
	var (
		e            Entry
		firstAttempt int64
		blockExpires int64
	)

	err := r.db.QueryRowContext(ctx, `
		SELECT identifier, count, first_attempt, attempts, blocked, COALESCE(block_expires, 0)
		FROM rate_limits WHERE identifier = ?`, identifier).
		Scan(&e.Identifier, &e.Count, &firstAttempt, &e.Attempts, &e.Blocked, &blockExpires)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get rate limit entry [%s]: %w", identifier, err)
	}

	e.FirstAttempt = time.UnixMilli(firstAttempt)
	if blockExpires != 0 {
		e.BlockExpires = time.UnixMilli(blockExpires)
	}
	return &e, nil
}

func (r *SQLiteRepository) Save(ctx context.Context, entry *Entry) error {
	var blockExpires int64
	if !entry.BlockExpires.IsZero() {
		blockExpires = entry.BlockExpires.UnixMilli()
	}

	_, err := r.db.ExecContext(ctx, `
		INSERT INTO rate_limits (identifier, count, first_attempt, attempts, blocked, block_expires)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(identifier) DO UPDATE SET
			count = excluded.count,
			first_attempt = excluded.first_attempt,
			attempts = excluded.attempts,
			blocked = excluded.blocked,
			block_expires = excluded.block_expires
	`, entry.Identifier, entry.Count, entry.FirstAttempt.UnixMilli(), entry.Attempts, entry.Blocked, blockExpires)
	if err != nil {
		return fmt.Errorf("failed to save rate limit entry [%s]: %w", entry.Identifier, err)
	}
	return nil
}

func (r *SQLiteRepository) Delete(ctx context.Context, identifier string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM rate_limits WHERE identifier = ?`, identifier)
	if err != nil {
		return fmt.Errorf("failed to delete rate limit entry [%s]: %w", identifier, err)
	}
	return nil
}
