package ratelimits

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/authkeeper/internal/common"

	_ "modernc.org/sqlite"
)

func setupDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	_, err = db.Exec(`
CREATE TABLE rate_limits (
  identifier    TEXT PRIMARY KEY,
  count         INTEGER NOT NULL DEFAULT 0,
  first_attempt INTEGER NOT NULL,
  attempts      INTEGER NOT NULL DEFAULT 0,
  blocked       INTEGER NOT NULL DEFAULT 0,
  block_expires INTEGER
);`)
	require.NoError(t, err)
	return db
}

func TestGet_MissingEntry(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))

	_, err := repo.Get(context.Background(), "a@b.com")
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveAndGet_RoundTrip(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	now := time.Now().Truncate(time.Millisecond)
	in := &Entry{
		Identifier:   "a@b.com",
		Count:        3,
		FirstAttempt: now,
		Attempts:     3,
		Blocked:      true,
		BlockExpires: now.Add(time.Minute),
	}
	require.NoError(t, repo.Save(ctx, in))

	got, err := repo.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, in.Count, got.Count)
	assert.Equal(t, in.Attempts, got.Attempts)
	assert.True(t, got.Blocked)
	assert.Equal(t, in.FirstAttempt.UnixMilli(), got.FirstAttempt.UnixMilli())
	assert.Equal(t, in.BlockExpires.UnixMilli(), got.BlockExpires.UnixMilli())
}

func TestSave_UpsertsExisting(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	e := &Entry{Identifier: "a@b.com", Count: 1, FirstAttempt: time.Now(), Attempts: 1}
	require.NoError(t, repo.Save(ctx, e))

	e.Count = 2
	e.Attempts = 2
	require.NoError(t, repo.Save(ctx, e))

	got, err := repo.Get(ctx, "a@b.com")
	require.NoError(t, err)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, 2, got.Attempts)
	assert.False(t, got.Blocked)
	assert.True(t, got.BlockExpires.IsZero())
}

func TestDelete_Idempotent(t *testing.T) {
	repo := NewSQLiteRepository(setupDB(t))
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, &Entry{Identifier: "a@b.com", FirstAttempt: time.Now()}))
	require.NoError(t, repo.Delete(ctx, "a@b.com"))
	require.NoError(t, repo.Delete(ctx, "a@b.com"))

	_, err := repo.Get(ctx, "a@b.com")
	require.ErrorIs(t, err, common.ErrNotFound)
}
