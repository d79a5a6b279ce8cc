// Package storage opens the client-side sqlite database and wires the
// repositories over it.
package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/dmitrijs2005/authkeeper/internal/client/migrations"
	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/ratelimits"
	"github.com/dmitrijs2005/authkeeper/internal/client/repositories/secrets"
)

// Repositories bundles the client-side repositories and the owning DB
// handle so callers can close it.
type Repositories struct {
	RateLimits ratelimits.Repository
	Secrets    secrets.Repository
	DB         *sql.DB
}

// RunMigrations applies the embedded sqlite migrations.
func RunMigrations(ctx context.Context, db *sql.DB) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting goose dialect: %w", err)
	}

	return goose.UpContext(ctx, db, ".")
}

// InitDatabase opens (or creates) the sqlite database at dsn, applies
// migrations, and returns the wired repositories.
func InitDatabase(ctx context.Context, dsn string) (*Repositories, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if err := RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Repositories{
		RateLimits: ratelimits.NewSQLiteRepository(db),
		Secrets:    secrets.NewSQLiteRepository(db),
		DB:         db,
	}, nil
}
