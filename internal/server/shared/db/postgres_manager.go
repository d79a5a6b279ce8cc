package db

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/dmitrijs2005/authkeeper/internal/server/migrations"
	"github.com/dmitrijs2005/authkeeper/internal/server/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/users"
)

type PostgresRepositoryManager struct {
	db            *sql.DB
	users         users.Repository
	refreshTokens refreshtokens.Repository
}

func (m *PostgresRepositoryManager) Conn() *sql.DB {
	return m.db
}

func (m *PostgresRepositoryManager) Close() error {
	return m.db.Close()
}

func (m *PostgresRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *PostgresRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func (m *PostgresRepositoryManager) RunMigrations(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}

	return goose.UpContext(ctx, m.db, ".")
}

func NewPostgresRepositoryManager(dsn string) (RepositoryManager, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	userRepo, err := users.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("user repo creation error: %w", err)
	}

	refreshTokenRepo, err := refreshtokens.NewPostgresRepository(db)
	if err != nil {
		return nil, fmt.Errorf("refresh token repo creation error: %w", err)
	}

	m := &PostgresRepositoryManager{
		db:            db,
		users:         userRepo,
		refreshTokens: refreshTokenRepo,
	}

	if err := m.RunMigrations(context.Background()); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	return m, nil
}
