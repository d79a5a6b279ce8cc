package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authkeeper/internal/server/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/users"
)

// InMemoryRepositoryManager backs the repositories with process memory.
// Used in tests and for running the server without postgres.
type InMemoryRepositoryManager struct {
	users         users.Repository
	refreshTokens refreshtokens.Repository
}

func (m InMemoryRepositoryManager) Conn() *sql.DB {
	return nil
}

func (m InMemoryRepositoryManager) Close() error {
	return nil
}

func (m InMemoryRepositoryManager) RunMigrations(ctx context.Context) error {
	return nil
}

func (m InMemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m InMemoryRepositoryManager) RefreshTokens() refreshtokens.Repository {
	return m.refreshTokens
}

func NewInMemoryRepositoryManager() RepositoryManager {
	return InMemoryRepositoryManager{
		users:         users.NewMemoryRepository(),
		refreshTokens: refreshtokens.NewMemoryRepository(),
	}
}
