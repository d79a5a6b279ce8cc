// Package db wires the server repositories over their storage backend.
package db

import (
	"context"
	"database/sql"

	"github.com/dmitrijs2005/authkeeper/internal/server/refreshtokens"
	"github.com/dmitrijs2005/authkeeper/internal/server/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context) error
	Conn() *sql.DB
	Close() error
	Users() users.Repository
	RefreshTokens() refreshtokens.Repository
}
