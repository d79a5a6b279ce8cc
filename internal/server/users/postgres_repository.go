package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

type PostgresRepository struct {
	db *sql.DB
}

func NewPostgresRepository(db *sql.DB) (*PostgresRepository, error) {
	return &PostgresRepository{db: db}, nil
}

func (r *PostgresRepository) Create(ctx context.Context, user *User) (*User, error) {
	query :=
		`INSERT INTO users (email, name, role, password_hash)
         VALUES ($1, $2, $3, $4)
		 RETURNING id
		 `

	err := r.db.QueryRowContext(ctx, query,
		user.Email, user.Name, user.Role, user.PasswordHash).Scan(&user.ID)

	if err != nil {
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return user, nil
}

func (r *PostgresRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	query :=
		`SELECT id, email, name, role, password_hash FROM users
		 WHERE email = $1
		 `
	return r.getOne(ctx, query, email)
}

func (r *PostgresRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	query :=
		`SELECT id, email, name, role, password_hash FROM users
		 WHERE id = $1
		 `
	return r.getOne(ctx, query, id)
}

func (r *PostgresRepository) getOne(ctx context.Context, query string, arg any) (*User, error) {
	user := &User{}
	err := r.db.QueryRowContext(ctx, query, arg).Scan(
		&user.ID, &user.Email, &user.Name, &user.Role, &user.PasswordHash)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error performing sql request: %v", err)
	}

	return user, nil
}
