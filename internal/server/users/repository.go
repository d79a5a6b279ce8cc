// Package users holds the server-side user store and the credential
// service built on top of it.
package users

import (
	"context"
)

type Repository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetUserByEmail(ctx context.Context, email string) (*User, error)
	GetUserByID(ctx context.Context, id string) (*User, error)
}
