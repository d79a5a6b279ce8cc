package users

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// MemoryRepository is an in-process Repository used by tests and by the
// in-memory repository manager.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *User) (*User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	r.users[user.Email] = *user
	return user, nil
}

func (r *MemoryRepository) GetUserByEmail(ctx context.Context, email string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	user, ok := r.users[email]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &user, nil
}

func (r *MemoryRepository) GetUserByID(ctx context.Context, id string) (*User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, user := range r.users {
		if user.ID == id {
			u := user
			return &u, nil
		}
	}
	return nil, common.ErrNotFound
}
