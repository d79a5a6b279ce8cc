package refreshtokens

import (
	"context"
	"sync"
	"time"

	"github.com/dmitrijs2005/authkeeper/internal/common"
)

// MemoryRepository is an in-process Repository used by tests and by the
// in-memory repository manager.
type MemoryRepository struct {
	mu     sync.RWMutex
	tokens map[string]RefreshToken
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{tokens: make(map[string]RefreshToken)}
}

func (r *MemoryRepository) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tokens[token] = RefreshToken{
		UserID:    userID,
		Token:     token,
		ExpiresAt: time.Now().Add(validity),
	}
	return nil
}

func (r *MemoryRepository) Find(ctx context.Context, token string) (*RefreshToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	rt, ok := r.tokens[token]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &rt, nil
}

func (r *MemoryRepository) Delete(ctx context.Context, token string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tokens, token)
	return nil
}

func (r *MemoryRepository) DeleteByUser(ctx context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, rt := range r.tokens {
		if rt.UserID == userID {
			delete(r.tokens, token)
		}
	}
	return nil
}
