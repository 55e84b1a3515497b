package memory

import (
	"context"
	"sync"
	"time"

	"github.com/geocoder89/catalogadmin/internal/domain/token"
)

type AccessTokensRepo struct {
	mu    sync.RWMutex
	items map[string]token.AccessToken
}

func NewAccessTokensRepo() *AccessTokensRepo {
	return &AccessTokensRepo{
		items: make(map[string]token.AccessToken),
	}
}

func (r *AccessTokensRepo) Create(_ context.Context, t token.AccessToken) error {
	r.mu.Lock()
	r.items[t.ID] = t
	r.mu.Unlock()

	return nil
}

func (r *AccessTokensRepo) GetByID(_ context.Context, id string) (token.AccessToken, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.items[id]
	if !ok {
		return token.AccessToken{}, token.ErrNotFound
	}
	return t, nil
}

func (r *AccessTokensRepo) Touch(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.items[id]
	if !ok {
		return token.ErrNotFound
	}
	t.LastUsedAt = &at
	r.items[id] = t
	return nil
}

func (r *AccessTokensRepo) DeleteAllForUser(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var n int64
	for id, t := range r.items {
		if t.UserID == userID {
			delete(r.items, id)
			n++
		}
	}
	return n, nil
}

// CountForUser is used by tests to observe revocation.
func (r *AccessTokensRepo) CountForUser(userID int64) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := 0
	for _, t := range r.items {
		if t.UserID == userID {
			n++
		}
	}
	return n
}
