package memory

import (
	"context"
	"errors"
	"strings"

	"pet-adoption-api/internal/domain/users"
)

type usersRepo struct {
	store *Store
}

func NewUsersRepo(store *Store) users.Repository {
	return &usersRepo{store: store}
}

func (r *usersRepo) Upsert(ctx context.Context, u users.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if strings.TrimSpace(u.ID) == "" {
		return errors.New("user id required")
	}
	if existing, ok := r.store.users[u.ID]; ok {
		u.CreatedAt = existing.CreatedAt
		u.Role = existing.Role
	}
	r.store.users[u.ID] = u
	return nil
}

func (r *usersRepo) GetByID(ctx context.Context, id string) (users.User, error) {
	r.store.mu.RLock()
	defer r.store.mu.RUnlock()

	u, ok := r.store.users[id]
	if !ok {
		return users.User{}, users.ErrNotFound
	}
	return u, nil
}
