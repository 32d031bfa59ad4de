package users

import (
	"context"
	"slices"
	"sync"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
)

// MemoryRepository keeps accounts in a map. Used when no database DSN is
// configured and in tests.
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]models.User
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{users: make(map[string]models.User)}
}

func (r *MemoryRepository) Create(ctx context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[user.UserID]; ok {
		return common.ErrAlreadyExists
	}
	r.users[user.UserID] = clone(*user)
	return nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	u = clone(u)
	return &u, nil
}

func (r *MemoryRepository) UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	u, ok := r.users[userID]
	if !ok {
		return nil, common.ErrNotFound
	}
	u.Preferences = prefs
	r.users[userID] = u

	u = clone(u)
	return &u, nil
}

func clone(u models.User) models.User {
	u.PasswordHash = slices.Clone(u.PasswordHash)
	return u
}
