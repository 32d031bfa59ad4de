package repomanager

import (
	"context"
	"sync"

	"github.com/dmitrijs2005/sparkbytes/internal/server/repositories/events"
	"github.com/dmitrijs2005/sparkbytes/internal/server/repositories/users"
)

// MemoryRepositoryManager keeps everything in process. WithTx serializes
// callers but cannot roll back; multi-row writes rely on the repositories
// being all-or-nothing themselves.
type MemoryRepositoryManager struct {
	mu     sync.Mutex
	users  *users.MemoryRepository
	events *events.MemoryRepository
}

func NewMemoryRepositoryManager() *MemoryRepositoryManager {
	return &MemoryRepositoryManager{
		users:  users.NewMemoryRepository(),
		events: events.NewMemoryRepository(),
	}
}

func (m *MemoryRepositoryManager) Users() users.Repository {
	return m.users
}

func (m *MemoryRepositoryManager) Events() events.Repository {
	return m.events
}

func (m *MemoryRepositoryManager) WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx, m)
}

func (m *MemoryRepositoryManager) Close() error { return nil }
