// Package repomanager hands out repositories bound to one storage backend
// and runs work against them transactionally.
package repomanager

import (
	"context"

	"github.com/dmitrijs2005/sparkbytes/internal/server/repositories/events"
	"github.com/dmitrijs2005/sparkbytes/internal/server/repositories/users"
)

type RepositoryManager interface {
	Users() users.Repository
	Events() events.Repository
	// WithTx runs fn with a manager whose repositories share one
	// transaction. The transaction commits iff fn returns nil.
	WithTx(ctx context.Context, fn func(ctx context.Context, m RepositoryManager) error) error
	Close() error
}
