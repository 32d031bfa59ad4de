// Package metadata is a small key/value table next to the offline snapshot.
// It records when each snapshot scope was last confirmed by the backend.
package metadata

import (
	"context"
	"time"
)

type Repository interface {
	MarkSynced(ctx context.Context, scope string, at time.Time) error
	SyncedAt(ctx context.Context, scope string) (time.Time, bool, error)
	Clear(ctx context.Context) error
}

// syncedAtKey maps the all-events scope "" to "*" so it cannot collide with
// a user id.
func syncedAtKey(scope string) string {
	if scope == "" {
		return "synced_at:*"
	}
	return "synced_at:" + scope
}
