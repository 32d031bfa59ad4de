// Package snapshot keeps an offline copy of the last events the backend
// confirmed, one list per scope ("" for all events, otherwise an organizer
// id). It implements events.Mirror, so the copy follows the in-memory cache
// mutation by mutation. The copy is only ever shown read-only while the
// backend is unreachable and is wiped on logout.
package snapshot

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/sparkbytes/internal/dbx"
)

type Repository struct {
	db  *sql.DB
	now func() time.Time
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db, now: time.Now}
}

const eventColumns = `id, user_id, created_at, name, description, location, latitude, longitude,
	start_time, end_time, is_vegan, is_halal, is_vegetarian, is_gluten_free`

func eventArgs(e models.Event) []any {
	return []any{
		e.ID, e.UserID, e.CreatedAt, e.Name, e.Description, e.Location, e.Latitude, e.Longitude,
		e.StartTime, e.EndTime, e.IsVegan, e.IsHalal, e.IsVegetarian, e.IsGlutenFree,
	}
}

// Replace swaps the stored list of scope for events, preserving their order.
func (r *Repository) Replace(ctx context.Context, scope string, events []models.Event) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_events WHERE scope = ?`, scope); err != nil {
			return fmt.Errorf("failed to clear scope %q: %w", scope, err)
		}

		query := `INSERT INTO snapshot_events (scope, position, ` + eventColumns + `)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(scope, id) DO NOTHING`
		for i, e := range events {
			args := append([]any{scope, i}, eventArgs(e)...)
			if _, err := tx.ExecContext(ctx, query, args...); err != nil {
				return fmt.Errorf("failed to insert event %s: %w", e.ID, err)
			}
		}

		return metadata.NewSQLiteRepository(tx).MarkSynced(ctx, scope, r.now())
	})
}

// Upsert stores e under scope, appending it if new. Copies of the same event
// in other scopes are refreshed as well.
func (r *Repository) Upsert(ctx context.Context, scope string, e models.Event) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if err := refresh(ctx, tx, e); err != nil {
			return err
		}

		insert := `INSERT INTO snapshot_events (scope, position, ` + eventColumns + `)
			VALUES (?, (SELECT COALESCE(MAX(position), -1) + 1 FROM snapshot_events WHERE scope = ?),
				?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(scope, id) DO NOTHING`
		args := append([]any{scope, scope}, eventArgs(e)...)
		if _, err := tx.ExecContext(ctx, insert, args...); err != nil {
			return fmt.Errorf("failed to insert event %s: %w", e.ID, err)
		}
		return nil
	})
}

// Refresh overwrites every stored copy of e and adds it to no scope.
func (r *Repository) Refresh(ctx context.Context, e models.Event) error {
	return refresh(ctx, r.db, e)
}

func refresh(ctx context.Context, q dbx.DBTX, e models.Event) error {
	update := `UPDATE snapshot_events SET user_id = ?, created_at = ?, name = ?, description = ?,
		location = ?, latitude = ?, longitude = ?, start_time = ?, end_time = ?,
		is_vegan = ?, is_halal = ?, is_vegetarian = ?, is_gluten_free = ?
		WHERE id = ?`
	args := append(eventArgs(e)[1:], e.ID)
	if _, err := q.ExecContext(ctx, update, args...); err != nil {
		return fmt.Errorf("failed to update event %s: %w", e.ID, err)
	}
	return nil
}

// Delete removes the event from every scope. Deleting an unknown id is not
// an error.
func (r *Repository) Delete(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM snapshot_events WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete event %s: %w", id, err)
	}
	return nil
}

// List returns the stored events of scope in the order they were saved.
func (r *Repository) List(ctx context.Context, scope string) ([]models.Event, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+eventColumns+` FROM snapshot_events WHERE scope = ? ORDER BY position`, scope)
	if err != nil {
		return nil, fmt.Errorf("failed to select events: %w", err)
	}
	defer rows.Close()

	result := []models.Event{}
	for rows.Next() {
		var e models.Event
		if err := rows.Scan(&e.ID, &e.UserID, &e.CreatedAt, &e.Name, &e.Description, &e.Location,
			&e.Latitude, &e.Longitude, &e.StartTime, &e.EndTime,
			&e.IsVegan, &e.IsHalal, &e.IsVegetarian, &e.IsGlutenFree); err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		result = append(result, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// SyncedAt reports when scope was last replaced from the backend.
func (r *Repository) SyncedAt(ctx context.Context, scope string) (time.Time, bool, error) {
	return metadata.NewSQLiteRepository(r.db).SyncedAt(ctx, scope)
}

// Clear wipes every stored event and sync marker.
func (r *Repository) Clear(ctx context.Context) error {
	return dbx.WithTx(ctx, r.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_events`); err != nil {
			return fmt.Errorf("failed to clear events: %w", err)
		}
		return metadata.NewSQLiteRepository(tx).Clear(ctx)
	})
}
