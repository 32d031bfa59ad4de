package events

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/dmitrijs2005/sparkbytes/internal/dbx"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
)

const eventColumns = `id, user_id, created_at, name, description, location, latitude, longitude,
	start_time, end_time, is_vegan, is_halal, is_vegetarian, is_gluten_free`

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEvent(s scanner) (*models.Event, error) {
	e := &models.Event{}
	err := s.Scan(&e.ID, &e.UserID, &e.CreatedAt, &e.Name, &e.Description, &e.Location, &e.Latitude, &e.Longitude,
		&e.StartTime, &e.EndTime, &e.IsVegan, &e.IsHalal, &e.IsVegetarian, &e.IsGlutenFree)
	if err != nil {
		return nil, err
	}
	return e, nil
}

// Create inserts every event. Run it inside a transaction to make the batch
// all-or-nothing.
func (r *PostgresRepository) Create(ctx context.Context, events []models.Event) error {
	query :=
		`INSERT INTO events (` + eventColumns + `)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		 `

	for _, e := range events {
		_, err := r.db.ExecContext(ctx, query,
			e.ID, e.UserID, e.CreatedAt, e.Name, e.Description, e.Location, e.Latitude, e.Longitude,
			e.StartTime, e.EndTime, e.IsVegan, e.IsHalal, e.IsVegetarian, e.IsGlutenFree)
		if err != nil {
			return fmt.Errorf("db error: %w", err)
		}
	}
	return nil
}

func (r *PostgresRepository) Get(ctx context.Context, id string) (*models.Event, error) {
	query := `SELECT ` + eventColumns + ` FROM events WHERE id = $1`

	e, err := scanEvent(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return e, nil
}

// Update overwrites the editable fields of e.ID. Owner and creation time
// are left alone.
func (r *PostgresRepository) Update(ctx context.Context, e models.Event) (*models.Event, error) {
	query :=
		`UPDATE events SET name = $2, description = $3, location = $4, latitude = $5, longitude = $6,
		 start_time = $7, end_time = $8, is_vegan = $9, is_halal = $10, is_vegetarian = $11, is_gluten_free = $12
		 WHERE id = $1
		 RETURNING ` + eventColumns

	updated, err := scanEvent(r.db.QueryRowContext(ctx, query,
		e.ID, e.Name, e.Description, e.Location, e.Latitude, e.Longitude,
		e.StartTime, e.EndTime, e.IsVegan, e.IsHalal, e.IsVegetarian, e.IsGlutenFree))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return updated, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	if err := dbx.RequireOneRow(res); err != nil {
		if errors.Is(err, dbx.ErrNoRowsAffected) {
			return common.ErrNotFound
		}
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, req models.ListRequest) ([]models.Event, error) {
	col, err := orderColumn(req.OrderBy)
	if err != nil {
		return nil, err
	}

	var (
		conds []string
		args  []any
	)
	if req.UserID != nil {
		args = append(args, *req.UserID)
		conds = append(conds, fmt.Sprintf("user_id = $%d", len(args)))
	}
	if req.AfterID != "" {
		args = append(args, req.AfterID)
		conds = append(conds, fmt.Sprintf("%[1]s > (SELECT %[1]s FROM events WHERE id = $%[2]d)", col, len(args)))
	}
	if req.BeforeID != "" {
		args = append(args, req.BeforeID)
		conds = append(conds, fmt.Sprintf("%[1]s < (SELECT %[1]s FROM events WHERE id = $%[2]d)", col, len(args)))
	}

	dir := "DESC"
	if req.Order == models.OrderAsc {
		dir = "ASC"
	}

	var b strings.Builder
	b.WriteString(`SELECT ` + eventColumns + ` FROM events`)
	if len(conds) > 0 {
		b.WriteString(" WHERE " + strings.Join(conds, " AND "))
	}
	args = append(args, req.Limit)
	fmt.Fprintf(&b, " ORDER BY %s %s, id %s LIMIT $%d", col, dir, dir, len(args))

	rows, err := r.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	defer rows.Close()

	out := []models.Event{}
	for rows.Next() {
		e, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("db error: %w", err)
		}
		out = append(out, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return out, nil
}
