package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sparkbytes/internal/common"
	"github.com/dmitrijs2005/sparkbytes/internal/dbx"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
	"github.com/jackc/pgx/v5/pgconn"
)

// isUniqueViolation reports a PostgreSQL unique constraint violation (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type PostgresRepository struct {
	db dbx.DBTX
}

func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Create(ctx context.Context, user *models.User) error {

	query :=
		`INSERT INTO users (user_id, password_hash, created_at, is_vegan, is_halal, is_vegetarian, is_gluten_free)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 `

	_, err := r.db.ExecContext(ctx, query,
		user.UserID, user.PasswordHash, user.CreatedAt,
		user.IsVegan, user.IsHalal, user.IsVegetarian, user.IsGlutenFree)

	if err != nil {
		if isUniqueViolation(err) {
			return common.ErrAlreadyExists
		}
		return fmt.Errorf("db error: %w", err)
	}

	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, userID string) (*models.User, error) {
	query :=
		`SELECT user_id, password_hash, created_at, is_vegan, is_halal, is_vegetarian, is_gluten_free FROM users
		 WHERE user_id = $1
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userID).Scan(&user.UserID, &user.PasswordHash, &user.CreatedAt,
		&user.IsVegan, &user.IsHalal, &user.IsVegetarian, &user.IsGlutenFree)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}

func (r *PostgresRepository) UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) (*models.User, error) {
	query :=
		`UPDATE users SET is_vegan = $2, is_halal = $3, is_vegetarian = $4, is_gluten_free = $5
		 WHERE user_id = $1
		 RETURNING user_id, password_hash, created_at, is_vegan, is_halal, is_vegetarian, is_gluten_free
		 `

	user := &models.User{}
	err := r.db.QueryRowContext(ctx, query, userID, prefs.IsVegan, prefs.IsHalal, prefs.IsVegetarian, prefs.IsGlutenFree).
		Scan(&user.UserID, &user.PasswordHash, &user.CreatedAt,
			&user.IsVegan, &user.IsHalal, &user.IsVegetarian, &user.IsGlutenFree)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return user, nil
}
