package users

import (
	"context"

	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
)

// Repository stores accounts. Lookups of unknown ids return
// common.ErrNotFound; creating an existing id returns common.ErrAlreadyExists.
type Repository interface {
	Create(ctx context.Context, user *models.User) error
	GetByID(ctx context.Context, userID string) (*models.User, error)
	UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) (*models.User, error)
}
