package client

import (
	"context"

	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
)

// Client is the backend contract the client core relies on. Each core
// component depends only on the slice of it that it uses.
type Client interface {
	Close() error
	Ping(ctx context.Context) error

	Login(ctx context.Context, username string, password []byte) error
	CheckSession(ctx context.Context) (models.User, error)
	Logout(ctx context.Context) error

	ListEvents(ctx context.Context, q models.ListQuery) ([]models.Event, error)
	CreateEvents(ctx context.Context, drafts []models.Event) ([]models.Event, error)
	UpdateEvent(ctx context.Context, e models.Event) (models.Event, error)
	DeleteEvent(ctx context.Context, id string) error

	UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) (models.User, error)
}
