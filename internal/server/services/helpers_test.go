package services

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/logging"
	"github.com/dmitrijs2005/sparkbytes/internal/server/config"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
	"github.com/dmitrijs2005/sparkbytes/internal/server/repositories/events"
	"github.com/dmitrijs2005/sparkbytes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sparkbytes/internal/server/repositories/users"
	"github.com/stretchr/testify/require"
)

var errDB = errors.New("db down")

func testConfig() *config.Config {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.SecretKey = "k"
	cfg.AccessTokenValidityDuration = time.Hour
	return cfg
}

func newUsers(t *testing.T, m repomanager.RepositoryManager) *UserService {
	t.Helper()
	s := NewUserService(m, testConfig(), logging.NewDiscard())
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s
}

func newEvents(t *testing.T, m repomanager.RepositoryManager) *EventService {
	t.Helper()
	s := NewEventService(m, logging.NewDiscard())
	n := 0
	s.newID = func() string {
		n++
		return fmt.Sprintf("ev-%d", n)
	}
	s.now = func() time.Time { return time.Unix(1700000000, 0) }
	return s
}

func seedUser(t *testing.T, s *UserService, name, pw string) {
	t.Helper()
	require.NoError(t, s.EnsureUser(context.Background(), name, []byte(pw)))
}

// brokenManager fails every repository call with errDB.
type brokenManager struct{}

func (brokenManager) Users() users.Repository   { return brokenUsers{} }
func (brokenManager) Events() events.Repository { return brokenEvents{} }
func (m brokenManager) WithTx(ctx context.Context, fn func(context.Context, repomanager.RepositoryManager) error) error {
	return fn(ctx, m)
}
func (brokenManager) Close() error { return nil }

type brokenUsers struct{}

func (brokenUsers) Create(context.Context, *models.User) error { return errDB }
func (brokenUsers) GetByID(context.Context, string) (*models.User, error) {
	return nil, errDB
}
func (brokenUsers) UpdatePreferences(context.Context, string, models.Preferences) (*models.User, error) {
	return nil, errDB
}

type brokenEvents struct{}

func (brokenEvents) Create(context.Context, []models.Event) error { return errDB }
func (brokenEvents) Get(context.Context, string) (*models.Event, error) {
	return nil, errDB
}
func (brokenEvents) Update(context.Context, models.Event) (*models.Event, error) {
	return nil, errDB
}
func (brokenEvents) Delete(context.Context, string) error { return errDB }
func (brokenEvents) List(context.Context, models.ListRequest) ([]models.Event, error) {
	return nil, errDB
}
