// Package server wires storage, services and the HTTP API together and
// runs them until the process is asked to stop.
package server

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/dmitrijs2005/sparkbytes/internal/logging"
	"github.com/dmitrijs2005/sparkbytes/internal/server/config"
	"github.com/dmitrijs2005/sparkbytes/internal/server/httpapi"
	"github.com/dmitrijs2005/sparkbytes/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/sparkbytes/internal/server/services"
)

type App struct {
	config       *config.Config
	logger       logging.Logger
	repomanager  repomanager.RepositoryManager
	userService  *services.UserService
	eventService *services.EventService
}

// NewApp opens storage and seeds the configured account. An empty
// DatabaseDSN keeps everything in memory.
func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	logger := logging.NewJSONLogger(os.Stdout, logging.ParseLevel(c.LogLevel))

	m, err := openStorage(ctx, c, logger)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	us := services.NewUserService(m, c, logger)
	es := services.NewEventService(m, logger)

	if c.SeedUser != "" {
		if err := us.EnsureUser(ctx, c.SeedUser, []byte(c.SeedPassword)); err != nil {
			_ = m.Close()
			return nil, fmt.Errorf("seed user: %w", err)
		}
	}

	return &App{config: c, logger: logger, repomanager: m, userService: us, eventService: es}, nil
}

func openStorage(ctx context.Context, c *config.Config, logger logging.Logger) (repomanager.RepositoryManager, error) {
	if c.DatabaseDSN == "" {
		logger.Warn(ctx, "no database configured, data is kept in memory")
		return repomanager.NewMemoryRepositoryManager(), nil
	}
	return repomanager.OpenPostgres(ctx, c.DatabaseDSN)
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves the API until ctx is cancelled or a termination signal
// arrives, then closes storage.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")
	app.initSignalHandler(cancelFunc)

	router := httpapi.NewRouter(ctx, httpapi.Deps{
		Config: app.config,
		Log:    app.logger,
		Users:  app.userService,
		Events: app.eventService,
	})
	s := httpapi.NewHTTPServer(app.config.EndpointAddr, router, app.config.ShutdownTimeout, app.logger)

	runErr := s.Run(ctx)
	if err := app.repomanager.Close(); err != nil {
		app.logger.Error(ctx, "close storage", "error", err)
	}
	app.logger.Info(ctx, "App stopped")
	return runErr
}
