// Package httpapi exposes the backend over JSON/HTTP: the session endpoints
// the client signs in with and the /database CRUD routes for events and
// users.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/sparkbytes/internal/logging"
	"github.com/dmitrijs2005/sparkbytes/internal/server/config"
	"github.com/dmitrijs2005/sparkbytes/internal/server/models"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/rs/cors"
	"golang.org/x/time/rate"
)

// UserService is what the handlers need from services.UserService.
type UserService interface {
	Login(ctx context.Context, userName string, password []byte) (string, error)
	Authenticate(ctx context.Context, token string) (*models.User, error)
	UpdatePreferences(ctx context.Context, callerID, userID string, prefs models.Preferences) (*models.User, error)
}

// EventService is what the handlers need from services.EventService.
type EventService interface {
	Create(ctx context.Context, callerID string, drafts []models.Event) ([]models.Event, error)
	Get(ctx context.Context, id string) (*models.Event, error)
	Put(ctx context.Context, callerID, id string, e models.Event) (*models.Event, error)
	Delete(ctx context.Context, callerID, id string) (*models.Event, error)
	List(ctx context.Context, req models.ListRequest) ([]models.Event, error)
}

type Deps struct {
	Config  *config.Config
	Log     logging.Logger
	Users   UserService
	Events  EventService
	Metrics *Metrics
	// Limiter throttles POST /login per client address. Nil builds one from
	// Config.LoginRate and Config.LoginBurst.
	Limiter *IPRateLimiter
}

type handler struct {
	cfg     *config.Config
	log     logging.Logger
	users   UserService
	events  EventService
	metrics *Metrics
}

// NewRouter sets up middleware and routes.
func NewRouter(ctx context.Context, deps Deps) http.Handler {
	h := &handler{
		cfg:     deps.Config,
		log:     deps.Log.With("component", "httpapi"),
		users:   deps.Users,
		events:  deps.Events,
		metrics: deps.Metrics,
	}
	if h.metrics == nil {
		h.metrics = NewMetrics()
	}
	limiter := deps.Limiter
	if limiter == nil {
		limiter = NewIPRateLimiter(ctx, rate.Limit(deps.Config.LoginRate), deps.Config.LoginBurst, h.log)
	}

	r := chi.NewRouter()

	c := cors.New(cors.Options{
		AllowedOrigins:   deps.Config.AllowedOrigins,
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})
	r.Use(c.Handler)

	r.Use(middleware.RequestID)
	// Without a trusted proxy in front, forwarded headers are client input
	// and must not pick the login rate bucket.
	if deps.Config.TrustProxyHeaders {
		r.Use(middleware.RealIP)
	}
	r.Use(requestLogger(h.log))
	r.Use(h.metrics.Middleware)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})
	r.Handle("/metrics", h.metrics.Handler())

	r.With(limiter.Middleware).Post("/login", h.login)
	r.Get("/logout", h.logout)

	r.Group(func(r chi.Router) {
		r.Use(h.requireUser)

		r.Get("/protected", h.protected)

		r.Route("/database/events", func(r chi.Router) {
			r.Post("/", h.createEvents)
			r.Post("/list", h.listEvents)
			r.Get("/{id}", h.getEvent)
			r.Put("/{id}", h.putEvent)
			r.Delete("/{id}", h.deleteEvent)
		})
		r.Put("/database/users/{id}", h.putUser)
	})

	return r
}
