package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/client/authgate"
	"github.com/dmitrijs2005/sparkbytes/internal/client/client"
	"github.com/dmitrijs2005/sparkbytes/internal/client/config"
	"github.com/dmitrijs2005/sparkbytes/internal/client/mapview"
	"github.com/dmitrijs2005/sparkbytes/internal/client/matcher"
	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/client/profile"
	"github.com/dmitrijs2005/sparkbytes/internal/client/repositories/events"
	"github.com/dmitrijs2005/sparkbytes/internal/client/repositories/snapshot"
	"github.com/dmitrijs2005/sparkbytes/internal/client/session"
	"github.com/dmitrijs2005/sparkbytes/internal/logging"
)

type Mode string

const (
	ModeOffline  Mode = "offline"
	ModeOnline   Mode = "online"
	ModeDisabled Mode = "disabled"
)

// SignInRoute is where the gate sends anonymous users.
const SignInRoute = "/login"

// Snapshot is the read side of the offline copy plus the wipe on logout.
type Snapshot interface {
	List(ctx context.Context, scope string) ([]models.Event, error)
	SyncedAt(ctx context.Context, scope string) (time.Time, bool, error)
	Clear(ctx context.Context) error
}

// MirrorSnapshot is a Snapshot that can also follow the event repository.
type MirrorSnapshot interface {
	Snapshot
	events.Mirror
}

type App struct {
	cfg *config.Config
	log logging.Logger
	api client.Client

	session   *session.Store
	gate      *authgate.Gate
	events    *events.Repository
	snapshot  Snapshot
	presenter *mapview.Presenter
	surface   *mapview.TextSurface
	editor    *profile.Editor

	reader *bufio.Reader
	out    io.Writer
	now    func() time.Time

	mu        sync.Mutex
	mode      Mode
	route     string
	criterion matcher.Criterion
	listed    []models.Event

	closers []io.Closer
}

// NewApp builds the production client: HTTP backend and SQLite snapshot.
func NewApp(ctx context.Context, cfg *config.Config, log logging.Logger) (*App, error) {
	db, err := snapshot.InitDatabase(ctx, cfg.CacheDSN)
	if err != nil {
		log.Error(ctx, "error initializing snapshot database", "dsn", cfg.CacheDSN, "error", err)
		return nil, err
	}

	api, err := client.NewHTTPClient(cfg.ServerURL, cfg.RequestTimeout)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	a := NewAppWith(cfg, api, snapshot.NewRepository(db), os.Stdin, os.Stdout, log)
	a.closers = append(a.closers, db)
	return a, nil
}

// NewAppWith wires an App around the given backend and snapshot. A nil snap
// disables the offline copy.
func NewAppWith(cfg *config.Config, api client.Client, snap MirrorSnapshot, in io.Reader, out io.Writer, log logging.Logger) *App {
	a := &App{
		cfg:       cfg,
		log:       log.With("component", "cli"),
		api:       api,
		reader:    bufio.NewReader(in),
		out:       out,
		now:       time.Now,
		criterion: matcher.ByStartTime,
	}

	opts := []events.Option{events.WithListLimit(cfg.ListLimit)}
	if snap != nil {
		a.snapshot = snap
		opts = append(opts, events.WithMirror(snap))
	}

	a.session = session.NewStore(api, log)
	a.gate = authgate.New(a.session, a, SignInRoute)
	a.events = events.New(api, log, opts...)
	a.presenter = mapview.NewPresenter(log)
	a.surface = mapview.NewTextSurface(out)
	a.editor = profile.NewEditor(api, a.session, a.events, log)

	a.presenter.OnSelect(a.printDetails)
	return a
}

// Run mounts the session, starts the connectivity watcher and runs the REPL
// until the user exits or input ends.
func (a *App) Run(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	defer a.close(ctx)

	a.println("Welcome to SparkBytes (type 'help' for commands)")
	a.session.Mount(ctx)
	go a.watchSession(ctx)
	go a.StartOnlineStatusWatcher(ctx, a.cfg.OnlineCheckInterval)

	runREPL(ctx, a, a.getStatus, a.reader, a.out)
}

func (a *App) close(ctx context.Context) {
	a.events.Close()
	if err := a.api.Close(); err != nil {
		a.log.Warn(ctx, "closing backend client", "error", err)
	}
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			a.log.Warn(ctx, "closing resource", "error", err)
		}
	}
}

// watchSession keeps the presenter and the preference form in step with the
// signed-in user.
func (a *App) watchSession(ctx context.Context) {
	ch, stop := a.session.Subscribe()
	defer stop()
	for {
		select {
		case st, ok := <-ch:
			if !ok {
				return
			}
			if err := a.presenter.SetUser(st.User); err != nil {
				a.log.Debug(ctx, "map re-render after session change", "error", err)
			}
			if st.User != nil {
				a.editor.LoadPreferences(*st.User)
			}
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) Mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.mode
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.mode != mode
	a.mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "connectivity changed", "mode", mode)
	}
}

// StartOnlineStatusWatcher pings the backend every interval and switches
// between online and offline mode. It returns when ctx is done.
func (a *App) StartOnlineStatusWatcher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			a.checkOnline(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (a *App) checkOnline(ctx context.Context) {
	ctx, cancel := context.WithTimeout(ctx, a.cfg.RequestTimeout)
	defer cancel()

	if err := a.api.Ping(ctx); err != nil {
		if a.Mode() != ModeOffline {
			a.setMode(ModeOffline)
		}
		return
	}
	if a.Mode() != ModeOnline {
		a.setMode(ModeOnline)
	}
}

// Redirect implements authgate.Navigator.
func (a *App) Redirect(ctx context.Context, route string) error {
	a.mu.Lock()
	a.route = route
	a.mu.Unlock()
	a.println("You need to sign in first: type 'login'.")
	return nil
}

func (a *App) Route() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.route
}

func (a *App) isLoggedIn() bool {
	return a.session.State().Status == session.StatusAuthenticated
}

func (a *App) getStatus() string {
	var parts []string
	if u, ok := a.session.User(); ok {
		parts = append(parts, u.UserID)
	} else if st := a.session.State(); !st.Resolved() {
		parts = append(parts, st.Status.String())
	}
	if m := a.Mode(); m != "" {
		parts = append(parts, string(m))
	}
	if len(parts) == 0 {
		return ""
	}
	return "(" + strings.Join(parts, " ") + ")"
}

func (a *App) println(args ...any) {
	fmt.Fprintln(a.out, args...)
}

func (a *App) printf(format string, args ...any) {
	fmt.Fprintf(a.out, format, args...)
}
