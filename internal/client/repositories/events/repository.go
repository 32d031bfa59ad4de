// Package events keeps the client's view of food-sharing events in step with
// the backend.
//
// The Repository is pessimistic: the cache changes only after the backend has
// confirmed a mutation, and a failed call leaves it exactly as it was.
package events

import (
	"context"
	"errors"
	"slices"
	"sync"

	"github.com/dmitrijs2005/sparkbytes/internal/client/errs"
	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/logging"
)

var (
	// ErrStale is returned by List when a newer List started, a mutation was
	// confirmed, or the repository was closed while the request was in
	// flight. The response is dropped.
	ErrStale  = errors.New("stale response discarded")
	ErrClosed = errors.New("repository closed")
)

// Remote is the event part of the backend contract.
type Remote interface {
	ListEvents(ctx context.Context, q models.ListQuery) ([]models.Event, error)
	CreateEvents(ctx context.Context, drafts []models.Event) ([]models.Event, error)
	UpdateEvent(ctx context.Context, e models.Event) (models.Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// Mirror receives every confirmed change, so that a local copy can be kept
// equal to the cache. Mirror failures are logged and never fail the
// operation.
type Mirror interface {
	Replace(ctx context.Context, scope string, events []models.Event) error
	// Upsert adds e to scope and refreshes its copies elsewhere.
	Upsert(ctx context.Context, scope string, e models.Event) error
	// Refresh overwrites stored copies of e without adding it to a scope.
	Refresh(ctx context.Context, e models.Event) error
	Delete(ctx context.Context, id string) error
}

// Confirmer asks the user before a destructive operation.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) (bool, error)
}

// ConfirmFunc adapts a function to Confirmer.
type ConfirmFunc func(ctx context.Context, prompt string) (bool, error)

func (f ConfirmFunc) Confirm(ctx context.Context, prompt string) (bool, error) {
	return f(ctx, prompt)
}

const DeletePrompt = "Are you sure you want to delete this event?"

type Option func(*Repository)

func WithMirror(m Mirror) Option {
	return func(r *Repository) { r.mirror = m }
}

// WithListLimit sets the page size sent with every List. Values outside
// 1..DefaultListLimit are ignored.
func WithListLimit(n int) Option {
	return func(r *Repository) {
		if n > 0 && n <= models.DefaultListLimit {
			r.limit = n
		}
	}
}

type Repository struct {
	remote Remote
	mirror Mirror
	log    logging.Logger
	limit  int

	mu     sync.RWMutex
	cache  []models.Event
	scope  string
	gen    uint64
	closed bool
}

func New(remote Remote, log logging.Logger, opts ...Option) *Repository {
	r := &Repository{
		remote: remote,
		log:    log.With("component", "events"),
		limit:  models.DefaultListLimit,
		cache:  []models.Event{},
	}
	for _, o := range opts {
		o(r)
	}
	return r
}

// List fetches the newest events, optionally scoped to one organizer, and
// replaces the cache with them. On failure it returns an empty slice and a
// *errs.FetchError; the cache keeps its previous contents.
func (r *Repository) List(ctx context.Context, scopeUserID string) ([]models.Event, error) {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return []models.Event{}, errs.NewFetchError("list", ErrClosed)
	}
	r.gen++
	gen := r.gen
	r.mu.Unlock()

	q := models.ListQuery{
		Limit:   r.limit,
		Order:   models.OrderDesc,
		OrderBy: models.OrderByCreatedAt,
		UserID:  scopeUserID,
	}
	fetched, err := r.remote.ListEvents(ctx, q)
	if err != nil {
		fe := errs.NewFetchError("list", err)
		r.log.Error(ctx, "failed to list events", "scope", scopeUserID, "error", fe)
		return []models.Event{}, fe
	}

	fetched = dedupe(fetched)

	r.mu.Lock()
	if r.closed || gen != r.gen {
		r.mu.Unlock()
		r.log.Debug(ctx, "dropping superseded event list", "scope", scopeUserID)
		return []models.Event{}, ErrStale
	}
	r.cache = fetched
	r.scope = scopeUserID
	out := slices.Clone(fetched)
	r.mu.Unlock()

	if r.mirror != nil {
		if err := r.mirror.Replace(ctx, scopeUserID, out); err != nil {
			r.log.Warn(ctx, "failed to mirror event list", "error", err)
		}
	}
	return out, nil
}

// Create sends draft to the backend as a single-element batch and adds the
// created event to the cache.
func (r *Repository) Create(ctx context.Context, draft models.Event) (models.Event, error) {
	if !draft.IsDraft() {
		return models.Event{}, errs.NewPersistenceError("create", errs.ErrNotDraft)
	}
	if err := r.checkOpen("create"); err != nil {
		return models.Event{}, err
	}

	created, err := r.remote.CreateEvents(ctx, []models.Event{draft})
	if err == nil && len(created) != 1 {
		err = errs.ErrEmptyResponse
	}
	if err == nil && created[0].ID == "" {
		err = errs.ErrMissingID
	}
	if err != nil {
		pe := errs.NewPersistenceError("create", err)
		r.log.Error(ctx, "failed to create event", "name", draft.Name, "error", pe)
		return models.Event{}, pe
	}

	e := created[0]
	scope, inScope := r.apply(func(cache []models.Event, scope string) ([]models.Event, bool) {
		if scope != "" && scope != e.UserID {
			return cache, false
		}
		if i := indexOf(cache, e.ID); i >= 0 {
			cache[i] = e
			return cache, true
		}
		return append(cache, e), true
	})
	if inScope {
		r.mirrorUpsert(ctx, scope, e)
	}
	// A new event always belongs to the all-events list the offline view reads.
	if scope != "" || !inScope {
		r.mirrorUpsert(ctx, "", e)
	}

	r.log.Info(ctx, "event created", "id", e.ID)
	return e, nil
}

// Update replaces the whole event on the backend and then in the cache.
func (r *Repository) Update(ctx context.Context, e models.Event) (models.Event, error) {
	if e.ID == "" {
		return models.Event{}, errs.NewPersistenceError("update", errs.ErrMissingID)
	}
	if err := r.checkOpen("update"); err != nil {
		return models.Event{}, err
	}

	updated, err := r.remote.UpdateEvent(ctx, e)
	if err == nil && updated.ID != e.ID {
		err = errs.ErrMissingID
	}
	if err != nil {
		pe := errs.NewPersistenceError("update", err)
		r.log.Error(ctx, "failed to update event", "id", e.ID, "error", pe)
		return models.Event{}, pe
	}

	scope, cached := r.apply(func(cache []models.Event, scope string) ([]models.Event, bool) {
		if i := indexOf(cache, updated.ID); i >= 0 {
			cache[i] = updated
			return cache, true
		}
		return cache, false
	})
	if cached {
		r.mirrorUpsert(ctx, scope, updated)
	} else if r.mirror != nil {
		if err := r.mirror.Refresh(ctx, updated); err != nil {
			r.log.Warn(ctx, "failed to mirror event", "id", updated.ID, "error", err)
		}
	}

	r.log.Info(ctx, "event updated", "id", updated.ID)
	return updated, nil
}

// Delete asks c for confirmation and then deletes the event. A declined
// prompt returns errs.ErrCancelled without contacting the backend. A nil
// Confirmer deletes without asking.
func (r *Repository) Delete(ctx context.Context, id string, c Confirmer) error {
	if id == "" {
		return errs.NewPersistenceError("delete", errs.ErrMissingID)
	}
	if c != nil {
		ok, err := c.Confirm(ctx, DeletePrompt)
		if err != nil {
			return errs.NewPersistenceError("delete", err)
		}
		if !ok {
			return errs.ErrCancelled
		}
	}
	if err := r.checkOpen("delete"); err != nil {
		return err
	}

	if err := r.remote.DeleteEvent(ctx, id); err != nil {
		pe := errs.NewPersistenceError("delete", err)
		r.log.Error(ctx, "failed to delete event", "id", id, "error", pe)
		return pe
	}

	r.apply(func(cache []models.Event, scope string) ([]models.Event, bool) {
		if i := indexOf(cache, id); i >= 0 {
			return slices.Delete(cache, i, i+1), true
		}
		return cache, false
	})
	if r.mirror != nil {
		if err := r.mirror.Delete(ctx, id); err != nil {
			r.log.Warn(ctx, "failed to mirror event delete", "id", id, "error", err)
		}
	}

	r.log.Info(ctx, "event deleted", "id", id)
	return nil
}

// Events returns a copy of the cache.
func (r *Repository) Events() []models.Event {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.cache)
}

func (r *Repository) Find(id string) (models.Event, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := indexOf(r.cache, id); i >= 0 {
		return r.cache[i], true
	}
	return models.Event{}, false
}

// Scope is the organizer filter of the last applied List; empty means all.
func (r *Repository) Scope() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.scope
}

// Close makes in-flight List responses stale and rejects further calls.
func (r *Repository) Close() {
	r.mu.Lock()
	r.closed = true
	r.gen++
	r.mu.Unlock()
}

func (r *Repository) checkOpen(op string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.closed {
		return errs.NewPersistenceError(op, ErrClosed)
	}
	return nil
}

// apply runs fn on a private copy of the cache and installs the result. It
// is called after every confirmed mutation, so it also makes lists already
// in flight stale: their response may predate the change.
func (r *Repository) apply(fn func(cache []models.Event, scope string) ([]models.Event, bool)) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gen++
	next, changed := fn(slices.Clone(r.cache), r.scope)
	if changed {
		r.cache = next
	}
	return r.scope, changed
}

func (r *Repository) mirrorUpsert(ctx context.Context, scope string, e models.Event) {
	if r.mirror == nil {
		return
	}
	if err := r.mirror.Upsert(ctx, scope, e); err != nil {
		r.log.Warn(ctx, "failed to mirror event", "id", e.ID, "error", err)
	}
}

func indexOf(events []models.Event, id string) int {
	return slices.IndexFunc(events, func(e models.Event) bool { return e.ID == id })
}

// dedupe keeps the first occurrence of every id.
func dedupe(events []models.Event) []models.Event {
	out := make([]models.Event, 0, len(events))
	seen := make(map[string]struct{}, len(events))
	for _, e := range events {
		if _, ok := seen[e.ID]; ok {
			continue
		}
		seen[e.ID] = struct{}{}
		out = append(out, e)
	}
	return out
}
