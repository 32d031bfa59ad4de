// Package profile backs the profile page: the preference form and the
// organizer's event draft.
package profile

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/client/errs"
	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/client/repositories/events"
	"github.com/dmitrijs2005/sparkbytes/internal/logging"
)

var (
	ErrNoDraft      = errors.New("no draft in progress")
	ErrUnknownField = errors.New("unknown field")
)

// DraftLayout is the datetime-local layout used for new drafts.
const DraftLayout = "2006-01-02T15:04"

// DraftFields lists the names accepted by SetField.
var DraftFields = []string{
	"name", "description", "location", "latitude", "longitude", "start_time", "end_time",
	"is_vegan", "is_halal", "is_vegetarian", "is_gluten_free",
}

type PreferenceClient interface {
	UpdatePreferences(ctx context.Context, userID string, prefs models.Preferences) (models.User, error)
}

// Session is satisfied by *session.Store.
type Session interface {
	User() (models.User, bool)
	UpdateUser(u *models.User)
}

// EventStore is satisfied by *events.Repository.
type EventStore interface {
	Create(ctx context.Context, draft models.Event) (models.Event, error)
	Update(ctx context.Context, e models.Event) (models.Event, error)
	Delete(ctx context.Context, id string, c events.Confirmer) error
}

type Editor struct {
	client  PreferenceClient
	session Session
	events  EventStore
	log     logging.Logger

	mu     sync.Mutex
	userID string
	prefs  models.Preferences
	draft  *models.Event
}

func NewEditor(c PreferenceClient, s Session, es EventStore, log logging.Logger) *Editor {
	return &Editor{client: c, session: s, events: es, log: log.With("component", "profile")}
}

// LoadPreferences fills the form from u.
func (ed *Editor) LoadPreferences(u models.User) {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.userID = u.UserID
	ed.prefs = u.Preferences
}

// Toggle flips the given dimensions and returns the form state.
func (ed *Editor) Toggle(f models.Flag) models.Preferences {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.prefs = ed.prefs.Toggle(f)
	return ed.prefs
}

func (ed *Editor) Preferences() models.Preferences {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	return ed.prefs
}

// SubmitPreferences saves the form. The session is updated with the user
// exactly as the backend returned it; on failure it is left alone.
func (ed *Editor) SubmitPreferences(ctx context.Context) (models.User, error) {
	ed.mu.Lock()
	userID, prefs := ed.userID, ed.prefs
	ed.mu.Unlock()

	if userID == "" {
		u, ok := ed.session.User()
		if !ok {
			return models.User{}, errs.NewPersistenceError("update preferences", errs.ErrNotAuthenticated)
		}
		userID = u.UserID
	}

	u, err := ed.client.UpdatePreferences(ctx, userID, prefs)
	if err != nil {
		pe := errs.NewPersistenceError("update preferences", err)
		ed.log.Error(ctx, "failed to save preferences", "user_id", userID, "error", pe)
		return models.User{}, pe
	}

	ed.session.UpdateUser(&u)
	ed.LoadPreferences(u)
	ed.log.Info(ctx, "preferences saved", "user_id", u.UserID, "flags", u.Preferences.Flags().String())
	return u, nil
}

// NewDraft starts an empty event draft lasting an hour from now.
func (ed *Editor) NewDraft(now time.Time) models.Event {
	d := models.Event{
		StartTime: now.Format(DraftLayout),
		EndTime:   now.Add(time.Hour).Format(DraftLayout),
	}
	if u, ok := ed.session.User(); ok {
		d.UserID = u.UserID
	}

	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.draft = &d
	return d
}

// EditEvent starts a draft from an existing event.
func (ed *Editor) EditEvent(e models.Event) {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.draft = &e
}

func (ed *Editor) Draft() (models.Event, bool) {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.draft == nil {
		return models.Event{}, false
	}
	return *ed.draft, true
}

func (ed *Editor) CancelDraft() {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	ed.draft = nil
}

// SetField replaces the draft with a copy that has one field changed.
// Unparsable coordinates become 0; an unparsable boolean or an unknown field
// leaves the draft untouched.
func (ed *Editor) SetField(name, value string) (models.Event, error) {
	ed.mu.Lock()
	defer ed.mu.Unlock()
	if ed.draft == nil {
		return models.Event{}, ErrNoDraft
	}

	next := *ed.draft
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "name":
		next.Name = value
	case "description":
		next.Description = value
	case "location":
		next.Location = value
	case "latitude", "lat":
		next.Latitude = parseCoord(value)
	case "longitude", "lng", "lon":
		next.Longitude = parseCoord(value)
	case "start_time", "start":
		next.StartTime = strings.TrimSpace(value)
	case "end_time", "end":
		next.EndTime = strings.TrimSpace(value)
	default:
		f, err := models.ParseFlag(strings.TrimPrefix(strings.ToLower(strings.TrimSpace(name)), "is_"))
		if err != nil {
			return *ed.draft, fmt.Errorf("%w: %s", ErrUnknownField, name)
		}
		on, err := strconv.ParseBool(strings.TrimSpace(value))
		if err != nil {
			return *ed.draft, fmt.Errorf("%s: %w", name, err)
		}
		if next.Preferences.Flags().Has(f) != on {
			next.Preferences = next.Preferences.Toggle(f)
		}
	}

	ed.draft = &next
	return next, nil
}

// SaveDraft creates the draft if it has no id and updates it otherwise. The
// draft is cleared on success and kept on failure.
func (ed *Editor) SaveDraft(ctx context.Context) (models.Event, error) {
	ed.mu.Lock()
	d := ed.draft
	ed.mu.Unlock()
	if d == nil {
		return models.Event{}, ErrNoDraft
	}

	var (
		saved models.Event
		err   error
	)
	if d.IsDraft() {
		saved, err = ed.events.Create(ctx, *d)
	} else {
		saved, err = ed.events.Update(ctx, *d)
	}
	if err != nil {
		return models.Event{}, err
	}

	ed.mu.Lock()
	if ed.draft == d {
		ed.draft = nil
	}
	ed.mu.Unlock()
	return saved, nil
}

func (ed *Editor) DeleteEvent(ctx context.Context, id string, c events.Confirmer) error {
	return ed.events.Delete(ctx, id, c)
}

func parseCoord(s string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return v
}
