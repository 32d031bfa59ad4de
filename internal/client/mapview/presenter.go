// Package mapview places events on a map surface.
//
// Rendering needs both the event list and an attached surface. Either may
// arrive first; whichever comes last triggers the render. Markers for events
// that match the signed-in user's preferences get IconMatch.
package mapview

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/dmitrijs2005/sparkbytes/internal/client/matcher"
	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/logging"
)

var ErrInvalidPosition = errors.New("invalid coordinates")

type Presenter struct {
	log logging.Logger

	mu        sync.Mutex
	events    []models.Event
	eventsSet bool
	user      *models.User
	surface   Surface
	selected  *models.Event
	renders   int
	listeners []func(models.Event)
}

func NewPresenter(log logging.Logger) *Presenter {
	return &Presenter{log: log.With("component", "mapview")}
}

// SetEvents provides the events to show and renders if a surface is attached.
func (p *Presenter) SetEvents(events []models.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append([]models.Event(nil), events...)
	p.eventsSet = true
	return p.renderLocked()
}

// SetUser changes whose preferences drive the marker icons.
func (p *Presenter) SetUser(u *models.User) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if u != nil {
		cp := *u
		u = &cp
	}
	p.user = u
	return p.renderLocked()
}

// Attach binds the presenter to a ready surface.
func (p *Presenter) Attach(s Surface) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surface = s
	return p.renderLocked()
}

// Detach forgets the surface; events and selection are kept.
func (p *Presenter) Detach() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.surface = nil
}

// OnSelect registers fn to run whenever a marker is activated.
func (p *Presenter) OnSelect(fn func(models.Event)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.listeners = append(p.listeners, fn)
}

func (p *Presenter) Selected() (models.Event, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selected == nil {
		return models.Event{}, false
	}
	return *p.selected, true
}

func (p *Presenter) ClearSelection() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.selected = nil
}

// Renders counts completed renders.
func (p *Presenter) Renders() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.renders
}

func (p *Presenter) renderLocked() error {
	if !p.eventsSet || p.surface == nil {
		return nil
	}

	s := p.surface
	s.Clear()

	var errs []error
	present := make(map[string]models.Event, len(p.events))
	for _, e := range p.events {
		present[e.ID] = e

		pos := LatLng{Lat: e.Latitude, Lng: e.Longitude}
		if math.IsNaN(pos.Lat) || math.IsNaN(pos.Lng) || !pos.Valid() {
			errs = append(errs, fmt.Errorf("event %s at %s: %w", e.ID, pos, ErrInvalidPosition))
			continue
		}

		icon := IconDefault
		if matcher.Matches(p.user, e) {
			icon = IconMatch
		}

		id, err := s.PlaceMarker(Marker{Position: pos, Icon: icon, Title: e.Name})
		if err != nil {
			errs = append(errs, fmt.Errorf("event %s: %w", e.ID, err))
			continue
		}

		popup := popupFor(p.user, e)
		s.OnActivate(id, func() {
			s.OpenPopup(id, popup)
			p.selectEvent(e)
		})
	}

	if p.selected != nil {
		if e, ok := present[p.selected.ID]; ok {
			p.selected = &e
		} else {
			p.selected = nil
		}
	}
	p.renders++

	err := errors.Join(errs...)
	if err != nil {
		p.log.Warn(context.Background(), "some events were not placed", "error", err)
	}
	return err
}

func (p *Presenter) selectEvent(e models.Event) {
	p.mu.Lock()
	p.selected = &e
	listeners := append(([]func(models.Event))(nil), p.listeners...)
	p.mu.Unlock()

	for _, fn := range listeners {
		fn(e)
	}
}

func popupFor(u *models.User, e models.Event) Popup {
	var b strings.Builder
	if e.Location != "" {
		b.WriteString(e.Location)
		b.WriteString("\n")
	}
	if e.StartTime != "" || e.EndTime != "" {
		fmt.Fprintf(&b, "%s - %s\n", e.StartTime, e.EndTime)
	}
	if f := e.Preferences.Flags(); f != models.FlagNone {
		fmt.Fprintf(&b, "offers: %s\n", f)
	}
	if m := matcher.MatchedFlags(u, e); m != models.FlagNone {
		fmt.Fprintf(&b, "matches you: %s\n", m)
	}
	return Popup{Title: e.Name, Body: strings.TrimRight(b.String(), "\n")}
}
