// Package matcher relates events to a user's dietary preferences and orders
// event lists for display.
package matcher

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
)

// MatchedFlags returns the dimensions that the user wants and the event
// offers. A nil user matches nothing.
func MatchedFlags(u *models.User, e models.Event) models.Flag {
	if u == nil {
		return models.FlagNone
	}
	return u.Preferences.Flags() & e.Preferences.Flags()
}

// Matches reports whether any wanted dimension is offered by the event.
func Matches(u *models.User, e models.Event) bool {
	return MatchedFlags(u, e) != models.FlagNone
}

type Criterion string

const (
	ByStartTime Criterion = "time"
	MatchFirst  Criterion = "match"
)

var ErrUnknownCriterion = errors.New("unknown sort criterion")

func ParseCriterion(s string) (Criterion, error) {
	switch c := Criterion(strings.ToLower(strings.TrimSpace(s))); c {
	case ByStartTime, MatchFirst:
		return c, nil
	case "":
		return ByStartTime, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCriterion, s)
}

// Start time layouts accepted from the backend. The second one is what a
// datetime-local form field produces.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// ParseTime parses an event start or end time.
func ParseTime(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// Sort returns a new, stably ordered slice; events is not modified.
//
// ByStartTime orders by start time, ascending; events whose start time
// cannot be parsed keep their relative order after all the others.
// MatchFirst moves events matching u in front of the rest, otherwise keeping
// the input order. With a nil user it is the identity.
func Sort(events []models.Event, c Criterion, u *models.User) ([]models.Event, error) {
	out := slices.Clone(events)
	if out == nil {
		out = []models.Event{}
	}

	switch c {
	case ByStartTime:
		type keyed struct {
			at time.Time
			ok bool
			e  models.Event
		}
		ks := make([]keyed, len(out))
		for i, e := range out {
			at, ok := ParseTime(e.StartTime)
			ks[i] = keyed{at: at, ok: ok, e: e}
		}
		slices.SortStableFunc(ks, func(a, b keyed) int {
			switch {
			case a.ok && b.ok:
				return a.at.Compare(b.at)
			case a.ok:
				return -1
			case b.ok:
				return 1
			}
			return 0
		})
		for i, k := range ks {
			out[i] = k.e
		}
		return out, nil

	case MatchFirst:
		if u == nil {
			return out, nil
		}
		slices.SortStableFunc(out, func(a, b models.Event) int {
			ma, mb := Matches(u, a), Matches(u, b)
			switch {
			case ma == mb:
				return 0
			case ma:
				return -1
			}
			return 1
		})
		return out, nil
	}

	return nil, fmt.Errorf("%w: %q", ErrUnknownCriterion, string(c))
}
