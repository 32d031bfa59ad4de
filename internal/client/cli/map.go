package cli

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/dmitrijs2005/sparkbytes/internal/client/mapview"
	"github.com/dmitrijs2005/sparkbytes/internal/client/matcher"
	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/client/repositories/events"
)

// Map shows every event as a marker, sorted by start time or with matches
// first ("map match"). The chosen order sticks for later calls.
func (a *App) Map(ctx context.Context, args []string) error {
	if len(args) > 0 {
		c, err := matcher.ParseCriterion(args[0])
		if err != nil {
			return err
		}
		a.mu.Lock()
		a.criterion = c
		a.mu.Unlock()
	}

	return a.protected(ctx, func(ctx context.Context, u models.User) error {
		list, err := a.events.List(ctx, "")
		if errors.Is(err, events.ErrStale) {
			return nil
		}
		if err != nil {
			a.println("Could not load events; 'offline' shows the last saved ones.")
			return err
		}

		a.mu.Lock()
		c := a.criterion
		a.mu.Unlock()

		sorted, err := matcher.Sort(list, c, &u)
		if err != nil {
			return err
		}

		if err := a.presenter.SetEvents(sorted); err != nil {
			a.log.Warn(ctx, "some events have no map position", "error", err)
		}
		if err := a.presenter.Attach(a.surface); err != nil {
			a.log.Warn(ctx, "some events have no map position", "error", err)
		}

		a.printf("%d events, sorted by %s (* = matches your preferences)\n", len(sorted), c)
		a.surface.Print()
		return nil
	})
}

// Select opens the popup of marker n and shows the event details.
func (a *App) Select(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: select <n> (see 'map')")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("not a number: %q", args[0])
	}
	return a.surface.Activate(mapview.MarkerID(n))
}
