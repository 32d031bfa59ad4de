package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/sparkbytes/internal/client/matcher"
	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/client/repositories/events"
)

// MyEvents lists the events organized by the signed-in user; the numbers
// are what edit and delete take.
func (a *App) MyEvents(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context, u models.User) error {
		list, err := a.events.List(ctx, u.UserID)
		if errors.Is(err, events.ErrStale) {
			return nil
		}
		if err != nil {
			return err
		}
		sorted, err := matcher.Sort(list, matcher.ByStartTime, &u)
		if err != nil {
			return err
		}
		a.setListed(sorted)
		a.println("Your events:")
		a.printEventList(sorted, &u)
		return nil
	})
}

func (a *App) Prefs(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context, u models.User) error {
		a.println("Dietary preferences (toggle <flag>, then saveprefs):")
		a.printPreferences(a.editor.Preferences())
		return nil
	})
}

func (a *App) Toggle(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: toggle <vegan|halal|vegetarian|gluten_free>...")
	}
	return a.protected(ctx, func(ctx context.Context, u models.User) error {
		var f models.Flag
		for _, arg := range args {
			one, err := models.ParseFlag(arg)
			if err != nil {
				return err
			}
			f |= one
		}
		a.printPreferences(a.editor.Toggle(f))
		return nil
	})
}

func (a *App) SavePrefs(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context, _ models.User) error {
		u, err := a.editor.SubmitPreferences(ctx)
		if err != nil {
			return err
		}
		if err := a.presenter.SetUser(&u); err != nil {
			a.log.Debug(ctx, "map re-render after preference change", "error", err)
		}
		a.println("Preferences saved.")
		return nil
	})
}
