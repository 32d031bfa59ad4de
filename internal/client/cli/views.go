package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/sparkbytes/internal/client/matcher"
	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
)

// view adapts a render func to authgate.View.
type view struct {
	out    io.Writer
	render func(ctx context.Context, u models.User) error
}

func (v view) Placeholder() { fmt.Fprintln(v.out, "Loading...") }

func (v view) Render(ctx context.Context, u models.User) error { return v.render(ctx, u) }

// protected runs render behind the auth gate once the session has settled.
func (a *App) protected(ctx context.Context, render func(ctx context.Context, u models.User) error) error {
	_, err := a.gate.ServeSettled(ctx, view{out: a.out, render: render})
	return err
}

func (a *App) setListed(evs []models.Event) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.listed = evs
}

// listedAt resolves a 1-based index from the last printed list.
func (a *App) listedAt(args []string) (models.Event, error) {
	if len(args) == 0 {
		return models.Event{}, fmt.Errorf("usage: <command> <n> (see 'events')")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return models.Event{}, fmt.Errorf("not a number: %q", args[0])
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	if n < 1 || n > len(a.listed) {
		return models.Event{}, fmt.Errorf("no event #%d in the last list", n)
	}
	return a.listed[n-1], nil
}

func (a *App) printEventList(evs []models.Event, u *models.User) {
	if len(evs) == 0 {
		a.println("No events.")
		return
	}
	for i, e := range evs {
		star := " "
		if matcher.Matches(u, e) {
			star = "*"
		}
		a.printf("%s%2d. %-30s %-20s %s\n", star, i+1, e.Name, e.Location, e.StartTime)
	}
}

func (a *App) printDetails(e models.Event) {
	a.println("---")
	a.printf("%s (id %s)\n", e.Name, e.ID)
	if e.Description != "" {
		a.println(e.Description)
	}
	a.printf("where: %s (%.5f, %.5f)\n", e.Location, e.Latitude, e.Longitude)
	a.printf("when:  %s - %s\n", e.StartTime, e.EndTime)
	a.printf("food:  %s\n", e.Preferences.Flags())
	if e.UserID != "" {
		a.printf("by:    %s\n", e.UserID)
	}
}

func (a *App) printDraft(e models.Event) {
	state := "new"
	if !e.IsDraft() {
		state = "editing " + e.ID
	}
	a.printf("Draft (%s):\n", state)
	a.printf("  name:        %s\n", e.Name)
	a.printf("  description: %s\n", strings.ReplaceAll(e.Description, "\n", "\n               "))
	a.printf("  location:    %s\n", e.Location)
	a.printf("  latitude:    %v\n", e.Latitude)
	a.printf("  longitude:   %v\n", e.Longitude)
	a.printf("  start_time:  %s\n", e.StartTime)
	a.printf("  end_time:    %s\n", e.EndTime)
	for _, f := range models.Flags() {
		a.printf("  is_%-10s %v\n", f.String()+":", e.Preferences.Flags().Has(f))
	}
}

func (a *App) printPreferences(p models.Preferences) {
	for _, f := range models.Flags() {
		mark := " "
		if p.Flags().Has(f) {
			mark = "x"
		}
		a.printf("  [%s] %s\n", mark, f)
	}
}

func (a *App) currentUser() *models.User {
	u, ok := a.session.User()
	if !ok {
		return nil
	}
	return &u
}
