// Package authgate decides whether a protected view may be shown.
//
// The gate never renders the wrapped view and never redirects while the
// session check is still in progress; it shows a placeholder instead.
package authgate

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/client/session"
)

type Decision int

const (
	DecisionPlaceholder Decision = iota
	DecisionRender
	DecisionRedirect
)

func (d Decision) String() string {
	switch d {
	case DecisionRender:
		return "render"
	case DecisionRedirect:
		return "redirect"
	default:
		return "placeholder"
	}
}

// StateSource is satisfied by *session.Store.
type StateSource interface {
	State() session.State
	Settled(ctx context.Context) error
}

// Navigator moves the user to another route, typically the sign-in screen.
type Navigator interface {
	Redirect(ctx context.Context, route string) error
}

// View is a protected screen.
type View interface {
	Placeholder()
	Render(ctx context.Context, user models.User) error
}

type Gate struct {
	src         StateSource
	nav         Navigator
	signInRoute string
}

func New(src StateSource, nav Navigator, signInRoute string) *Gate {
	return &Gate{src: src, nav: nav, signInRoute: signInRoute}
}

// Decide maps a session state to what the gate should do.
func Decide(st session.State) Decision {
	switch st.Status {
	case session.StatusAuthenticated:
		if st.User == nil {
			return DecisionPlaceholder
		}
		return DecisionRender
	case session.StatusAnonymous:
		return DecisionRedirect
	default:
		return DecisionPlaceholder
	}
}

// Serve acts on the current session state without waiting.
func (g *Gate) Serve(ctx context.Context, v View) (Decision, error) {
	st := g.src.State()
	d := Decide(st)

	switch d {
	case DecisionRender:
		if err := v.Render(ctx, *st.User); err != nil {
			return d, fmt.Errorf("render: %w", err)
		}
	case DecisionRedirect:
		if err := g.nav.Redirect(ctx, g.signInRoute); err != nil {
			return d, fmt.Errorf("redirect to %s: %w", g.signInRoute, err)
		}
	default:
		v.Placeholder()
	}
	return d, nil
}

// ServeSettled shows the placeholder while a check is running, waits for it
// to settle and then serves the view.
func (g *Gate) ServeSettled(ctx context.Context, v View) (Decision, error) {
	if !g.src.State().Resolved() {
		v.Placeholder()
	}
	if err := g.src.Settled(ctx); err != nil {
		return DecisionPlaceholder, err
	}
	return g.Serve(ctx, v)
}
