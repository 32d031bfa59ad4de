package cli

import (
	"context"

	"github.com/dmitrijs2005/sparkbytes/internal/client/client"
	"github.com/dmitrijs2005/sparkbytes/internal/common"
)

// getSimpleText and getPassword are swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for credentials and signs in. When the backend cannot be
// reached the client switches to offline mode.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	u, err := a.session.Login(ctx, userName, password)
	if err != nil {
		if client.IsUnavailable(err) {
			a.setMode(ModeOffline)
			a.println("Server unavailable; 'offline' shows the last saved events.")
		}
		return err
	}

	a.setMode(ModeOnline)
	a.editor.LoadPreferences(*u)
	if err := a.presenter.SetUser(u); err != nil {
		a.log.Debug(ctx, "map re-render after login", "error", err)
	}
	a.printf("Welcome, %s!\n", u.UserID)
	return nil
}

// Logout ends the session, wipes the offline copy and forgets any draft.
// Local cleanup happens even if the backend call fails.
func (a *App) Logout(ctx context.Context) error {
	err := a.session.Logout(ctx)

	if a.snapshot != nil {
		if cerr := a.snapshot.Clear(ctx); cerr != nil {
			a.log.Warn(ctx, "failed to clear offline data", "error", cerr)
		}
	}
	a.editor.CancelDraft()
	a.presenter.ClearSelection()
	if perr := a.presenter.SetUser(nil); perr != nil {
		a.log.Debug(ctx, "map re-render after logout", "error", perr)
	}
	a.setListed(nil)

	a.println("Signed out.")
	return err
}

func (a *App) WhoAmI(ctx context.Context) error {
	u, ok := a.session.User()
	if !ok {
		a.printf("Not signed in (%s).\n", a.session.State().Status)
		return nil
	}
	a.printf("Signed in as %s\n", u.UserID)
	a.printPreferences(u.Preferences)
	return nil
}
