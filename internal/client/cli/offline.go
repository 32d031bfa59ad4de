package cli

import (
	"context"
	"time"
)

// Offline shows the last event list the backend confirmed. It works without
// a connection and without a session.
func (a *App) Offline(ctx context.Context) error {
	if a.snapshot == nil {
		a.println("Offline copy is disabled.")
		return nil
	}

	list, err := a.snapshot.List(ctx, "")
	if err != nil {
		return err
	}
	at, ok, err := a.snapshot.SyncedAt(ctx, "")
	if err != nil {
		return err
	}
	if !ok {
		a.println("No offline copy yet; open the map while online first.")
		return nil
	}

	a.printf("Offline copy from %s:\n", at.Local().Format(time.DateTime))
	a.printEventList(list, a.currentUser())
	return nil
}
