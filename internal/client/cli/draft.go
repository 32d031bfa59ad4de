package cli

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dmitrijs2005/sparkbytes/internal/client/models"
	"github.com/dmitrijs2005/sparkbytes/internal/client/profile"
	"github.com/dmitrijs2005/sparkbytes/internal/client/repositories/events"
)

func (a *App) NewDraft(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context, _ models.User) error {
		a.printDraft(a.editor.NewDraft(a.now()))
		return nil
	})
}

// Edit starts a draft from event n of the last 'events' list.
func (a *App) Edit(ctx context.Context, args []string) error {
	return a.protected(ctx, func(ctx context.Context, _ models.User) error {
		e, err := a.listedAt(args)
		if err != nil {
			return err
		}
		a.editor.EditEvent(e)
		a.printDraft(e)
		return nil
	})
}

// Set changes one draft field. "set description" without a value reads
// several lines.
func (a *App) Set(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: set <field> <value>; fields: %s", strings.Join(profile.DraftFields, ", "))
	}
	field, value := args[0], strings.Join(args[1:], " ")

	if len(args) == 1 && field == "description" {
		text, err := GetMultiline(a.reader, "Enter description", a.out)
		if err != nil {
			return err
		}
		value = text
	}

	d, err := a.editor.SetField(field, value)
	if err != nil {
		return err
	}
	a.printDraft(d)
	return nil
}

func (a *App) ShowDraft(ctx context.Context) error {
	d, ok := a.editor.Draft()
	if !ok {
		a.println("No draft. Use 'new' or 'edit <n>'.")
		return nil
	}
	a.printDraft(d)
	return nil
}

func (a *App) Save(ctx context.Context) error {
	return a.protected(ctx, func(ctx context.Context, _ models.User) error {
		e, err := a.editor.SaveDraft(ctx)
		if err != nil {
			return err
		}
		a.printf("Saved %q (id %s).\n", e.Name, e.ID)
		return nil
	})
}

func (a *App) Cancel(ctx context.Context) error {
	a.editor.CancelDraft()
	a.println("Draft discarded.")
	return nil
}

// Delete removes event n of the last 'events' list after a y/N prompt.
func (a *App) Delete(ctx context.Context, args []string) error {
	return a.protected(ctx, func(ctx context.Context, _ models.User) error {
		e, err := a.listedAt(args)
		if err != nil {
			return err
		}

		confirm := events.ConfirmFunc(func(ctx context.Context, prompt string) (bool, error) {
			return GetConfirmation(a.reader, fmt.Sprintf("%s (%s)", prompt, e.Name), a.out)
		})
		if err := a.editor.DeleteEvent(ctx, e.ID, confirm); err != nil {
			return err
		}

		a.mu.Lock()
		a.listed = slices.DeleteFunc(slices.Clone(a.listed), func(x models.Event) bool { return x.ID == e.ID })
		a.mu.Unlock()
		a.printf("Deleted %q.\n", e.Name)
		return nil
	})
}
