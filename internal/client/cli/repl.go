package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/sparkbytes/internal/client/errs"
)

// execIface is the command surface the REPL drives. *App implements it;
// tests use a lightweight stub.
type execIface interface {
	isLoggedIn() bool

	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error

	Map(ctx context.Context, args []string) error
	Select(ctx context.Context, args []string) error
	Offline(ctx context.Context) error

	MyEvents(ctx context.Context) error
	Prefs(ctx context.Context) error
	Toggle(ctx context.Context, args []string) error
	SavePrefs(ctx context.Context) error

	NewDraft(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Set(ctx context.Context, args []string) error
	ShowDraft(ctx context.Context) error
	Save(ctx context.Context) error
	Cancel(ctx context.Context) error
	Delete(ctx context.Context, args []string) error
}

const (
	helpAnonymous = "Available commands: login, map [time|match], select <n>, offline, whoami, exit"
	helpSignedIn  = "Available commands: map [time|match], select <n>, events, prefs, toggle <flag>, saveprefs,\n" +
		"  new, edit <n>, set <field> <value>, draft, save, cancel, delete <n>, offline, whoami, logout, exit"
)

// runREPL reads commands from r until EOF or "exit"/"quit". Command errors
// are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, r *bufio.Reader, w io.Writer) {
	for {
		fmt.Fprintf(w, "sb %s> ", statusFn())
		line, err := r.ReadString('\n')
		if err != nil && line == "" {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			if err != nil {
				return
			}
			continue
		}
		cmd, args := parts[0], parts[1:]

		var cmdErr error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				fmt.Fprintln(w, helpSignedIn)
			} else {
				fmt.Fprintln(w, helpAnonymous)
			}
		case "login":
			cmdErr = a.Login(ctx)
		case "logout":
			cmdErr = a.Logout(ctx)
		case "whoami":
			cmdErr = a.WhoAmI(ctx)
		case "map", "m":
			cmdErr = a.Map(ctx, args)
		case "select", "s":
			cmdErr = a.Select(ctx, args)
		case "offline":
			cmdErr = a.Offline(ctx)
		case "events", "l", "list":
			cmdErr = a.MyEvents(ctx)
		case "prefs":
			cmdErr = a.Prefs(ctx)
		case "toggle":
			cmdErr = a.Toggle(ctx, args)
		case "saveprefs":
			cmdErr = a.SavePrefs(ctx)
		case "new":
			cmdErr = a.NewDraft(ctx)
		case "edit":
			cmdErr = a.Edit(ctx, args)
		case "set":
			cmdErr = a.Set(ctx, args)
		case "draft":
			cmdErr = a.ShowDraft(ctx)
		case "save":
			cmdErr = a.Save(ctx)
		case "cancel":
			cmdErr = a.Cancel(ctx)
		case "delete", "rm":
			cmdErr = a.Delete(ctx, args)
		case "exit", "quit":
			fmt.Fprintln(w, "Bye!")
			return
		default:
			fmt.Fprintln(w, "Unknown command:", cmd)
		}

		if cmdErr != nil && !errors.Is(cmdErr, errs.ErrCancelled) {
			fmt.Fprintln(w, "Error:", errs.UserMessage(cmdErr))
		}
		if err != nil {
			return
		}
	}
}
