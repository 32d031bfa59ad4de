// Package cli is the interactive SparkBytes terminal client.
//
// It wires the session store, the auth gate, the event repository with its
// offline snapshot, the map presenter and the profile editor behind a small
// REPL. A background watcher pings the backend and flips the client between
// online and offline mode; while offline the last confirmed events can still
// be browsed with the "offline" command.
//
// The REPL is started via App.Run(ctx), which blocks until the user exits.
package cli
