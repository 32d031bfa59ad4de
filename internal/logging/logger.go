// Package logging defines the structured-logging interface shared by the
// client and the server. The only implementation wraps log/slog.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "events fetched", "scope", userID, "count", len(events))
type Logger interface {
	// Debug logs diagnostic details that are off by default.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a recovered failure, e.g. a session check that degraded to
	// anonymous or a fetch that fell back to an empty list.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs a failure the user has to act on.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}
