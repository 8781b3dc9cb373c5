// Package logging defines the structured, context-aware logger used by the
// watcher client. The production implementation wraps log/slog.
package logging

import "context"

// Logger takes key-value pairs after the message:
//
//	log.Info(ctx, "login succeeded", "email", email)
//
// Passwords, tokens and API keys must never be passed as values.
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given pairs.
	With(args ...any) Logger
}
