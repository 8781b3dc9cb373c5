package cli

import (
	"context"
	"time"

	"github.com/scubelic/llmwatcher/internal/client/session"
)

const pingTimeout = 3 * time.Second

// Status prints what the client knows about the session and whether the
// backend answers. The onboarding flag is re-read from storage first, since
// another process may have finished setup. Token claims are decoded for
// display only.
func (a *App) Status(ctx context.Context) error {
	if _, err := a.session.CheckOnboardingStatus(ctx); err != nil {
		a.logger.Warn(ctx, "refresh onboarding flag", "error", err)
	}
	snap := a.session.Snapshot()

	subject, expires := "-", "-"
	if snap.IsAuthenticated() {
		claims, err := session.ParseClaims(snap.Token)
		if err != nil {
			subject = "(opaque token)"
		} else {
			if claims.Subject != "" {
				subject = claims.Subject
			}
			if !claims.ExpiresAt.IsZero() {
				expires = claims.ExpiresAt.Local().Format(time.RFC1123)
				if time.Now().After(claims.ExpiresAt) {
					expires += " (expired)"
				}
			}
		}
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	pingErr := a.api.Ping(pingCtx)
	cancel()

	backend := a.printer.Badge(pingErr == nil)
	if pingErr != nil {
		backend += " " + pingErr.Error()
	}

	rows := [][]string{
		{"authenticated", a.printer.Badge(snap.IsAuthenticated())},
		{"onboarding complete", a.printer.Badge(snap.HasCompletedOnboarding)},
		{"account", subject},
		{"token expires", expires},
		{"dialog", a.state().String()},
		{"backend", backend},
		{"server", a.config.ServerURL},
		{"theme", string(a.printer.Name())},
	}
	return a.printer.Table([]string{"field", "value"}, rows)
}
