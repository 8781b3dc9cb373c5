package cli

import (
	"context"
	"errors"
	"os"

	"github.com/scubelic/llmwatcher/internal/client/flow"
	"github.com/scubelic/llmwatcher/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Profile is the account icon: it opens the login dialog when logged out and
// the API keys dialog when logged in.
func (a *App) Profile(ctx context.Context) error {
	return a.report(a.flow.IconClick(ctx))
}

func (a *App) Switch() error {
	return a.report(a.flow.Switch())
}

func (a *App) Close() error {
	return a.report(a.flow.Close())
}

// Submit fills in and submits the form of the open dialog.
func (a *App) Submit(ctx context.Context) error {
	switch a.state() {
	case flow.ShowingLogin:
		return a.submitLogin(ctx)
	case flow.ShowingRegister:
		return a.submitRegister(ctx)
	case flow.ShowingAPIKeys:
		return a.submitKeys(ctx)
	default:
		printlnFn("Nothing to submit. Type 'profile' to open a dialog.")
		return flow.ErrInvalidTransition
	}
}

// Login opens the login dialog if needed and submits it.
func (a *App) Login(ctx context.Context) error {
	switch a.state() {
	case flow.Anonymous:
		if err := a.Profile(ctx); err != nil {
			return err
		}
	case flow.ShowingRegister:
		if err := a.Switch(); err != nil {
			return err
		}
	case flow.ShowingLogin:
	default:
		printlnFn("Already logged in. Type 'logout' first.")
		return flow.ErrInvalidTransition
	}
	return a.submitLogin(ctx)
}

// Register opens the register dialog if needed and submits it.
func (a *App) Register(ctx context.Context) error {
	switch a.state() {
	case flow.Anonymous:
		if err := a.Profile(ctx); err != nil {
			return err
		}
		if err := a.Switch(); err != nil {
			return err
		}
	case flow.ShowingLogin:
		if err := a.Switch(); err != nil {
			return err
		}
	case flow.ShowingRegister:
	default:
		printlnFn("Already logged in. Type 'logout' first.")
		return flow.ErrInvalidTransition
	}
	return a.submitRegister(ctx)
}

// Keys opens the API keys dialog if needed and submits it.
func (a *App) Keys(ctx context.Context) error {
	switch a.state() {
	case flow.Authenticated:
		if err := a.Profile(ctx); err != nil {
			return err
		}
	case flow.ShowingAPIKeys:
	default:
		printlnFn("Log in first to manage API keys.")
		return flow.ErrInvalidTransition
	}
	return a.submitKeys(ctx)
}

func (a *App) Logout(ctx context.Context) error {
	err := a.flow.Logout(ctx)
	if errors.Is(err, flow.ErrInvalidTransition) {
		printlnFn("Not logged in.")
		return err
	}
	if err != nil {
		a.printer.Error("Logout did not clear the saved session: %v", err)
		return err
	}
	return nil
}

// Reset wipes the local session database and returns to the start screen.
func (a *App) Reset(ctx context.Context) error {
	if err := a.session.ClearStorage(ctx); err != nil {
		a.printer.Error("Could not clear local data: %v", err)
		return err
	}
	a.printer.Success("Local session data cleared.")
	return nil
}

func (a *App) ToggleTheme() error {
	name := a.printer.Toggle()
	a.printer.Info("Theme: %s", name)
	return nil
}

func (a *App) submitLogin(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	return a.report(a.flow.SubmitLogin(ctx, email, string(password)))
}

func (a *App) submitRegister(ctx context.Context) error {
	email, err := getSimpleText(a.reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout, "Enter password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword(os.Stdout, "Confirm password")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	return a.report(a.flow.SubmitRegister(ctx, email, string(password), string(confirm)))
}

// submitKeys asks for both keys. An empty answer keeps the value shown in
// the dialog.
func (a *App) submitKeys(ctx context.Context) error {
	keys := a.flow.View().Keys

	google, err := getPassword(os.Stdout, "Google API key (empty keeps "+displayKey(keys.GoogleAPIKey)+")")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(google)

	groq, err := getPassword(os.Stdout, "Groq API key (empty keeps "+displayKey(keys.GroqAPIKey)+")")
	if err != nil {
		return err
	}
	defer common.WipeByteArray(groq)

	if len(google) > 0 {
		keys.GoogleAPIKey = string(google)
	}
	if len(groq) > 0 {
		keys.GroqAPIKey = string(groq)
	}

	return a.report(a.flow.SubmitAPIKeys(ctx, keys))
}

// report turns flow errors into user hints. Backend failures are already
// part of the view and are not returned by the flow.
func (a *App) report(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, flow.ErrInvalidTransition):
		printlnFn("That command is not available now. Type 'help' for options.")
	case errors.Is(err, flow.ErrStale):
		a.logger.Debug(context.Background(), "dropped stale response")
	default:
		a.printer.Error("%v", err)
	}
	return err
}
