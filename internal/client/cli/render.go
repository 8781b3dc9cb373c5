package cli

import (
	"sync"

	"github.com/scubelic/llmwatcher/internal/client/flow"
	"github.com/scubelic/llmwatcher/internal/client/session"
	"github.com/scubelic/llmwatcher/internal/client/theme"
	"github.com/scubelic/llmwatcher/internal/common"
)

const onboardingHint = "Add your API keys to finish setup: type 'keys'."

// renderer prints flow views. Consecutive identical views and busy
// intermediate views are skipped so each change is shown once.
type renderer struct {
	printer *theme.Printer

	mu    sync.Mutex
	last  flow.View
	shown bool

	onboarded   bool
	sessionSeen bool
}

func newRenderer(p *theme.Printer) *renderer {
	return &renderer{printer: p}
}

func (r *renderer) view(v flow.View, onboarded bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if v.Busy {
		// A retry may end with the same message; let it print again.
		r.last.Error, r.last.Success = "", ""
		return
	}
	if r.shown && v == r.last {
		return
	}
	first := !r.shown
	prev := r.last
	r.last, r.shown = v, true

	p := r.printer
	if first || v.State != prev.State {
		switch v.State {
		case flow.Anonymous:
			p.Info("Not logged in. Type 'profile' or 'login' to sign in.")
		case flow.ShowingLogin:
			p.Title("Login")
			p.Info("Type 'submit' to enter your email and password, 'switch' to register, 'close' to cancel.")
		case flow.ShowingRegister:
			p.Title("Register")
			p.Info("Type 'submit' to create an account, 'switch' to log in, 'close' to cancel.")
		case flow.Authenticated:
			p.Info("Logged in.")
			if !onboarded {
				p.Info(onboardingHint)
			}
		case flow.ShowingAPIKeys:
			p.Title("API Keys")
			p.Print("  Google API key: %s", displayKey(v.Keys.GoogleAPIKey))
			p.Print("  Groq API key:   %s", displayKey(v.Keys.GroqAPIKey))
			p.Info("Type 'submit' to update your keys, 'close' to cancel.")
		}
	}

	if v.Error != "" && v.Error != prev.Error {
		p.Error("%s", v.Error)
	}
	if v.Success != "" && v.Success != prev.Success {
		p.Success("%s", v.Success)
	}
}

// session prints onboarding changes that happen outside a flow transition,
// such as setup finished from another terminal. The first call only records
// the starting value.
func (r *renderer) session(s session.Session, st flow.State) {
	r.mu.Lock()
	defer r.mu.Unlock()

	changed := r.sessionSeen && s.HasCompletedOnboarding != r.onboarded
	r.onboarded, r.sessionSeen = s.HasCompletedOnboarding, true
	if !changed || !s.IsAuthenticated() || st != flow.Authenticated {
		return
	}
	if !r.shown || r.last.State != flow.Authenticated {
		return
	}

	if s.HasCompletedOnboarding {
		r.printer.Info("Setup complete: your API keys are on file.")
	} else {
		r.printer.Info(onboardingHint)
	}
}

func displayKey(k string) string {
	if k == "" {
		return "(not set)"
	}
	return common.MaskSecret(k)
}
