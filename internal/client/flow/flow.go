// Package flow implements the credential modal state machine: the login and
// register modals shown to anonymous users and the API keys modal shown
// after login.
//
// Flow methods may be called from any goroutine. The internal lock is never
// held across a backend call; every modal open, close or reset bumps an
// epoch and responses that come back under an older epoch are dropped.
package flow

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/scubelic/llmwatcher/internal/client/client"
	"github.com/scubelic/llmwatcher/internal/logging"
)

// User-facing messages.
const (
	MsgPasswordMismatch = "Passwords do not match"
	MsgRegisterFailed   = "Failed to register. Please try again."
	MsgLoginFailed      = "Invalid email or password"
	MsgLoadUserFailed   = "Failed to load user data."
	MsgSaveKeysFailed   = "Failed to save API keys."
	MsgKeysSaved        = "API keys saved successfully!"
)

const DefaultCloseDelay = time.Second

var (
	// ErrInvalidTransition is returned for an event the current state does
	// not accept. The state is left unchanged.
	ErrInvalidTransition = errors.New("invalid transition")
	// ErrStale is returned when a backend response arrived after the modal
	// it belonged to was closed or replaced. The response is ignored.
	ErrStale = errors.New("stale response discarded")
)

// Session is what the flow needs from the session manager.
type Session interface {
	IsAuthenticated() bool
	Token() string
	Login(ctx context.Context, token string) error
	Logout(ctx context.Context) error
	CompleteOnboarding(ctx context.Context) error
}

// View is a snapshot of what the UI should show.
type View struct {
	State   State
	Error   string
	Success string
	// Keys holds the editable API key fields while ShowingAPIKeys.
	Keys client.APIKeys
	Busy bool
}

type Option func(*Flow)

// WithCloseDelay sets how long the success message stays up before the
// API keys modal closes.
func WithCloseDelay(d time.Duration) Option {
	return func(f *Flow) { f.closeDelay = d }
}

func WithLogger(l logging.Logger) Option {
	return func(f *Flow) { f.logger = l }
}

// WithOnChange registers a callback invoked with the new view after every
// change. It runs without the flow lock held.
func WithOnChange(fn func(View)) Option {
	return func(f *Flow) { f.onChange = fn }
}

// WithTimer replaces time.After for the auto-close delay.
func WithTimer(after func(time.Duration) <-chan time.Time) Option {
	return func(f *Flow) { f.after = after }
}

type Flow struct {
	client     client.Client
	session    Session
	logger     logging.Logger
	closeDelay time.Duration
	after      func(time.Duration) <-chan time.Time
	onChange   func(View)

	mu    sync.Mutex
	view  View
	epoch uint64

	stop     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New returns a flow starting in Authenticated when the session holds a
// token, Anonymous otherwise.
func New(c client.Client, s Session, opts ...Option) *Flow {
	f := &Flow{
		client:     c,
		session:    s,
		logger:     logging.Nop(),
		closeDelay: DefaultCloseDelay,
		after:      time.After,
		stop:       make(chan struct{}),
	}
	for _, o := range opts {
		o(f)
	}
	f.logger = f.logger.With("component", "flow")
	f.view.State = f.baseState()
	return f
}

// View returns the current view.
func (f *Flow) View() View {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.view
}

func (f *Flow) State() State {
	return f.View().State
}

// IconClick opens the login modal for anonymous users and the API keys
// modal for authenticated ones. The API keys modal is prefilled with the
// keys stored on the backend; a failed prefetch leaves the fields blank.
func (f *Flow) IconClick(ctx context.Context) error {
	f.mu.Lock()
	switch f.view.State {
	case Anonymous:
		f.openLocked(ShowingLogin)
		f.mu.Unlock()
		f.notify()
		return nil
	case Authenticated:
		f.openLocked(ShowingAPIKeys)
	default:
		f.mu.Unlock()
		return ErrInvalidTransition
	}

	token := f.session.Token()
	if !f.session.IsAuthenticated() || token == "" {
		f.mu.Unlock()
		f.notify()
		return nil
	}
	f.view.Busy = true
	epoch := f.epoch
	f.mu.Unlock()
	f.notify()

	user, err := f.client.GetCurrentUser(ctx, token)

	f.mu.Lock()
	if f.epoch != epoch {
		f.mu.Unlock()
		return ErrStale
	}
	f.view.Busy = false
	if err != nil {
		f.logger.Warn(ctx, "prefetch current user", "error", err)
		f.view.Error = MsgLoadUserFailed
	} else {
		f.view.Keys = user.Keys()
	}
	f.mu.Unlock()
	f.notify()
	return nil
}

// Switch toggles between the login and register modals.
func (f *Flow) Switch() error {
	f.mu.Lock()
	switch f.view.State {
	case ShowingLogin:
		f.openLocked(ShowingRegister)
	case ShowingRegister:
		f.openLocked(ShowingLogin)
	default:
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	f.mu.Unlock()
	f.notify()
	return nil
}

// Close dismisses the open modal.
func (f *Flow) Close() error {
	f.mu.Lock()
	if !f.view.State.IsModal() {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	f.openLocked(f.baseState())
	f.mu.Unlock()
	f.notify()
	return nil
}

// SubmitLogin exchanges the credentials for a token. On success the
// session is logged in and the modal closes; on failure the modal shows
// the error and stays open. If the modal is closed or reset while the token
// is being stored, the login is undone and ErrStale returned.
func (f *Flow) SubmitLogin(ctx context.Context, email, password string) error {
	epoch, err := f.begin(ShowingLogin)
	if err != nil {
		return err
	}

	tok, err := f.client.Login(ctx, email, password)
	if err == nil {
		if f.isStale(epoch) {
			return ErrStale
		}
		err = f.session.Login(ctx, tok.AccessToken)
	}

	f.mu.Lock()
	if f.epoch != epoch {
		f.mu.Unlock()
		if err == nil {
			f.discardLogin(ctx)
		}
		return ErrStale
	}
	f.view.Busy = false
	if err != nil {
		f.logger.Warn(ctx, "login failed", "error", err)
		f.view.Error = loginMessage(err)
	} else {
		f.openLocked(Authenticated)
	}
	f.mu.Unlock()
	f.notify()
	return nil
}

// SubmitRegister creates an account and switches to the login modal.
// Mismatched passwords are reported without calling the backend.
func (f *Flow) SubmitRegister(ctx context.Context, email, password, confirm string) error {
	f.mu.Lock()
	if f.view.State != ShowingRegister {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	if password != confirm {
		f.view.Error = MsgPasswordMismatch
		f.view.Success = ""
		f.mu.Unlock()
		f.notify()
		return nil
	}
	f.mu.Unlock()

	epoch, err := f.begin(ShowingRegister)
	if err != nil {
		return err
	}

	err = f.client.Register(ctx, email, password)

	f.mu.Lock()
	if f.epoch != epoch {
		f.mu.Unlock()
		return ErrStale
	}
	f.view.Busy = false
	if err != nil {
		f.logger.Warn(ctx, "register failed", "error", err)
		f.view.Error = MsgRegisterFailed
	} else {
		f.logger.Info(ctx, "registered")
		f.openLocked(ShowingLogin)
	}
	f.mu.Unlock()
	f.notify()
	return nil
}

// SubmitAPIKeys stores both keys on the backend. On success the modal shows
// MsgKeysSaved, onboarding is marked complete and the modal closes after the
// close delay unless something else changed it first.
func (f *Flow) SubmitAPIKeys(ctx context.Context, keys client.APIKeys) error {
	epoch, err := f.begin(ShowingAPIKeys)
	if err != nil {
		return err
	}

	token := f.session.Token()
	if token == "" {
		err = errors.New("no access token")
	} else {
		err = f.client.StoreAPIKeys(ctx, token, keys)
	}

	f.mu.Lock()
	if f.epoch != epoch {
		f.mu.Unlock()
		return ErrStale
	}
	f.view.Busy = false
	f.view.Keys = keys
	if err != nil {
		f.logger.Warn(ctx, "store api keys failed", "error", err)
		f.view.Error = MsgSaveKeysFailed
		f.mu.Unlock()
		f.notify()
		return nil
	}
	f.view.Success = MsgKeysSaved
	f.mu.Unlock()

	if err := f.session.CompleteOnboarding(ctx); err != nil {
		f.logger.Error(ctx, "mark onboarding complete", "error", err)
	}
	f.notify()
	f.scheduleClose(epoch)
	return nil
}

// Logout clears the session and returns to Anonymous.
func (f *Flow) Logout(ctx context.Context) error {
	f.mu.Lock()
	st, epoch := f.view.State, f.epoch
	f.mu.Unlock()
	if st != Authenticated && st != ShowingAPIKeys {
		return ErrInvalidTransition
	}

	err := f.session.Logout(ctx)
	if !f.isStale(epoch) {
		// no reset hook ran
		f.Reset()
	}
	return err
}

// discardLogin logs out a session whose login modal went away while the
// token was being stored, so the view and the session agree again.
func (f *Flow) discardLogin(ctx context.Context) {
	f.mu.Lock()
	epoch := f.epoch
	f.mu.Unlock()

	if err := f.session.Logout(ctx); err != nil {
		f.logger.Warn(ctx, "undo stale login", "error", err)
	}
	if !f.isStale(epoch) {
		f.Reset()
	}
}

// Reset drops every modal, message and in-flight response and returns to
// the base state for the current session.
func (f *Flow) Reset() {
	f.mu.Lock()
	f.openLocked(f.baseState())
	f.mu.Unlock()
	f.notify()
}

// Stop cancels pending auto-close timers and waits for them to exit.
func (f *Flow) Stop() {
	f.stopOnce.Do(func() { close(f.stop) })
	f.wg.Wait()
}

func (f *Flow) scheduleClose(epoch uint64) {
	timer := f.after(f.closeDelay)
	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		select {
		case <-f.stop:
			return
		case <-timer:
		}

		f.mu.Lock()
		if f.epoch != epoch || f.view.State != ShowingAPIKeys {
			f.mu.Unlock()
			return
		}
		f.openLocked(Authenticated)
		f.mu.Unlock()
		f.notify()
	}()
}

// begin checks the state, clears messages and marks the view busy.
func (f *Flow) begin(want State) (uint64, error) {
	f.mu.Lock()
	if f.view.State != want {
		f.mu.Unlock()
		return 0, ErrInvalidTransition
	}
	f.view.Error = ""
	f.view.Success = ""
	f.view.Busy = true
	epoch := f.epoch
	f.mu.Unlock()
	f.notify()
	return epoch, nil
}

func (f *Flow) isStale(epoch uint64) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.epoch != epoch
}

// openLocked moves to st with a fresh view. f.mu must be held.
func (f *Flow) openLocked(st State) {
	f.epoch++
	f.view = View{State: st}
}

func (f *Flow) baseState() State {
	if f.session.IsAuthenticated() {
		return Authenticated
	}
	return Anonymous
}

func (f *Flow) notify() {
	if f.onChange == nil {
		return
	}
	f.onChange(f.View())
}

func loginMessage(err error) string {
	if errors.Is(err, client.ErrUnauthorized) {
		return MsgLoginFailed
	}
	var apiErr *client.Error
	if errors.As(err, &apiErr) && apiErr.Detail != "" {
		return apiErr.Detail
	}
	return MsgLoginFailed
}
