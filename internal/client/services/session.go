// Package services contains application services for the watcher client.
// This file defines the session manager: login/logout/onboarding
// bookkeeping on top of the persisted session store.
package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/scubelic/llmwatcher/internal/client/session"
	"github.com/scubelic/llmwatcher/internal/logging"
)

// SessionStore is the subset of *session.Store the manager relies on.
type SessionStore interface {
	Get(ctx context.Context) (session.Session, error)
	HasCompletedOnboarding(ctx context.Context) (bool, error)
	SetToken(ctx context.Context, token string) error
	SetOnboardingComplete(ctx context.Context) error
	Reset(ctx context.Context) error
	Clear(ctx context.Context) error
}

// ResetFunc is called after a logout or a storage clear has emptied the session. The shell
// uses it to drop every piece of UI state and go back to the start screen.
type ResetFunc func(ctx context.Context)

// SessionManager keeps an in-memory copy of the session in sync with the
// store. It is safe for concurrent use.
type SessionManager struct {
	store  SessionStore
	logger logging.Logger

	mu        sync.RWMutex
	state     session.Session
	onReset   ResetFunc
	listeners []func(session.Session)
}

// NewSessionManager loads the persisted session.
func NewSessionManager(ctx context.Context, store SessionStore, logger logging.Logger) (*SessionManager, error) {
	state, err := store.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	return &SessionManager{
		store:  store,
		logger: logger.With("component", "session"),
		state:  state,
	}, nil
}

// OnReset installs the hook run at the end of Logout and ClearStorage. A nil
// hook disables it.
func (m *SessionManager) OnReset(fn ResetFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.onReset = fn
}

// OnChange registers fn to be called with the new state after every change.
func (m *SessionManager) OnChange(fn func(session.Session)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, fn)
}

// Login stores token and re-reads the onboarding flag, since a previous
// login on this machine may already have completed it.
func (m *SessionManager) Login(ctx context.Context, token string) error {
	if err := m.store.SetToken(ctx, token); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	onboarded, err := m.store.HasCompletedOnboarding(ctx)
	if err != nil {
		return fmt.Errorf("login: %w", err)
	}

	m.update(func(s *session.Session) {
		s.Token = token
		s.HasCompletedOnboarding = onboarded
	})
	m.logger.Info(ctx, "logged in", "onboarded", onboarded)
	return nil
}

// Logout clears the token and the onboarding flag and then runs the reset hook.
// The in-memory state is cleared even if the store fails.
func (m *SessionManager) Logout(ctx context.Context) error {
	if err := m.reset(ctx, m.store.Reset); err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	m.logger.Info(ctx, "logged out")
	return nil
}

// ClearStorage wipes the whole local store and then behaves like Logout.
func (m *SessionManager) ClearStorage(ctx context.Context) error {
	if err := m.reset(ctx, m.store.Clear); err != nil {
		return fmt.Errorf("clear storage: %w", err)
	}
	m.logger.Info(ctx, "local storage cleared")
	return nil
}

func (m *SessionManager) reset(ctx context.Context, wipe func(context.Context) error) error {
	storeErr := wipe(ctx)

	m.update(func(s *session.Session) { *s = session.Session{} })

	m.mu.RLock()
	hook := m.onReset
	m.mu.RUnlock()
	if hook != nil {
		hook(ctx)
	}

	if storeErr != nil {
		m.logger.Error(ctx, "clear persisted session", "error", storeErr)
	}
	return storeErr
}

// CompleteOnboarding sets the onboarding flag. It does not check that a
// user is logged in.
func (m *SessionManager) CompleteOnboarding(ctx context.Context) error {
	if err := m.store.SetOnboardingComplete(ctx); err != nil {
		return fmt.Errorf("complete onboarding: %w", err)
	}
	m.update(func(s *session.Session) { s.HasCompletedOnboarding = true })
	return nil
}

// CheckOnboardingStatus re-reads the flag, picking up changes made to the
// store by someone else.
func (m *SessionManager) CheckOnboardingStatus(ctx context.Context) (bool, error) {
	onboarded, err := m.store.HasCompletedOnboarding(ctx)
	if err != nil {
		return m.HasCompletedOnboarding(), fmt.Errorf("check onboarding: %w", err)
	}
	m.update(func(s *session.Session) { s.HasCompletedOnboarding = onboarded })
	return onboarded, nil
}

func (m *SessionManager) IsAuthenticated() bool {
	return m.Snapshot().IsAuthenticated()
}

func (m *SessionManager) HasCompletedOnboarding() bool {
	return m.Snapshot().HasCompletedOnboarding
}

func (m *SessionManager) Token() string {
	return m.Snapshot().Token
}

func (m *SessionManager) Snapshot() session.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// update applies fn under the lock and notifies listeners outside it.
func (m *SessionManager) update(fn func(*session.Session)) {
	m.mu.Lock()
	fn(&m.state)
	state := m.state
	listeners := append([]func(session.Session){}, m.listeners...)
	m.mu.Unlock()

	for _, l := range listeners {
		l(state)
	}
}
