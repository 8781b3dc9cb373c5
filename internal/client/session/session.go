// Package session persists what the client believes about the current
// user: the opaque access token and whether onboarding was completed.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/scubelic/llmwatcher/internal/client/repositories/metadata"
	"github.com/scubelic/llmwatcher/internal/common"
)

var ErrEmptyToken = errors.New("empty token")

// Session is a point-in-time view of the persisted state.
type Session struct {
	Token                  string
	HasCompletedOnboarding bool
}

// IsAuthenticated reports whether a token is present. There is no expiry
// check: a token stays valid until the backend rejects it.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// Store maps Session onto a metadata.Repository.
type Store struct {
	repo metadata.Repository
}

func NewStore(repo metadata.Repository) *Store {
	return &Store{repo: repo}
}

func (s *Store) Get(ctx context.Context) (Session, error) {
	token, err := s.repo.Get(ctx, common.TokenKey)
	if err != nil {
		return Session{}, fmt.Errorf("read token: %w", err)
	}
	onboarded, err := s.repo.Get(ctx, common.OnboardingKey)
	if err != nil {
		return Session{}, fmt.Errorf("read onboarding flag: %w", err)
	}
	return Session{Token: string(token), HasCompletedOnboarding: len(onboarded) > 0}, nil
}

func (s *Store) HasCompletedOnboarding(ctx context.Context) (bool, error) {
	v, err := s.repo.Get(ctx, common.OnboardingKey)
	if err != nil {
		return false, fmt.Errorf("read onboarding flag: %w", err)
	}
	return len(v) > 0, nil
}

func (s *Store) SetToken(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}
	if err := s.repo.Set(ctx, common.TokenKey, []byte(token)); err != nil {
		return fmt.Errorf("save token: %w", err)
	}
	return nil
}

func (s *Store) ClearToken(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.TokenKey); err != nil {
		return fmt.Errorf("clear token: %w", err)
	}
	return nil
}

func (s *Store) SetOnboardingComplete(ctx context.Context) error {
	if err := s.repo.Set(ctx, common.OnboardingKey, []byte(common.OnboardingFlagValue)); err != nil {
		return fmt.Errorf("save onboarding flag: %w", err)
	}
	return nil
}

func (s *Store) ClearOnboarding(ctx context.Context) error {
	if err := s.repo.Delete(ctx, common.OnboardingKey); err != nil {
		return fmt.Errorf("clear onboarding flag: %w", err)
	}
	return nil
}

// Reset removes the token and the onboarding flag in one step.
func (s *Store) Reset(ctx context.Context) error {
	if err := s.repo.DeleteKeys(ctx, common.TokenKey, common.OnboardingKey); err != nil {
		return fmt.Errorf("reset session: %w", err)
	}
	return nil
}

// Clear wipes every key in the local store, including ones this client
// version does not know about.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.repo.Clear(ctx); err != nil {
		return fmt.Errorf("clear local storage: %w", err)
	}
	return nil
}
