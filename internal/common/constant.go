// Package common contains constants and small helpers shared by the
// watcher client packages.
package common

const (
	// TokenKey is the storage key holding the opaque access token.
	TokenKey = "token"

	// OnboardingKey marks that the user has supplied API keys at least once.
	// Only the presence of the key matters.
	OnboardingKey = "hasCompletedOnboarding"

	// OnboardingFlagValue is written under OnboardingKey.
	OnboardingFlagValue = "true"
)

// HTTP header names used on outbound backend requests.
const (
	RequestIDHeader     = "X-Request-ID"
	AuthorizationHeader = "Authorization"
	BearerPrefix        = "Bearer "
)
