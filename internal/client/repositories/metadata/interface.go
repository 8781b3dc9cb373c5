// Package metadata is the client's durable key/value store. The session
// token and the onboarding flag live here.
package metadata

import (
	"context"
)

// Repository is a small key/value store.
//
// Get returns (nil, nil) for an absent key. Delete and DeleteKeys are
// idempotent. DeleteKeys removes all listed keys or none of them. Clear
// removes every key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	DeleteKeys(ctx context.Context, keys ...string) error
	Clear(ctx context.Context) error
}
