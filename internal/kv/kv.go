// Package kv defines the key-value store backing session persistence.
//
// Two implementations exist: Redis for deployments and an in-memory store for
// tests and local development. Values carry a TTL; an expired key behaves
// exactly like an absent one.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is absent or expired.
var ErrNotFound = errors.New("kv: key not found")

// Store is a key-value store with per-key expiry.
type Store interface {
	// Set writes value under key with the given TTL. A zero TTL means no
	// expiry.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get returns the value stored under key, or ErrNotFound if the key is
	// absent or expired.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Expire resets the TTL of an existing key. Expiring an absent key
	// returns ErrNotFound.
	Expire(ctx context.Context, key string, ttl time.Duration) error
}
