// Package kv provides the key-value side of the files manager: a small Store
// abstraction over Redis (or an in-process map) and Client, the façade the
// rest of the application talks to.
package kv

import (
	"context"
	"time"
)

// Store defines a minimal key-value interface.
// Keys are strings, values are byte slices. All writes support TTL.
type Store interface {
	// Set stores a value with the given key and TTL.
	// If TTL is 0, the key does not expire.
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// Get retrieves a value by key. Returns ErrNotFound if key doesn't exist.
	Get(ctx context.Context, key string) ([]byte, error)

	// Delete removes a key. Returns nil if key doesn't exist.
	Delete(ctx context.Context, key string) error

	// Ping checks that the store is reachable.
	Ping(ctx context.Context) error

	// Close closes the connection to the store.
	Close() error
}

// EventSource is implemented by stores whose session can drop and come back
// on its own. Listeners may be called many times over the store's lifetime
// and from any goroutine.
type EventSource interface {
	OnConnect(fn func())
	OnError(fn func(err error))
}
