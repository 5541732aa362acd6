// Package slot provides the durable key-value storage that persisted
// collections are mirrored into. A slot holds one opaque document per key.
package slot

import (
	"context"
	"errors"
)

// ErrEmpty is returned by Load when nothing is stored under the key.
var ErrEmpty = errors.New("slot is empty")

// Slot stores whole documents by key.
type Slot interface {
	// Load returns the document stored under key, or ErrEmpty.
	Load(ctx context.Context, key string) ([]byte, error)

	// Store replaces the document under key.
	Store(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping reports whether the backend is reachable.
	Ping(ctx context.Context) error
}
