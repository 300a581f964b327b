package storage

import (
	"context"
	"errors"
)

// ErrNotFound reports an absent key. Callers treat it as "no persisted
// state yet", not as a failure.
var ErrNotFound = errors.New("key not found")

// Store is the blob persistence contract shared by every backend.
// Consumers define this interface, not the concrete stores.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}
