// Package slot defines the durable key/value slot the task collection is
// written to. Backends live in sibling packages.
package slot

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when nothing is stored under the key.
var ErrNotFound = errors.New("slot: key not found")

// Slot is a named, durable byte store.
type Slot interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}
