// Package storage implements the durable key-value slots that back the
// transaction store.
package storage

import (
	"context"
	"errors"
)

// ErrNoValue is returned by Get when the slot has never been written.
var ErrNoValue = errors.New("no value stored for key")

// KV is a durable store of named opaque slots.
type KV interface {
	// Get returns the bytes last written to key, or ErrNoValue.
	Get(ctx context.Context, key string) ([]byte, error)

	// Put replaces the bytes stored under key.
	Put(ctx context.Context, key string, value []byte) error

	// Close releases the underlying resources.
	Close() error
}
