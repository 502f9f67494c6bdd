package storage

import (
	"context"
	"errors"
)

// ErrClosed is returned by stores used after Close.
var ErrClosed = errors.New("store closed")

// Ports for persistence adapters.
type (
	// KV is a string-keyed blob store with whole-value overwrite semantics,
	// the server-side counterpart of a browser's localStorage.
	KV interface {
		// GetItem returns the value under key; ok is false when the key is absent.
		GetItem(ctx context.Context, key string) (value []byte, ok bool, err error)
		// SetItem replaces any existing value under key.
		SetItem(ctx context.Context, key string, value []byte) error
		RemoveItem(ctx context.Context, key string) error
		Close() error
	}
)
