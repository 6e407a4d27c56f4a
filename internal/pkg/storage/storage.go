package storage

import (
	"context"
	"errors"
	"io"
)

var ErrNotFound = errors.New("storage: key not found")

// Storage is durable key/value storage for small blobs: the client session and generated exports.
type Storage interface {
	// Put writes the content of r under key, replacing any previous value
	Put(ctx context.Context, key string, r io.Reader) error

	// Get returns the value stored under key or ErrNotFound
	Get(ctx context.Context, key string) (io.ReadCloser, error)

	// Delete removes key; deleting a missing key is not an error
	Delete(ctx context.Context, key string) error

	// Exists checks if key is present
	Exists(ctx context.Context, key string) (bool, error)
}
