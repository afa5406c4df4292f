// Package storage abstracts the blob store holding uploaded video files.
// Names are generated by callers and never reused, so writes are append-once.
package storage

import (
	"context"
	"errors"
	"io"
)

// ErrNotFound indicates the requested blob does not exist in the store.
var ErrNotFound = errors.New("blob not found")

// Blob stores and retrieves opaque byte streams under caller-generated names.
type Blob interface {
	// Save writes the content under name and returns the stored path.
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	// Exists reports whether a previously stored path is still present.
	Exists(ctx context.Context, path string) (bool, error)
	// Open returns a reader over the stored content. Missing paths yield
	// ErrNotFound.
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	// Delete removes the stored content. Deleting a missing path is an error.
	Delete(ctx context.Context, path string) error
}
