// internal/app/system/objstore/objstore.go

// Package objstore wraps the object storage bucket that holds project
// file uploads and call transcripts/summaries. Stores and features
// consume it through the Store interface so tests can stub it.
package objstore

import (
	"context"
	"errors"
	"io"
	"time"
)

// ErrNotFound is returned when a key does not exist in the bucket.
var ErrNotFound = errors.New("object not found")

// Object describes one stored object when listing by prefix.
type Object struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Store is the narrow surface the core needs from object storage.
type Store interface {
	// Put uploads body under key. Size must match the body length.
	Put(ctx context.Context, key string, body io.Reader, size int64, contentType string) error

	// List returns all objects whose keys start with prefix.
	List(ctx context.Context, prefix string) ([]Object, error)

	// SignedURL returns a time-limited download URL for key.
	SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error)

	// Exists reports whether key is present in the bucket.
	Exists(ctx context.Context, key string) (bool, error)

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error
}
