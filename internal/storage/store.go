// Package storage provides the destination object store the publisher
// mirrors rendered sites into. Objects are addressed by site-relative key;
// content hashes (etags) drive change detection during sync.
package storage

import (
	"context"
	"time"
)

// ObjectStore is the origin bucket holding the published site.
type ObjectStore interface {
	// Put stores an object under key, overwriting any existing object.
	Put(ctx context.Context, key string, data []byte, contentType string) error

	// Get retrieves an object by key.
	// Returns ErrNotFound if the object doesn't exist.
	Get(ctx context.Context, key string) (*Object, error)

	// Delete removes an object by key.
	// Returns ErrNotFound if the object doesn't exist.
	Delete(ctx context.Context, key string) error

	// List returns the keys currently in the store mapped to their etags.
	List(ctx context.Context) (map[string]string, error)

	// Close releases any resources held by the store.
	Close() error
}

// Object represents a stored artifact with its metadata.
type Object struct {
	// Key is the site-relative object key, e.g. "guide/index.html".
	Key string

	// Data is the object content.
	Data []byte

	// ContentType is the MIME type recorded at upload time.
	ContentType string

	// ETag is the hex-encoded SHA256 of Data.
	ETag string

	// Size is the size of the data in bytes.
	Size int64

	// LastModified is when the object was last written.
	LastModified time.Time
}

// ErrNotFound is returned when an object doesn't exist.
type ErrNotFound struct {
	Key string
}

func (e ErrNotFound) Error() string {
	return "object not found: " + e.Key
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
