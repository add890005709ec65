// Package params abstracts the external parameter store holding
// environment-specific identifiers (destination bucket, CDN distribution).
// Keys follow a fixed naming convention under a project namespace, e.g.
// /hla-compass/s3-bucket.
package params

import (
	"context"
	"fmt"
)

// Well-known key suffixes under the project namespace.
const (
	KeyBucket       = "s3-bucket"
	KeyDistribution = "cloudfront-distribution-id"
)

// Key builds a parameter-store key from a project namespace and suffix.
func Key(project, suffix string) string {
	return "/" + project + "/" + suffix
}

// Store exposes the parameter store's read contract.
type Store interface {
	// Get returns the value for key, or ErrNotFound if the key is absent.
	Get(ctx context.Context, key string) (string, error)
}

// ErrNotFound is returned when a parameter key is absent.
type ErrNotFound struct {
	Key string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("parameter not found: %s", e.Key)
}

// IsNotFound returns true if the error is ErrNotFound.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}
