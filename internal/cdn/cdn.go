// Package cdn abstracts edge-cache invalidation. The publisher treats the
// CDN as a best-effort collaborator: a failed purge only delays propagation,
// it never fails a publish whose origin content is already correct.
package cdn

import "context"

// Invalidator requests that cached responses matching pattern be purged for
// the given distribution.
type Invalidator interface {
	Invalidate(ctx context.Context, distributionID, pattern string) error
}
