// Package render turns a documentation source tree into a static site tree.
// The publisher treats the renderer as an opaque collaborator: any error is
// fatal and nothing gets published.
package render

import "context"

// Renderer renders the site source at sourceDir into outDir. Implementations
// must leave outDir containing the complete site on success and must report
// every renderer error; the pipeline never publishes a partially-built site.
type Renderer interface {
	Render(ctx context.Context, sourceDir, outDir string) error
}
