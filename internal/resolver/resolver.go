// Package resolver maps incoming request paths to concrete object keys,
// reproducing directory-index semantics for a static site served from a
// key/value object store (no real filesystem at the edge).
package resolver

import "strings"

const indexDocument = "index.html"

// Resolve returns the object key that should satisfy a request for path.
//
// The rewrite rule is deliberately coarse: a dot anywhere in the path marks
// it as a concrete file reference, so `/v1.0/guide` passes through unchanged
// even though it has no extension. Published URLs rely on this behavior;
// do not tighten it to a final-segment check.
//
// Resolve is pure and total over paths starting with "/". Validation of
// malformed input is the caller's responsibility.
func Resolve(path string) string {
	if strings.Contains(path, ".") {
		return path
	}
	if strings.HasSuffix(path, "/") {
		return path + indexDocument
	}
	return path + "/" + indexDocument
}
