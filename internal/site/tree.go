// Package site models a rendered static site as an ordered set of files,
// the unit the publisher mirrors into the destination object store.
package site

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io/fs"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// File is a single rendered artifact.
type File struct {
	// Path is the object key relative to the site root, always
	// forward-slash separated, never starting with "/".
	Path string

	// Data is the file content.
	Data []byte

	// ContentType is the MIME type derived from the file extension.
	ContentType string

	// ETag is the hex-encoded SHA256 of Data, used for change detection
	// during mirror sync.
	ETag string
}

// Tree is a rendered site: a set of files keyed by relative path.
type Tree struct {
	files map[string]*File
}

// NewTree creates an empty tree.
func NewTree() *Tree {
	return &Tree{files: make(map[string]*File)}
}

// Add inserts or replaces a file, computing its content type and etag.
func (t *Tree) Add(path string, data []byte) *File {
	f := &File{
		Path:        path,
		Data:        data,
		ContentType: TypeByPath(path),
		ETag:        ETag(data),
	}
	t.files[path] = f
	return f
}

// Get returns the file at path, or nil.
func (t *Tree) Get(path string) *File {
	return t.files[path]
}

// Len returns the number of files in the tree.
func (t *Tree) Len() int { return len(t.files) }

// Paths returns all file paths in sorted order.
func (t *Tree) Paths() []string {
	paths := make([]string, 0, len(t.files))
	for p := range t.files {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Files returns all files ordered by path.
func (t *Tree) Files() []*File {
	files := make([]*File, 0, len(t.files))
	for _, p := range t.Paths() {
		files = append(files, t.files[p])
	}
	return files
}

// Load walks dir and builds a tree of every regular file beneath it.
func Load(dir string) (*Tree, error) {
	tree := NewTree()
	root := filepath.Clean(dir)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path) // #nosec G304 - path comes from walking the render output
		if err != nil {
			return fmt.Errorf("read %s: %w", rel, err)
		}
		tree.Add(filepath.ToSlash(rel), data)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk site tree: %w", err)
	}
	return tree, nil
}

// ETag returns the hex-encoded SHA256 of data.
func ETag(data []byte) string {
	h := sha256.Sum256(data)
	return hex.EncodeToString(h[:])
}

// TypeByPath returns the MIME type for a file path, defaulting to
// application/octet-stream for unknown extensions.
func TypeByPath(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
