package storage

import (
	"context"

	"git.home.luguber.info/inful/sitepub/internal/site"
)

// TreeStore is a read-only ObjectStore view over a rendered site tree. The
// preview server uses it to serve a local build without publishing anything.
type TreeStore struct {
	tree *site.Tree
}

// NewTreeStore wraps a tree. The tree must not be mutated while served.
func NewTreeStore(tree *site.Tree) *TreeStore {
	return &TreeStore{tree: tree}
}

func (s *TreeStore) Get(_ context.Context, key string) (*Object, error) {
	f := s.tree.Get(key)
	if f == nil {
		return nil, ErrNotFound{Key: key}
	}
	return &Object{
		Key:         f.Path,
		Data:        f.Data,
		ContentType: f.ContentType,
		ETag:        f.ETag,
		Size:        int64(len(f.Data)),
	}, nil
}

func (s *TreeStore) List(_ context.Context) (map[string]string, error) {
	keys := make(map[string]string, s.tree.Len())
	for _, f := range s.tree.Files() {
		keys[f.Path] = f.ETag
	}
	return keys, nil
}

func (s *TreeStore) Put(context.Context, string, []byte, string) error {
	return ErrReadOnly{}
}

func (s *TreeStore) Delete(context.Context, string) error {
	return ErrReadOnly{}
}

func (s *TreeStore) Close() error { return nil }

// ErrReadOnly is returned for mutations on a read-only store.
type ErrReadOnly struct{}

func (ErrReadOnly) Error() string { return "store is read-only" }
