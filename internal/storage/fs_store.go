package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitepub/internal/site"
)

const metaSuffix = ".sitepub-meta.json"

// FSStore is a filesystem-backed bucket: objects live under
// <root>/<bucket>/<key> with a JSON metadata sidecar per object. It mirrors
// the layout a real object store presents, which keeps the sync and preview
// paths identical between local development and production.
type FSStore struct {
	basePath string
	mu       sync.RWMutex
}

type fsMeta struct {
	ContentType  string    `json:"content_type"`
	ETag         string    `json:"etag"`
	LastModified time.Time `json:"last_modified"`
}

// NewFSStore creates a filesystem bucket rooted at basePath.
func NewFSStore(basePath string) (*FSStore, error) {
	if err := os.MkdirAll(basePath, 0o750); err != nil {
		return nil, fmt.Errorf("create bucket directory %s: %w", basePath, err)
	}
	return &FSStore{basePath: basePath}, nil
}

// Put stores an object under key, overwriting any existing object.
func (s *FSStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	objectPath, err := s.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(objectPath), 0o750); err != nil {
		return fmt.Errorf("create object directory: %w", err)
	}
	if err := os.WriteFile(objectPath, data, 0o640); err != nil {
		return fmt.Errorf("write object: %w", err)
	}

	meta := fsMeta{
		ContentType:  contentType,
		ETag:         site.ETag(data),
		LastModified: time.Now(),
	}
	return s.writeMeta(objectPath, meta)
}

// Get retrieves an object by key.
func (s *FSStore) Get(ctx context.Context, key string) (*Object, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objectPath, err := s.objectPath(key)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(objectPath) // #nosec G304 - path is sanitized by objectPath
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound{Key: key}
		}
		return nil, fmt.Errorf("read object: %w", err)
	}

	meta, err := s.readMeta(objectPath)
	if err != nil {
		// Sidecar lost or corrupt; reconstruct what we can.
		meta = fsMeta{ContentType: site.TypeByPath(key), ETag: site.ETag(data)}
	}

	return &Object{
		Key:          key,
		Data:         data,
		ContentType:  meta.ContentType,
		ETag:         meta.ETag,
		Size:         int64(len(data)),
		LastModified: meta.LastModified,
	}, nil
}

// Delete removes an object by key.
func (s *FSStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	objectPath, err := s.objectPath(key)
	if err != nil {
		return err
	}
	if err := os.Remove(objectPath); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound{Key: key}
		}
		return fmt.Errorf("delete object: %w", err)
	}
	_ = os.Remove(objectPath + metaSuffix) // best effort

	// Prune now-empty parent directories up to the bucket root.
	for dir := filepath.Dir(objectPath); dir != s.basePath; dir = filepath.Dir(dir) {
		if os.Remove(dir) != nil {
			break
		}
	}
	return nil
}

// List returns the keys currently in the store mapped to their etags.
func (s *FSStore) List(ctx context.Context) (map[string]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	keys := make(map[string]string)
	err := filepath.WalkDir(s.basePath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || strings.HasSuffix(path, metaSuffix) {
			return nil
		}
		rel, err := filepath.Rel(s.basePath, path)
		if err != nil {
			return err
		}
		key := filepath.ToSlash(rel)
		meta, err := s.readMeta(path)
		if err != nil {
			data, rerr := os.ReadFile(path) // #nosec G304 - path from store walk
			if rerr != nil {
				return rerr
			}
			meta = fsMeta{ETag: site.ETag(data)}
		}
		keys[key] = meta.ETag
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk bucket: %w", err)
	}
	return keys, nil
}

// Close releases resources.
func (s *FSStore) Close() error { return nil }

// objectPath maps a key to a filesystem path, rejecting traversal outside
// the bucket root.
func (s *FSStore) objectPath(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid object key: %q", key)
	}
	return filepath.Join(s.basePath, clean), nil
}

func (s *FSStore) writeMeta(objectPath string, meta fsMeta) error {
	data, err := json.Marshal(meta)
	if err != nil {
		return fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(objectPath+metaSuffix, data, 0o640); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

func (s *FSStore) readMeta(objectPath string) (fsMeta, error) {
	data, err := os.ReadFile(objectPath + metaSuffix) // #nosec G304 - sidecar of a sanitized path
	if err != nil {
		return fsMeta{}, err
	}
	var meta fsMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return fsMeta{}, fmt.Errorf("unmarshal metadata: %w", err)
	}
	return meta, nil
}
