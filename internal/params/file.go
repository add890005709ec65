package params

import (
	"context"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"
)

// FileStore resolves parameters from a flat YAML file of key: value pairs.
// Intended for local development and tests; production environments use the
// real parameter store behind the same interface.
type FileStore struct {
	path string

	mu     sync.Mutex
	loaded bool
	values map[string]string
}

// NewFileStore creates a file-backed parameter store. The file is read
// lazily on first Get so a missing file only fails lookups, not startup.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Get returns the value for key, or ErrNotFound if the key is absent.
func (s *FileStore) Get(_ context.Context, key string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.loaded {
		data, err := os.ReadFile(s.path) // #nosec G304 - operator-supplied path
		if err != nil {
			return "", fmt.Errorf("read parameter file: %w", err)
		}
		if err := yaml.Unmarshal(data, &s.values); err != nil {
			return "", fmt.Errorf("parse parameter file: %w", err)
		}
		s.loaded = true
	}

	v, ok := s.values[key]
	if !ok || v == "" {
		return "", ErrNotFound{Key: key}
	}
	return v, nil
}
