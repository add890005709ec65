package storage

import (
	"context"
	"sync"
	"time"

	"git.home.luguber.info/inful/sitepub/internal/site"
)

// MockStore is an in-memory implementation of ObjectStore for testing.
type MockStore struct {
	mu      sync.RWMutex
	objects map[string]*Object
	calls   MockCalls

	// Error injection for failure-path tests. When set, the corresponding
	// method returns the error without mutating state.
	PutErr    error
	DeleteErr error
	ListErr   error
}

// MockCalls tracks method invocations for test verification.
type MockCalls struct {
	Put    int
	Get    int
	Delete int
	List   int
}

// NewMockStore creates a new in-memory object store.
func NewMockStore() *MockStore {
	return &MockStore{objects: make(map[string]*Object)}
}

// Put stores an object under key.
func (m *MockStore) Put(ctx context.Context, key string, data []byte, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Put++
	if m.PutErr != nil {
		return m.PutErr
	}
	m.objects[key] = &Object{
		Key:          key,
		Data:         append([]byte(nil), data...),
		ContentType:  contentType,
		ETag:         site.ETag(data),
		Size:         int64(len(data)),
		LastModified: time.Now(),
	}
	return nil
}

// Get retrieves an object by key.
func (m *MockStore) Get(ctx context.Context, key string) (*Object, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.calls.Get++
	obj, ok := m.objects[key]
	if !ok {
		return nil, ErrNotFound{Key: key}
	}
	cp := *obj
	cp.Data = append([]byte(nil), obj.Data...)
	return &cp, nil
}

// Delete removes an object by key.
func (m *MockStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls.Delete++
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	if _, ok := m.objects[key]; !ok {
		return ErrNotFound{Key: key}
	}
	delete(m.objects, key)
	return nil
}

// List returns the keys currently in the store mapped to their etags.
func (m *MockStore) List(ctx context.Context) (map[string]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	m.calls.List++
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	keys := make(map[string]string, len(m.objects))
	for k, o := range m.objects {
		keys[k] = o.ETag
	}
	return keys, nil
}

// Close releases resources.
func (m *MockStore) Close() error { return nil }

// Calls returns a snapshot of recorded call counts.
func (m *MockStore) Calls() MockCalls {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.calls
}

// Keys returns the current key set (test helper).
func (m *MockStore) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
