package params

import (
	"context"
	"sync"
)

// MockStore is an in-memory parameter store for testing.
type MockStore struct {
	mu     sync.Mutex
	values map[string]string
	gets   []string
}

// NewMockStore creates a mock store seeded with the given values.
func NewMockStore(values map[string]string) *MockStore {
	m := &MockStore{values: make(map[string]string)}
	for k, v := range values {
		m.values[k] = v
	}
	return m
}

// Get returns the seeded value, or ErrNotFound. Every lookup is recorded.
func (m *MockStore) Get(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets = append(m.gets, key)
	v, ok := m.values[key]
	if !ok {
		return "", ErrNotFound{Key: key}
	}
	return v, nil
}

// Gets returns the keys looked up so far, in order.
func (m *MockStore) Gets() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.gets...)
}
