package cdn

import (
	"context"
	"sync"
)

// MockInvalidator records invalidation calls for testing.
type MockInvalidator struct {
	mu    sync.Mutex
	calls []InvalidationCall

	// Err, when set, is returned by every Invalidate call (after recording).
	Err error
}

// InvalidationCall captures one recorded Invalidate invocation.
type InvalidationCall struct {
	DistributionID string
	Pattern        string
}

// NewMockInvalidator creates an empty mock.
func NewMockInvalidator() *MockInvalidator { return &MockInvalidator{} }

// Invalidate records the call and returns the injected error, if any.
func (m *MockInvalidator) Invalidate(_ context.Context, distributionID, pattern string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, InvalidationCall{DistributionID: distributionID, Pattern: pattern})
	return m.Err
}

// Calls returns the recorded invalidations in order.
func (m *MockInvalidator) Calls() []InvalidationCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]InvalidationCall(nil), m.calls...)
}
