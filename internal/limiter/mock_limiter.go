package limiter

import "sync"

// MockLimiter is a test double for the Limiter interface
// It returns a fixed answer and records the keys it was asked about
type MockLimiter struct {
	AllowResult bool
	CloseError  error

	mu          sync.Mutex
	allowCalls  []string
	closeCalled bool
}

// NewMockLimiter creates a mock limiter that answers allowResult to every request
func NewMockLimiter(allowResult bool) *MockLimiter {
	return &MockLimiter{AllowResult: allowResult}
}

// Allow implements Limiter
func (m *MockLimiter) Allow(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.allowCalls = append(m.allowCalls, key)
	return m.AllowResult
}

// Close implements Limiter
func (m *MockLimiter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeCalled = true
	return m.CloseError
}

// AllowCalls returns the keys passed to Allow, in order
func (m *MockLimiter) AllowCalls() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.allowCalls...)
}

// CloseCalled reports whether Close was called
func (m *MockLimiter) CloseCalled() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closeCalled
}
