package probe

import (
	"context"
	"sync"
)

// MockProber is a test double for Prober.
type MockProber struct {
	// ProbeFunc is called by Probe if set.
	ProbeFunc func(ctx context.Context, path string) (int, error)

	// Durations maps paths to fixed results when ProbeFunc is nil.
	// Paths not present fail with ErrUnavailable.
	Durations map[string]int

	mu        sync.Mutex
	callCount int
}

// NewMockProber creates a mock prober with fixed per-path durations.
func NewMockProber(durations map[string]int) *MockProber {
	return &MockProber{Durations: durations}
}

var _ Prober = (*MockProber)(nil)

// Probe returns the configured duration for path.
func (m *MockProber) Probe(ctx context.Context, path string) (int, error) {
	m.mu.Lock()
	m.callCount++
	m.mu.Unlock()
	if m.ProbeFunc != nil {
		return m.ProbeFunc(ctx, path)
	}
	if d, ok := m.Durations[path]; ok {
		return d, nil
	}
	return 0, ErrUnavailable
}

// CallCount returns the number of Probe calls.
func (m *MockProber) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.callCount
}
