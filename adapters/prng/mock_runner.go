package prng

import (
	"context"
	"sync"
)

// MockRunner is a ProcessRunner for tests. RunFunc supplies the output and
// every invocation is recorded.
type MockRunner struct {
	RunFunc func(ctx context.Context, path string, args ...string) ([]byte, error)

	mu    sync.Mutex
	Calls [][]string
}

// Run records the call and delegates to RunFunc
func (m *MockRunner) Run(ctx context.Context, path string, args ...string) ([]byte, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, append([]string{path}, args...))
	m.mu.Unlock()

	if m.RunFunc == nil {
		return []byte(`{"bits":[],"time":0}`), nil
	}
	return m.RunFunc(ctx, path, args...)
}
