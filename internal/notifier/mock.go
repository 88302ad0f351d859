package notifier

import (
	"context"
	"sync"
)

// MockNotifier records NotifyPaid calls for tests.
type MockNotifier struct {
	mu    sync.Mutex
	Calls []string
	Err   error
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) NotifyPaid(ctx context.Context, orderID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = append(m.Calls, orderID)
	return m.Err
}

// CallCount returns how many times NotifyPaid was invoked.
func (m *MockNotifier) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
