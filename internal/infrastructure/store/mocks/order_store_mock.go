package mocks

import (
	"context"
	"sync"
	"time"

	"github.com/example/checkout/internal/domain/order"
	"github.com/example/checkout/internal/infrastructure/store"
)

// MockOrderStore is an in-memory implementation of store.OrderStore for
// testing. It enforces the same uniqueness and atomicity semantics as
// the real stores so concurrency tests exercise genuine behavior.
type MockOrderStore struct {
	mu        sync.Mutex
	orders    map[string]*order.Order // keyed by session_id
	processed map[string]time.Time    // event_id -> processed_at

	// For tracking calls in tests
	CreateCalls []order.Order
	ApplyCalls  []ApplyCall
	CreateErr   error
	ApplyErr    error

	// ApplyHook runs inside ApplyTransition before the outcome is
	// decided, while the store lock is NOT held for it.
	ApplyHook func()
}

// ApplyCall records parameters passed to ApplyTransition
type ApplyCall struct {
	EventID   string
	SessionID string
	Next      order.Status
}

// NewMockOrderStore creates a new MockOrderStore
func NewMockOrderStore() *MockOrderStore {
	return &MockOrderStore{
		orders:    make(map[string]*order.Order),
		processed: make(map[string]time.Time),
	}
}

func (m *MockOrderStore) CreateOrder(ctx context.Context, o *order.Order) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.CreateCalls = append(m.CreateCalls, *o)
	if m.CreateErr != nil {
		return m.CreateErr
	}
	if _, exists := m.orders[o.SessionID]; exists {
		return order.ErrDuplicateOrder
	}

	copied := *o
	m.orders[o.SessionID] = &copied
	return nil
}

func (m *MockOrderStore) GetBySessionID(ctx context.Context, sessionID string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	o, ok := m.orders[sessionID]
	if !ok {
		return nil, order.ErrOrderNotFound
	}
	copied := *o
	return &copied, nil
}

func (m *MockOrderStore) GetByID(ctx context.Context, id string) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, o := range m.orders {
		if o.ID == id {
			copied := *o
			return &copied, nil
		}
	}
	return nil, order.ErrOrderNotFound
}

func (m *MockOrderStore) ApplyTransition(ctx context.Context, eventID, sessionID string, next order.Status, at time.Time) (store.ApplyOutcome, error) {
	if m.ApplyHook != nil {
		m.ApplyHook()
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.ApplyCalls = append(m.ApplyCalls, ApplyCall{EventID: eventID, SessionID: sessionID, Next: next})
	if m.ApplyErr != nil {
		return 0, m.ApplyErr
	}

	if _, done := m.processed[eventID]; done {
		return store.OutcomeDuplicate, nil
	}

	o, ok := m.orders[sessionID]
	if !ok {
		return 0, order.ErrOrderNotFound
	}

	if o.Status.IsTerminal() {
		m.processed[eventID] = at
		return store.OutcomeTerminal, nil
	}

	m.processed[eventID] = at
	o.Status = next
	o.UpdatedAt = at
	if next == order.StatusPaid {
		o.PaidAt = &at
	}
	return store.OutcomeApplied, nil
}

func (m *MockOrderStore) ListOrders(ctx context.Context, status order.Status) ([]*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var orders []*order.Order
	for _, o := range m.orders {
		if status != "" && o.Status != status {
			continue
		}
		copied := *o
		orders = append(orders, &copied)
	}
	return orders, nil
}

// Processed reports whether an event_id is in the ledger.
func (m *MockOrderStore) Processed(eventID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.processed[eventID]
	return ok
}
