package store

import (
	"context"
	"errors"
	"time"

	"github.com/example/checkout/internal/domain/order"
)

var (
	// ErrConflict signals a concurrent write collided with ours. Callers
	// retry; it never reaches a client.
	ErrConflict = errors.New("concurrent modification conflict")
)

// ApplyOutcome describes what a transition attempt did.
type ApplyOutcome int

const (
	// OutcomeApplied means the transition was applied and the event
	// recorded in the ledger.
	OutcomeApplied ApplyOutcome = iota
	// OutcomeDuplicate means the event_id was already in the ledger;
	// nothing changed.
	OutcomeDuplicate
	// OutcomeTerminal means the order was already in a terminal state;
	// the event was recorded, the status left untouched.
	OutcomeTerminal
)

// OrderStore is the durable record of orders and the ProcessedEvent
// idempotency ledger. Both implementations (Postgres, DynamoDB) enforce
// the session_id and event_id uniqueness constraints and make
// ApplyTransition atomic: the status change and the ledger record become
// visible together or not at all.
type OrderStore interface {
	// CreateOrder inserts a fully formed order. Returns
	// order.ErrDuplicateOrder if the session_id is already taken.
	CreateOrder(ctx context.Context, o *order.Order) error

	// GetBySessionID returns order.ErrOrderNotFound when no order has
	// that session_id.
	GetBySessionID(ctx context.Context, sessionID string) (*order.Order, error)

	// GetByID returns order.ErrOrderNotFound when no order has that id.
	GetByID(ctx context.Context, id string) (*order.Order, error)

	// ApplyTransition records eventID in the ledger and moves the order
	// for sessionID from pending to next, atomically. A duplicate
	// eventID yields OutcomeDuplicate without touching the order. An
	// order already terminal yields OutcomeTerminal (the event is still
	// recorded). A missing order yields order.ErrOrderNotFound and
	// records nothing. ErrConflict means a concurrent writer won and
	// the attempt should be retried.
	ApplyTransition(ctx context.Context, eventID, sessionID string, next order.Status, at time.Time) (ApplyOutcome, error)

	// ListOrders returns orders newest first, optionally filtered by
	// status (empty string means all).
	ListOrders(ctx context.Context, status order.Status) ([]*order.Order, error)
}
