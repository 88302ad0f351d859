package order

import (
	"errors"
	"fmt"
	"time"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusPaid     Status = "paid"
	StatusFailed   Status = "failed"
	StatusCanceled Status = "canceled"
	StatusExpired  Status = "expired"
)

var (
	ErrOrderNotFound  = errors.New("order not found")
	ErrEmptyCart      = errors.New("cart must have at least one item")
	ErrInvalidAmount  = errors.New("item price and quantity must be positive")
	ErrInvalidStatus  = errors.New("invalid order status transition")
	ErrOrderTerminal  = errors.New("order is already in a terminal state")
	ErrDuplicateOrder = errors.New("order already exists for session")
)

// validTransitions defines allowed state transitions.
// Every non-pending status is terminal.
var validTransitions = map[Status][]Status{
	StatusPending:  {StatusPaid, StatusFailed, StatusCanceled, StatusExpired},
	StatusPaid:     {},
	StatusFailed:   {},
	StatusCanceled: {},
	StatusExpired:  {},
}

// IsTerminal reports whether no further transition is accepted from s.
func (s Status) IsTerminal() bool {
	allowed, ok := validTransitions[s]
	return ok && len(allowed) == 0
}

// CanTransitionTo checks if the order can transition to the target status
func (o *Order) CanTransitionTo(target Status) bool {
	allowed, exists := validTransitions[o.Status]
	if !exists {
		return false
	}
	for _, s := range allowed {
		if s == target {
			return true
		}
	}
	return false
}

// transitionError returns an appropriate error for an invalid transition
func (o *Order) transitionError(target Status) error {
	if o.Status.IsTerminal() {
		return fmt.Errorf("%w: %s", ErrOrderTerminal, o.Status)
	}
	return fmt.Errorf("%w: cannot transition from %s to %s", ErrInvalidStatus, o.Status, target)
}

type LineItem struct {
	ProductID string `json:"product_id"`
	Name      string `json:"name"`
	Quantity  int    `json:"quantity"`
	Price     int    `json:"price"` // minor units
}

type Order struct {
	ID            string     `json:"id"`
	SessionID     string     `json:"session_id"`
	CustomerEmail string     `json:"customer_email"`
	CustomerName  string     `json:"customer_name,omitempty"`
	Items         []LineItem `json:"items"`
	Amount        int        `json:"amount"`
	Currency      string     `json:"currency"`
	Status        Status     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
	PaidAt        *time.Time `json:"paid_at,omitempty"`
}

// Total sums price*quantity over the items.
func Total(items []LineItem) int {
	var total int
	for _, item := range items {
		total += item.Price * item.Quantity
	}
	return total
}

// ValidateCart rejects empty carts and non-positive quantities or prices
// before anything external is touched.
func ValidateCart(items []LineItem) error {
	if len(items) == 0 {
		return ErrEmptyCart
	}
	for _, item := range items {
		if item.Quantity <= 0 || item.Price <= 0 {
			return fmt.Errorf("%w: %q", ErrInvalidAmount, item.ProductID)
		}
	}
	return nil
}
