package query

import (
	"context"
	"time"

	"github.com/example/checkout/internal/domain/order"
	"github.com/example/checkout/internal/infrastructure/store"
)

// StatusView is the read model returned to storefront clients.
type StatusView struct {
	OrderID       string       `json:"order_id"`
	Status        order.Status `json:"status"`
	Amount        int          `json:"amount"`
	Currency      string       `json:"currency"`
	CustomerEmail string       `json:"customer_email"`
	PaidAt        *string      `json:"paid_at,omitempty"`
}

// Handler is the status query read path. It reads straight from the
// store with no cache in between, so a committed transition is visible
// to the very next read.
type Handler struct {
	store store.OrderStore
}

func NewHandler(orderStore store.OrderStore) *Handler {
	return &Handler{store: orderStore}
}

// GetStatusBySession resolves an order by the gateway session id.
// Returns order.ErrOrderNotFound for unknown sessions.
func (h *Handler) GetStatusBySession(ctx context.Context, sessionID string) (*StatusView, error) {
	o, err := h.store.GetBySessionID(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return toView(o), nil
}

// GetStatusByOrder resolves an order by its own id.
func (h *Handler) GetStatusByOrder(ctx context.Context, orderID string) (*StatusView, error) {
	o, err := h.store.GetByID(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toView(o), nil
}

// ListOrders returns all orders, optionally filtered by status.
func (h *Handler) ListOrders(ctx context.Context, status order.Status) ([]*order.Order, error) {
	return h.store.ListOrders(ctx, status)
}

func toView(o *order.Order) *StatusView {
	view := &StatusView{
		OrderID:       o.ID,
		Status:        o.Status,
		Amount:        o.Amount,
		Currency:      o.Currency,
		CustomerEmail: o.CustomerEmail,
	}
	if o.PaidAt != nil {
		paidAt := o.PaidAt.UTC().Format(time.RFC3339)
		view.PaidAt = &paidAt
	}
	return view
}
