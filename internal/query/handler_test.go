package query

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/checkout/internal/domain/order"
	"github.com/example/checkout/internal/infrastructure/store/mocks"
)

func seedOrder(t *testing.T, orderStore *mocks.MockOrderStore, id, sessionID string, status order.Status) {
	t.Helper()
	now := time.Now()
	require.NoError(t, orderStore.CreateOrder(context.Background(), &order.Order{
		ID:            id,
		SessionID:     sessionID,
		CustomerEmail: "customer@example.com",
		Items:         []order.LineItem{{ProductID: "A", Quantity: 1, Price: 1000}},
		Amount:        1000,
		Currency:      "eur",
		Status:        status,
		CreatedAt:     now,
		UpdatedAt:     now,
	}))
}

func TestGetStatusBySession(t *testing.T) {
	orderStore := mocks.NewMockOrderStore()
	h := NewHandler(orderStore)
	seedOrder(t, orderStore, "ord_1", "cs_1", order.StatusPending)

	view, err := h.GetStatusBySession(context.Background(), "cs_1")

	require.NoError(t, err)
	assert.Equal(t, "ord_1", view.OrderID)
	assert.Equal(t, order.StatusPending, view.Status)
	assert.Equal(t, 1000, view.Amount)
	assert.Equal(t, "eur", view.Currency)
	assert.Nil(t, view.PaidAt)
}

func TestGetStatusBySession_NotFound(t *testing.T) {
	h := NewHandler(mocks.NewMockOrderStore())

	_, err := h.GetStatusBySession(context.Background(), "cs_ghost")

	assert.ErrorIs(t, err, order.ErrOrderNotFound)
}

func TestGetStatusByOrder(t *testing.T) {
	orderStore := mocks.NewMockOrderStore()
	h := NewHandler(orderStore)
	seedOrder(t, orderStore, "ord_1", "cs_1", order.StatusPending)

	view, err := h.GetStatusByOrder(context.Background(), "ord_1")

	require.NoError(t, err)
	assert.Equal(t, "ord_1", view.OrderID)
}

func TestGetStatus_ReflectsCommittedTransition(t *testing.T) {
	orderStore := mocks.NewMockOrderStore()
	h := NewHandler(orderStore)
	ctx := context.Background()
	seedOrder(t, orderStore, "ord_1", "cs_1", order.StatusPending)

	_, err := orderStore.ApplyTransition(ctx, "evt_1", "cs_1", order.StatusPaid, time.Now())
	require.NoError(t, err)

	view, err := h.GetStatusBySession(ctx, "cs_1")
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, view.Status, "read must not observe a stale pending")
	require.NotNil(t, view.PaidAt)
}

func TestListOrders_StatusFilter(t *testing.T) {
	orderStore := mocks.NewMockOrderStore()
	h := NewHandler(orderStore)
	ctx := context.Background()
	seedOrder(t, orderStore, "ord_1", "cs_1", order.StatusPending)
	seedOrder(t, orderStore, "ord_2", "cs_2", order.StatusPaid)

	all, err := h.ListOrders(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	paid, err := h.ListOrders(ctx, order.StatusPaid)
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "ord_2", paid[0].ID)
}
