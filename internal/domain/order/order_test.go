package order

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================
// Cart Validation Tests
// ============================================

func TestValidateCart_Success(t *testing.T) {
	items := []LineItem{
		{ProductID: "prod-1", Name: "Rug", Quantity: 1, Price: 1000},
		{ProductID: "prod-2", Name: "Lamp", Quantity: 3, Price: 250},
	}

	require.NoError(t, ValidateCart(items))
}

func TestValidateCart_Empty(t *testing.T) {
	assert.ErrorIs(t, ValidateCart(nil), ErrEmptyCart)
	assert.ErrorIs(t, ValidateCart([]LineItem{}), ErrEmptyCart)
}

func TestValidateCart_NonPositiveAmounts(t *testing.T) {
	tests := []struct {
		name string
		item LineItem
	}{
		{"zero price", LineItem{ProductID: "p", Quantity: 1, Price: 0}},
		{"negative price", LineItem{ProductID: "p", Quantity: 1, Price: -100}},
		{"zero quantity", LineItem{ProductID: "p", Quantity: 0, Price: 100}},
		{"negative quantity", LineItem{ProductID: "p", Quantity: -1, Price: 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, ValidateCart([]LineItem{tt.item}), ErrInvalidAmount)
		})
	}
}

func TestTotal(t *testing.T) {
	items := []LineItem{
		{ProductID: "prod-1", Quantity: 2, Price: 1000},
		{ProductID: "prod-2", Quantity: 1, Price: 2000},
	}

	assert.Equal(t, 4000, Total(items))
	assert.Equal(t, 0, Total(nil))
}

// ============================================
// State Machine Tests
// ============================================

func TestCanTransitionTo_FromPending(t *testing.T) {
	o := &Order{Status: StatusPending}

	assert.True(t, o.CanTransitionTo(StatusPaid))
	assert.True(t, o.CanTransitionTo(StatusFailed))
	assert.True(t, o.CanTransitionTo(StatusCanceled))
	assert.True(t, o.CanTransitionTo(StatusExpired))
	assert.False(t, o.CanTransitionTo(StatusPending))
}

func TestCanTransitionTo_TerminalStatesAreClosed(t *testing.T) {
	terminals := []Status{StatusPaid, StatusFailed, StatusCanceled, StatusExpired}
	targets := []Status{StatusPending, StatusPaid, StatusFailed, StatusCanceled, StatusExpired}

	for _, from := range terminals {
		o := &Order{Status: from}
		for _, to := range targets {
			assert.False(t, o.CanTransitionTo(to), "%s -> %s should be rejected", from, to)
		}
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, StatusPending.IsTerminal())
	assert.True(t, StatusPaid.IsTerminal())
	assert.True(t, StatusFailed.IsTerminal())
	assert.True(t, StatusCanceled.IsTerminal())
	assert.True(t, StatusExpired.IsTerminal())
	assert.False(t, Status("bogus").IsTerminal())
}

func TestTransitionError(t *testing.T) {
	paid := &Order{Status: StatusPaid}
	assert.ErrorIs(t, paid.transitionError(StatusFailed), ErrOrderTerminal)

	pending := &Order{Status: StatusPending}
	assert.ErrorIs(t, pending.transitionError(StatusPending), ErrInvalidStatus)
}

// ============================================
// Event Kind Tests
// ============================================

func TestParseEventKind(t *testing.T) {
	tests := []struct {
		input string
		kind  EventKind
	}{
		{"payment_succeeded", EventPaymentSucceeded},
		{"payment_failed", EventPaymentFailed},
		{"session_expired", EventSessionExpired},
		{"session_canceled", EventSessionCanceled},
	}

	for _, tt := range tests {
		kind, err := ParseEventKind(tt.input)
		require.NoError(t, err)
		assert.Equal(t, tt.kind, kind)
	}
}

func TestParseEventKind_Unknown(t *testing.T) {
	_, err := ParseEventKind("charge.refunded")
	assert.ErrorIs(t, err, ErrUnknownEventKind)

	_, err = ParseEventKind("")
	assert.ErrorIs(t, err, ErrUnknownEventKind)
}

func TestEventKind_TargetStatus(t *testing.T) {
	tests := []struct {
		kind   EventKind
		target Status
	}{
		{EventPaymentSucceeded, StatusPaid},
		{EventPaymentFailed, StatusFailed},
		{EventSessionExpired, StatusExpired},
		{EventSessionCanceled, StatusCanceled},
	}

	for _, tt := range tests {
		target, ok := tt.kind.TargetStatus()
		require.True(t, ok)
		assert.Equal(t, tt.target, target)
	}

	_, ok := EventKind("bogus").TargetStatus()
	assert.False(t, ok)
}
