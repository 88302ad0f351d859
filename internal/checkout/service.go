package checkout

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/example/checkout/internal/domain/order"
	"github.com/example/checkout/internal/gateway"
	"github.com/example/checkout/internal/infrastructure/store"
)

// Cart is what the storefront submits to start a checkout.
type Cart struct {
	Items         []order.LineItem `json:"items"`
	CustomerEmail string           `json:"customer_email"`
	CustomerName  string           `json:"customer_name"`
}

// Session is returned to the storefront for the redirect.
type Session struct {
	OrderID     string `json:"order_id"`
	SessionID   string `json:"session_id"`
	CheckoutURL string `json:"checkout_url"`
}

// Service is the session initiator: it validates a cart, creates the
// gateway checkout session, and persists the pending order.
type Service struct {
	gateway        gateway.Client
	store          store.OrderStore
	currency       string
	successURL     string
	cancelURL      string
	gatewayTimeout time.Duration
	now            func() time.Time
}

type Config struct {
	Currency       string
	SuccessURL     string
	CancelURL      string
	GatewayTimeout time.Duration
}

func NewService(client gateway.Client, orderStore store.OrderStore, cfg Config) *Service {
	if cfg.GatewayTimeout <= 0 {
		cfg.GatewayTimeout = 10 * time.Second
	}
	return &Service{
		gateway:        client,
		store:          orderStore,
		currency:       cfg.Currency,
		successURL:     cfg.SuccessURL,
		cancelURL:      cfg.CancelURL,
		gatewayTimeout: cfg.GatewayTimeout,
		now:            time.Now,
	}
}

// CreateSession validates the cart, asks the gateway for a checkout
// session under a bounded timeout, and persists the order with its
// session_id in a single insert. The order is assembled in memory first,
// so a gateway failure leaves nothing behind in the store.
func (s *Service) CreateSession(ctx context.Context, cart Cart) (*Session, error) {
	if err := order.ValidateCart(cart.Items); err != nil {
		return nil, err
	}

	now := s.now()
	o := &order.Order{
		ID:            uuid.New().String(),
		CustomerEmail: cart.CustomerEmail,
		CustomerName:  cart.CustomerName,
		Items:         cart.Items,
		Amount:        order.Total(cart.Items),
		Currency:      s.currency,
		Status:        order.StatusPending,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	gwCtx, cancel := context.WithTimeout(ctx, s.gatewayTimeout)
	defer cancel()

	sessionID, checkoutURL, err := s.gateway.CreateCheckoutSession(gwCtx, cart.Items, s.successURL, s.cancelURL)
	if err != nil {
		return nil, err
	}
	o.SessionID = sessionID

	if err := s.store.CreateOrder(ctx, o); err != nil {
		// The gateway session already exists; without the order row the
		// webhook for it will surface as an unknown session.
		log.Printf("[Checkout] Failed to persist order %s for session %s: %v", o.ID, sessionID, err)
		return nil, err
	}

	log.Printf("[Checkout] Created order %s with session %s (%d %s)", o.ID, sessionID, o.Amount, o.Currency)
	return &Session{
		OrderID:     o.ID,
		SessionID:   sessionID,
		CheckoutURL: checkoutURL,
	}, nil
}
