package notification

import (
	"context"
	"encoding/json"
	"log"

	"github.com/example/checkout/internal/email"
	"github.com/example/checkout/internal/infrastructure/store"
	"github.com/example/checkout/internal/notifier"
)

// Handler consumes payment notifications from Kafka and sends e-mail.
// Everything here is best-effort: the payment is already durably
// recorded, so failures are logged and never retried into the store.
type Handler struct {
	emailService *email.Service
	store        store.OrderStore
}

// NewHandler creates a new notification handler
func NewHandler(emailSvc *email.Service, orderStore store.OrderStore) *Handler {
	return &Handler{
		emailService: emailSvc,
		store:        orderStore,
	}
}

// HandleMessage processes one payment notification from Kafka
func (h *Handler) HandleMessage(ctx context.Context, key, value []byte) error {
	var msg notifier.PaymentReceived
	if err := json.Unmarshal(value, &msg); err != nil {
		log.Printf("[Notifier] Failed to unmarshal message: %v", err)
		return err
	}

	log.Printf("[Notifier] Processing payment notification for order %s", msg.OrderID)

	o, err := h.store.GetByID(ctx, msg.OrderID)
	if err != nil {
		log.Printf("[Notifier] Could not load order %s: %v", msg.OrderID, err)
		return nil
	}

	if err := h.emailService.SendPaymentReceipt(o); err != nil {
		log.Printf("[Notifier] Failed to send receipt to %s: %v", o.CustomerEmail, err)
	} else {
		log.Printf("[Notifier] Receipt sent to %s for order %s", o.CustomerEmail, o.ID)
	}

	if err := h.emailService.SendMerchantNotification(o); err != nil {
		log.Printf("[Notifier] Failed to send merchant notification for order %s: %v", o.ID, err)
	}

	return nil
}
