package notifier

import (
	"context"
	"time"

	"github.com/example/checkout/internal/infrastructure/kafka"
)

// Notifier is the fire-and-forget side effect invoked when an order
// enters paid. Callers log failures and never propagate them into the
// webhook response.
type Notifier interface {
	NotifyPaid(ctx context.Context, orderID string) error
}

// PaymentReceived is the message published for each newly paid order.
type PaymentReceived struct {
	OrderID string    `json:"order_id"`
	PaidAt  time.Time `json:"paid_at"`
}

// KafkaNotifier publishes payment notifications to Kafka; a separate
// notifier process consumes them and sends e-mail.
type KafkaNotifier struct {
	producer *kafka.Producer
}

func NewKafkaNotifier(producer *kafka.Producer) *KafkaNotifier {
	return &KafkaNotifier{producer: producer}
}

func (n *KafkaNotifier) NotifyPaid(ctx context.Context, orderID string) error {
	return n.producer.Publish(ctx, orderID, PaymentReceived{
		OrderID: orderID,
		PaidAt:  time.Now(),
	})
}
