package gateway

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/example/checkout/internal/domain/order"
)

var ErrMalformedEvent = errors.New("malformed webhook event")

// Event is a verified, decoded webhook delivery.
type Event struct {
	ID        string
	Kind      order.EventKind
	SessionID string
}

// ParseEvent decodes a verified payload. The wire format carries a
// gateway-assigned event id, a type string, and the checkout session the
// event pertains to.
func ParseEvent(payload []byte) (*Event, error) {
	var wire struct {
		ID   string `json:"id"`
		Type string `json:"type"`
		Data struct {
			SessionID string `json:"session_id"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &wire); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if wire.ID == "" {
		return nil, fmt.Errorf("%w: missing event id", ErrMalformedEvent)
	}
	if wire.Data.SessionID == "" {
		return nil, fmt.Errorf("%w: missing session id", ErrMalformedEvent)
	}

	kind, err := order.ParseEventKind(wire.Type)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}

	return &Event{
		ID:        wire.ID,
		Kind:      kind,
		SessionID: wire.Data.SessionID,
	}, nil
}
