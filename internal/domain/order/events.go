package order

import (
	"errors"
	"fmt"
)

// EventKind is the closed set of gateway webhook event types this service
// understands. Anything else is rejected at parse time.
type EventKind string

const (
	EventPaymentSucceeded EventKind = "payment_succeeded"
	EventPaymentFailed    EventKind = "payment_failed"
	EventSessionExpired   EventKind = "session_expired"
	EventSessionCanceled  EventKind = "session_canceled"
)

var ErrUnknownEventKind = errors.New("unknown event kind")

// eventTransitions maps each event kind to the status it drives a pending
// order into. The table is the single source of truth for the state machine.
var eventTransitions = map[EventKind]Status{
	EventPaymentSucceeded: StatusPaid,
	EventPaymentFailed:    StatusFailed,
	EventSessionExpired:   StatusExpired,
	EventSessionCanceled:  StatusCanceled,
}

// ParseEventKind validates a wire-level event type string.
func ParseEventKind(s string) (EventKind, error) {
	kind := EventKind(s)
	if _, ok := eventTransitions[kind]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownEventKind, s)
	}
	return kind, nil
}

// TargetStatus returns the status an event kind transitions a pending
// order into.
func (k EventKind) TargetStatus() (Status, bool) {
	target, ok := eventTransitions[k]
	return target, ok
}
