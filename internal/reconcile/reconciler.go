package reconcile

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/example/checkout/internal/domain/order"
	"github.com/example/checkout/internal/gateway"
	"github.com/example/checkout/internal/infrastructure/store"
	"github.com/example/checkout/internal/notifier"
)

// ErrUnknownSession means a verified event referenced a session with no
// order behind it: a desync between the gateway and the store. It is
// surfaced, never swallowed, so the operator's reconciliation process
// can act on it.
var ErrUnknownSession = errors.New("no order for webhook session")

// maxConflictRetries bounds the optimistic retry loop when concurrent
// deliveries race on the same order.
const maxConflictRetries = 3

// Outcome describes how a delivery was resolved.
type Outcome string

const (
	// OutcomeApplied means the event moved the order to a new status.
	OutcomeApplied Outcome = "applied"
	// OutcomeDuplicate means the event id was already in the ledger.
	OutcomeDuplicate Outcome = "duplicate"
	// OutcomeRedundant means the order was already terminal; the event
	// is acknowledged without effect.
	OutcomeRedundant Outcome = "redundant"
)

// Result reports what a successful reconciliation did. Any of the three
// outcomes is acknowledged to the gateway with a success code.
type Result struct {
	EventID   string
	Kind      order.EventKind
	SessionID string
	Outcome   Outcome
}

// Reconciler maps verified gateway events onto order-state transitions,
// exactly once per event id and per order.
type Reconciler struct {
	verifier *gateway.Verifier
	store    store.OrderStore
	notifier notifier.Notifier
	now      func() time.Time
}

func New(verifier *gateway.Verifier, orderStore store.OrderStore, n notifier.Notifier) *Reconciler {
	return &Reconciler{
		verifier: verifier,
		store:    orderStore,
		notifier: n,
		now:      time.Now,
	}
}

// Reconcile processes one webhook delivery.
//
// The order of steps is load-bearing: the signature is verified over the
// raw bytes before anything is parsed, the idempotency ledger is
// consulted before the state machine runs, and the transition plus the
// ledger record commit as one atomic unit in the store. An event for an
// order already in a terminal state is acknowledged as redundant so the
// gateway stops redelivering it.
func (r *Reconciler) Reconcile(ctx context.Context, payload []byte, sigHeader string) (*Result, error) {
	if err := r.verifier.Verify(payload, sigHeader); err != nil {
		log.Printf("[Reconciler] Rejected delivery: %v", err)
		return nil, err
	}

	event, err := gateway.ParseEvent(payload)
	if err != nil {
		log.Printf("[Reconciler] Verified payload failed to parse: %v", err)
		return nil, err
	}

	next, ok := event.Kind.TargetStatus()
	if !ok {
		// ParseEvent only admits kinds in the transition table, so this
		// is unreachable unless the table and the parser diverge.
		return nil, fmt.Errorf("%w: %q", gateway.ErrMalformedEvent, event.Kind)
	}

	result := &Result{
		EventID:   event.ID,
		Kind:      event.Kind,
		SessionID: event.SessionID,
	}

	for attempt := 0; ; attempt++ {
		outcome, err := r.store.ApplyTransition(ctx, event.ID, event.SessionID, next, r.now())
		if errors.Is(err, store.ErrConflict) && attempt < maxConflictRetries {
			continue
		}
		if errors.Is(err, order.ErrOrderNotFound) {
			log.Printf("[Reconciler] Event %s references unknown session %s", event.ID, event.SessionID)
			return nil, fmt.Errorf("%w: %s", ErrUnknownSession, event.SessionID)
		}
		if err != nil {
			return nil, err
		}

		switch outcome {
		case store.OutcomeDuplicate:
			log.Printf("[Reconciler] Event %s already processed, acknowledging", event.ID)
			result.Outcome = OutcomeDuplicate
		case store.OutcomeTerminal:
			log.Printf("[Reconciler] Event %s for session %s arrived after a terminal state, acknowledging", event.ID, event.SessionID)
			result.Outcome = OutcomeRedundant
		case store.OutcomeApplied:
			log.Printf("[Reconciler] Event %s moved session %s to %s", event.ID, event.SessionID, next)
			result.Outcome = OutcomeApplied
			if next == order.StatusPaid {
				r.notifyPaid(ctx, event.SessionID)
			}
		}
		return result, nil
	}
}

// notifyPaid fires the payment notification. The payment fact is already
// durably recorded at this point, so a notifier failure is logged and
// never rolls anything back.
func (r *Reconciler) notifyPaid(ctx context.Context, sessionID string) {
	o, err := r.store.GetBySessionID(ctx, sessionID)
	if err != nil {
		log.Printf("[Reconciler] Could not load order for paid session %s: %v", sessionID, err)
		return
	}
	if err := r.notifier.NotifyPaid(ctx, o.ID); err != nil {
		log.Printf("[Reconciler] Notifier failed for order %s: %v", o.ID, err)
	}
}
