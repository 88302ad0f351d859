package api

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/example/checkout/internal/checkout"
	"github.com/example/checkout/internal/domain/order"
	"github.com/example/checkout/internal/gateway"
	"github.com/example/checkout/internal/query"
	"github.com/example/checkout/internal/reconcile"
)

// maxWebhookBody caps webhook payloads; the gateway sends small JSON
// documents.
const maxWebhookBody = 64 * 1024

type Handlers struct {
	checkout   *checkout.Service
	reconciler *reconcile.Reconciler
	query      *query.Handler
}

func NewHandlers(checkoutSvc *checkout.Service, reconciler *reconcile.Reconciler, queryHandler *query.Handler) *Handlers {
	return &Handlers{
		checkout:   checkoutSvc,
		reconciler: reconciler,
		query:      queryHandler,
	}
}

// CreateCheckoutSession handles POST /checkout/sessions
func (h *Handlers) CreateCheckoutSession(w http.ResponseWriter, r *http.Request) {
	var cart checkout.Cart
	if err := json.NewDecoder(r.Body).Decode(&cart); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	session, err := h.checkout.CreateSession(r.Context(), cart)
	if err != nil {
		switch {
		case errors.Is(err, order.ErrEmptyCart), errors.Is(err, order.ErrInvalidAmount):
			respondJSONError(w, err.Error(), http.StatusBadRequest)
		case errors.Is(err, gateway.ErrGateway):
			respondJSONError(w, err.Error(), http.StatusBadGateway)
		default:
			respondJSONError(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

// GatewayWebhook handles POST /webhooks/gateway.
//
// Both a freshly applied event and an already-processed one get a 2xx,
// so the gateway stops redelivering. Failure codes are reserved for
// deliveries the gateway may legitimately retry differently: bad
// signature or payload (400), unknown session (404), transient store
// trouble (500).
func (h *Handlers) GatewayWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondJSONError(w, "could not read payload", http.StatusBadRequest)
		return
	}

	result, err := h.reconciler.Reconcile(r.Context(), payload, r.Header.Get("Gateway-Signature"))
	if err != nil {
		switch {
		case errors.Is(err, gateway.ErrInvalidSignature):
			respondJSONError(w, "invalid signature", http.StatusBadRequest)
		case errors.Is(err, gateway.ErrMalformedEvent):
			respondJSONError(w, "malformed event", http.StatusBadRequest)
		case errors.Is(err, reconcile.ErrUnknownSession):
			respondJSONError(w, "unknown session", http.StatusNotFound)
		default:
			respondJSONError(w, "internal error", http.StatusInternalServerError)
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "success",
		"outcome": string(result.Outcome),
	})
}

// GetOrderStatus handles GET /orders/status?session_id=...|order_id=...
func (h *Handlers) GetOrderStatus(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session_id")
	orderID := r.URL.Query().Get("order_id")
	if sessionID == "" && orderID == "" {
		respondJSONError(w, "session_id or order_id required", http.StatusBadRequest)
		return
	}

	var (
		view *query.StatusView
		err  error
	)
	if sessionID != "" {
		view, err = h.query.GetStatusBySession(r.Context(), sessionID)
	} else {
		view, err = h.query.GetStatusByOrder(r.Context(), orderID)
	}
	if err != nil {
		if errors.Is(err, order.ErrOrderNotFound) {
			respondJSONError(w, "order not found", http.StatusNotFound)
			return
		}
		respondJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// ListOrders handles GET /admin/orders?status=...
func (h *Handlers) ListOrders(w http.ResponseWriter, r *http.Request) {
	status := order.Status(r.URL.Query().Get("status"))
	orders, err := h.query.ListOrders(r.Context(), status)
	if err != nil {
		respondJSONError(w, "internal error", http.StatusInternalServerError)
		return
	}
	if orders == nil {
		orders = []*order.Order{}
	}
	respondJSON(w, http.StatusOK, orders)
}

// Helper functions

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}
