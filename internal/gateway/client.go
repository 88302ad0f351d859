package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/example/checkout/internal/domain/order"
)

var ErrGateway = errors.New("payment gateway error")

// Client creates hosted checkout sessions at the external payment
// gateway. Implementations must respect ctx cancellation; callers bound
// every gateway call with a timeout.
type Client interface {
	CreateCheckoutSession(ctx context.Context, items []order.LineItem, successURL, cancelURL string) (sessionID, checkoutURL string, err error)
}

// HTTPClient talks to the gateway's REST API with a secret bearer key.
type HTTPClient struct {
	baseURL    string
	secretKey  string
	httpClient *http.Client
}

func NewHTTPClient(baseURL, secretKey string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// CreateCheckoutSession posts the line items to the gateway and returns
// the session identifier and the hosted checkout URL.
func (c *HTTPClient) CreateCheckoutSession(ctx context.Context, items []order.LineItem, successURL, cancelURL string) (string, string, error) {
	form := url.Values{}
	form.Set("mode", "payment")
	form.Set("success_url", successURL)
	form.Set("cancel_url", cancelURL)
	for i, item := range items {
		prefix := "line_items[" + strconv.Itoa(i) + "]"
		form.Set(prefix+"[name]", item.Name)
		form.Set(prefix+"[unit_amount]", strconv.Itoa(item.Price))
		form.Set(prefix+"[quantity]", strconv.Itoa(item.Quantity))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/checkout/sessions", strings.NewReader(form.Encode()))
	if err != nil {
		return "", "", err
	}
	req.Header.Set("Authorization", "Bearer "+c.secretKey)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", ErrGateway, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", "", fmt.Errorf("%w: gateway returned %d", ErrGateway, resp.StatusCode)
	}

	var session struct {
		ID  string `json:"id"`
		URL string `json:"url"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", "", fmt.Errorf("%w: decoding session response: %v", ErrGateway, err)
	}
	if session.ID == "" || session.URL == "" {
		return "", "", fmt.Errorf("%w: session response missing id or url", ErrGateway)
	}
	return session.ID, session.URL, nil
}
