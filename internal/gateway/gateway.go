// Package gateway adapts the external payment provider. The provider is
// an opaque service: checkout initiation is a blocking HTTP call with a
// bounded timeout, payment results arrive later as callbacks.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Statuses reported by the provider.
const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// CheckoutRequest is the initiation payload. CorrelationID is a
// temporary id minted by the caller; no order exists yet at this point.
type CheckoutRequest struct {
	CorrelationID uuid.UUID      `json:"correlationId"`
	BuyerEmail    string         `json:"buyerEmail"`
	Total         int64          `json:"total"`
	Items         []CheckoutItem `json:"items"`
	CallbackURL   string         `json:"callbackUrl"`
}

// CheckoutItem is one priced basket line sent to the provider.
type CheckoutItem struct {
	Title     string `json:"title"`
	UnitPrice int64  `json:"unitPrice"`
	Quantity  int    `json:"quantity"`
}

// CheckoutSession is the provider's acceptance of an initiation request.
type CheckoutSession struct {
	Status      string `json:"status"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirectUrl"`
}

// CallbackResult is the payload the provider delivers when a payment
// attempt finishes. Deliveries may repeat and may race user-initiated
// cancellations.
type CallbackResult struct {
	Status    string `json:"status"`
	PaymentID string `json:"paymentId"`
	Token     string `json:"token"`
}

// Succeeded reports whether the callback carries a successful payment.
func (r CallbackResult) Succeeded() bool {
	return r.Status == StatusSuccess
}

// Gateway is the payment provider interface consumed by the order
// engine.
type Gateway interface {
	// InitiateCheckout asks the provider to open a payment session.
	InitiateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error)

	// Refund asks the provider to return a completed payment.
	Refund(ctx context.Context, paymentReference string) error
}

// httpGateway talks JSON over HTTP to the provider.
type httpGateway struct {
	baseURL string
	client  *http.Client
	logger  zerolog.Logger
}

// New creates an HTTP-backed gateway adapter with a bounded per-call
// timeout. No database lock may be held while its calls are in flight.
func New(baseURL string, timeout time.Duration, logger zerolog.Logger) Gateway {
	return &httpGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		logger:  logger.With().Str("component", "payment-gateway").Logger(),
	}
}

// InitiateCheckout posts the basket to the provider's checkout endpoint.
func (g *httpGateway) InitiateCheckout(ctx context.Context, req CheckoutRequest) (*CheckoutSession, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to encode checkout request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/checkout", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build checkout request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Error().
			Err(err).
			Str("correlation_id", req.CorrelationID.String()).
			Msg("checkout initiation failed")
		return nil, fmt.Errorf("gateway checkout request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn().
			Int("status", resp.StatusCode).
			Str("correlation_id", req.CorrelationID.String()).
			Msg("gateway returned non-OK status")
		return nil, fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	var session CheckoutSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode gateway response: %w", err)
	}

	g.logger.Debug().
		Str("correlation_id", req.CorrelationID.String()).
		Str("gateway_status", session.Status).
		Msg("checkout session created")

	return &session, nil
}

// Refund posts a refund request for the given payment reference.
func (g *httpGateway) Refund(ctx context.Context, paymentReference string) error {
	body, err := json.Marshal(map[string]string{"token": paymentReference})
	if err != nil {
		return fmt.Errorf("failed to encode refund request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/refund", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to build refund request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(httpReq)
	if err != nil {
		g.logger.Error().Err(err).Msg("refund request failed")
		return fmt.Errorf("gateway refund request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		g.logger.Warn().Int("status", resp.StatusCode).Msg("gateway rejected refund")
		return fmt.Errorf("gateway returned status %d", resp.StatusCode)
	}

	return nil
}
