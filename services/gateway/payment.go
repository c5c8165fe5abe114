package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"campflow/models"

	"go.uber.org/zap"
)

// PaymentGateway initiates hosted payment sessions for created bookings.
type PaymentGateway interface {
	Initiate(ctx context.Context, req models.PaymentRequest) (*models.PaymentSession, error)
}

// HTTPPaymentGateway talks to the payment provider's transactions endpoint.
type HTTPPaymentGateway struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPPaymentGateway returns a client for the payment provider at
// baseURL.
func NewHTTPPaymentGateway(baseURL string, logger *zap.Logger) *HTTPPaymentGateway {
	return &HTTPPaymentGateway{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// Initiate posts the payment request as a transaction and returns the hosted
// payment session. The redirect itself is the caller's side effect.
func (g *HTTPPaymentGateway) Initiate(ctx context.Context, paymentReq models.PaymentRequest) (*models.PaymentSession, error) {
	body, err := json.Marshal(paymentReq)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/transactions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build transaction request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("transaction request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		g.logger.Warn("payment provider rejected transaction",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", raw))
		return nil, fmt.Errorf("payment provider returned status %d", resp.StatusCode)
	}

	var session models.PaymentSession
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, fmt.Errorf("failed to decode transaction response: %w", err)
	}
	return &session, nil
}
