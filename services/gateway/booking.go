package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"campflow/models"

	"go.uber.org/zap"
)

// BookingAPI creates bookings against the reservation backend.
type BookingAPI interface {
	CreateBooking(ctx context.Context, payload models.BookingPayload, collectionID, activityType, activityID, startDate string) (*models.BookingResult, error)
}

// HTTPBookingAPI talks to the bookings backend over HTTP.
type HTTPBookingAPI struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPBookingAPI returns a client for the bookings backend at baseURL.
func NewHTTPBookingAPI(baseURL string, logger *zap.Logger) *HTTPBookingAPI {
	return &HTTPBookingAPI{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 15 * time.Second},
		logger:  logger,
	}
}

// createBookingResponse mirrors the backend's response envelope.
type createBookingResponse struct {
	Booking []struct {
		Data models.BookingResult `json:"data"`
	} `json:"booking"`
}

// CreateBooking posts the payload to the bookings endpoint. The activity
// coordinates ride along as query parameters, matching the backend contract.
func (a *HTTPBookingAPI) CreateBooking(ctx context.Context, payload models.BookingPayload, collectionID, activityType, activityID, startDate string) (*models.BookingResult, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal booking payload: %w", err)
	}

	query := url.Values{}
	query.Set("collectionId", collectionID)
	query.Set("activityType", activityType)
	query.Set("activityId", activityID)
	query.Set("startDate", startDate)
	endpoint := fmt.Sprintf("%s/bookings?%s", a.baseURL, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to build booking request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("booking request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		a.logger.Warn("bookings backend rejected request",
			zap.Int("status", resp.StatusCode), zap.ByteString("body", raw))
		return nil, fmt.Errorf("bookings backend returned status %d", resp.StatusCode)
	}

	var decoded createBookingResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("failed to decode booking response: %w", err)
	}
	if len(decoded.Booking) == 0 {
		return nil, fmt.Errorf("bookings backend returned an empty booking set")
	}
	result := decoded.Booking[0].Data
	return &result, nil
}
