package bookingrec

import (
	"context"
	"errors"

	"campflow/models"
)

// ErrNotFound reports a lookup for a booking record that does not exist.
var ErrNotFound = errors.New("booking record not found")

// Repository stores submitted booking records for the my-bookings surface.
type Repository interface {
	Insert(ctx context.Context, record *models.BookingRecord) error
	GetByGlobalID(ctx context.Context, globalID string) (*models.BookingRecord, error)
	GetByUser(ctx context.Context, userSub string) ([]models.BookingRecord, error)
	UpdateStatus(ctx context.Context, globalID, status string) error
}
