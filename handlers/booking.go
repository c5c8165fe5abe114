package handlers

import (
	"errors"
	"net/http"

	"campflow/database/repository/bookingrec"
	"campflow/middleware"
	"campflow/models"
	"campflow/services/reservation"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ListBookings returns the caller's submitted bookings, newest first.
func ListBookings(repo bookingrec.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := middleware.UserFromContext(c)
		if profile == nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
			return
		}

		records, err := repo.GetByUser(c.Request.Context(), profile.Sub)
		if err != nil {
			getLogger(c).Error("failed to list bookings", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list bookings"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookings": records})
	}
}

// getOwnedBooking fetches a booking and verifies the caller owns it.
func getOwnedBooking(c *gin.Context, repo bookingrec.Repository) (*models.BookingRecord, bool) {
	profile := middleware.UserFromContext(c)
	if profile == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Insufficient authorization"})
		return nil, false
	}

	record, err := repo.GetByGlobalID(c.Request.Context(), c.Param("globalId"))
	if err != nil {
		if errors.Is(err, bookingrec.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
			return nil, false
		}
		getLogger(c).Error("failed to fetch booking", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch booking"})
		return nil, false
	}
	if record.UserSub != profile.Sub {
		c.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
		return nil, false
	}
	return record, true
}

// GetBooking returns one booking by its global id.
func GetBooking(repo bookingrec.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, ok := getOwnedBooking(c, repo)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, record)
	}
}

// CancelBooking flips a booking to cancelled.
func CancelBooking(repo bookingrec.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, ok := getOwnedBooking(c, repo)
		if !ok {
			return
		}
		if record.Status == models.BookingStatusCancelled {
			c.JSON(http.StatusOK, gin.H{"bookingStatus": record.Status})
			return
		}

		if err := repo.UpdateStatus(c.Request.Context(), record.GlobalID, models.BookingStatusCancelled); err != nil {
			getLogger(c).Error("failed to cancel booking", zap.Error(err))
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to cancel booking"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"bookingStatus": models.BookingStatusCancelled})
	}
}

// RetryPayment re-opens a payment session for a booking still awaiting
// payment.
func RetryPayment(repo bookingrec.Repository, pipeline *reservation.SubmissionPipeline) gin.HandlerFunc {
	return func(c *gin.Context) {
		record, ok := getOwnedBooking(c, repo)
		if !ok {
			return
		}

		result, err := pipeline.RetryPayment(c.Request.Context(), *record)
		if err != nil {
			var subErr *reservation.SubmissionError
			if errors.As(err, &subErr) {
				c.JSON(http.StatusConflict, gin.H{"error": subErr.Message, "stage": subErr.Stage})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, result)
	}
}
