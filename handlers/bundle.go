// File: campflow/handlers/bundle.go
package handlers

import (
	"campflow/database/repository/bookingrec"
	"campflow/services/cart"
	"campflow/services/reservation"

	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	CartStore   cart.Store
	Flows       *reservation.FlowManager
	BookingRepo bookingrec.Repository
	Pipeline    *reservation.SubmissionPipeline

	// Cart endpoints
	AddCartItemHandler    gin.HandlerFunc
	ListCartItemsHandler  gin.HandlerFunc
	UpdateCartItemHandler gin.HandlerFunc
	RemoveCartItemHandler gin.HandlerFunc

	// Flow endpoints
	StartFlowHandler      gin.HandlerFunc
	GetFlowHandler        gin.HandlerFunc
	StepValidatedHandler  gin.HandlerFunc
	StepCompletedHandler  gin.HandlerFunc
	NextStepHandler       gin.HandlerFunc
	PreviousStepHandler   gin.HandlerFunc
	GoToStepHandler       gin.HandlerFunc
	SwitchItemHandler     gin.HandlerFunc
	RemoveFlowItemHandler gin.HandlerFunc
	ApplyFormHandler      gin.HandlerFunc
	SubmitFlowHandler     gin.HandlerFunc

	// Booking record endpoints
	ListBookingsHandler  gin.HandlerFunc
	GetBookingHandler    gin.HandlerFunc
	CancelBookingHandler gin.HandlerFunc
	RetryPaymentHandler  gin.HandlerFunc

	// Catalogue endpoints
	AccessPointsHandler gin.HandlerFunc

	// Health
	HealthHandler gin.HandlerFunc
}
