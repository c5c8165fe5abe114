package handlers

import (
	"errors"
	"net/http"

	"campflow/middleware"
	"campflow/models"
	"campflow/services/cart"
	"campflow/services/reservation"
	"campflow/services/stepper"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// flowState is the serialized view of a flow returned to the client after
// every mutation.
type flowState struct {
	CurrentIndex   int                    `json:"currentCartItemIndex"`
	TotalCartItems int                    `json:"totalCartItems"`
	IsLastCartItem bool                   `json:"isLastCartItem"`
	CurrentStep    int                    `json:"currentStepIndex"`
	Steps          []stepper.StepConfig   `json:"steps"`
	Item           *models.CartItem       `json:"cartItem,omitempty"`
	Form           models.ReservationForm `json:"form"`
	Summary        *models.BookingSummary `json:"bookingSummary,omitempty"`
}

func snapshotFlow(orch *reservation.Orchestrator) flowState {
	state := flowState{
		CurrentIndex:   orch.CurrentIndex(),
		TotalCartItems: orch.TotalCartItems(),
		IsLastCartItem: orch.IsLastCartItem(),
		CurrentStep:    orch.CurrentStepIndex(),
		Steps:          orch.Steps(),
		Form:           orch.Form(),
	}
	if item, ok := orch.CartItem(); ok {
		state.Item = &item
	}
	if summary, ok := orch.BookingSummary(); ok {
		state.Summary = &summary
	}
	return state
}

func flowFromRequest(c *gin.Context, flows *reservation.FlowManager) (*reservation.Orchestrator, bool) {
	orch, err := flows.Get(c.Param("flowId"))
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "checkout flow not found"})
		return nil, false
	}
	return orch, true
}

// StartFlow opens a checkout flow over the caller's cart. An empty cart is
// answered with a redirect target rather than an error.
func StartFlow(store cart.Store, flows *reservation.FlowManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		queue, ok := ownerQueue(c, store)
		if !ok {
			return
		}

		id, orch, err := flows.Start(queue, middleware.UserFromContext(c))
		if err != nil {
			if errors.Is(err, reservation.ErrEmptyCart) {
				c.JSON(http.StatusOK, gin.H{"redirect": "/"})
				return
			}
			var scaffoldErr *reservation.ScaffoldError
			if errors.As(err, &scaffoldErr) {
				c.JSON(http.StatusUnprocessableEntity, gin.H{
					"error": "cart item cannot start a reservation",
					"field": scaffoldErr.Field, "details": scaffoldErr.Message,
				})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}

		c.JSON(http.StatusCreated, gin.H{"flowId": id, "flow": snapshotFlow(orch)})
	}
}

// GetFlow returns the flow's current state.
func GetFlow(flows *reservation.FlowManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch, ok := flowFromRequest(c, flows)
		if !ok {
			return
		}
		c.JSON(http.StatusOK, gin.H{"flow": snapshotFlow(orch)})
	}
}

// StepValidated records the client-reported validity of a step.
func StepValidated(flows *reservation.FlowManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch, ok := flowFromRequest(c, flows)
		if !ok {
			return
		}

		var input struct {
			StepIndex int  `json:"stepIndex"`
			IsValid   bool `json:"isValid"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		orch.OnStepValidated(input.StepIndex, input.IsValid)
		c.JSON(http.StatusOK, gin.H{"flow": snapshotFlow(orch)})
	}
}

// StepCompleted records a finished step. Completing the equipment step may
// advance the flow to the next item or to payment.
func StepCompleted(flows *reservation.FlowManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch, ok := flowFromRequest(c, flows)
		if !ok {
			return
		}

		var input struct {
			StepIndex int `json:"stepIndex"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		if err := orch.OnStepCompleted(c.Request.Context(), input.StepIndex); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"flow": snapshotFlow(orch)})
	}
}

// NextStep advances the stepper. A refused transition, including one inside
// the debounce window, is reported rather than queued.
func NextStep(flows *reservation.FlowManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch, ok := flowFromRequest(c, flows)
		if !ok {
			return
		}
		moved := orch.Next()
		c.JSON(http.StatusOK, gin.H{"moved": moved, "flow": snapshotFlow(orch)})
	}
}

// PreviousStep steps the flow backwards.
func PreviousStep(flows *reservation.FlowManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch, ok := flowFromRequest(c, flows)
		if !ok {
			return
		}
		moved := orch.Previous()
		c.JSON(http.StatusOK, gin.H{"moved": moved, "flow": snapshotFlow(orch)})
	}
}

// GoToStep jumps directly to a step.
func GoToStep(flows *reservation.FlowManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch, ok := flowFromRequest(c, flows)
		if !ok {
			return
		}

		var input struct {
			StepIndex int `json:"stepIndex"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		moved := orch.GoToStep(input.StepIndex)
		c.JSON(http.StatusOK, gin.H{"moved": moved, "flow": snapshotFlow(orch)})
	}
}

// SwitchItem moves the flow to another queued item.
func SwitchItem(flows *reservation.FlowManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch, ok := flowFromRequest(c, flows)
		if !ok {
			return
		}

		var input struct {
			Index int `json:"index"`
		}
		if err := c.ShouldBindJSON(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		if err := orch.SwitchToItem(input.Index); err != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"flow": snapshotFlow(orch)})
	}
}

// RemoveFlowItem drops an item from the flow's queue along with its saved
// form. An emptied flow tells the client to leave checkout.
func RemoveFlowItem(flows *reservation.FlowManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch, ok := flowFromRequest(c, flows)
		if !ok {
			return
		}

		err := orch.RemoveItem(c.Request.Context(), c.Param("itemId"))
		if err != nil {
			if errors.Is(err, reservation.ErrEmptyCart) {
				flows.End(c.Param("flowId"))
				c.JSON(http.StatusOK, gin.H{"redirect": "/"})
				return
			}
			if errors.Is(err, cart.ErrItemNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"error": "cart item not found"})
				return
			}
			c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"flow": snapshotFlow(orch)})
	}
}

// ApplyForm replaces the flow's working form values wholesale.
func ApplyForm(flows *reservation.FlowManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch, ok := flowFromRequest(c, flows)
		if !ok {
			return
		}

		var form models.ReservationForm
		if err := c.ShouldBindJSON(&form); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid input", "details": err.Error()})
			return
		}

		orch.ApplyFormValues(form)
		c.JSON(http.StatusOK, gin.H{"flow": snapshotFlow(orch)})
	}
}

// SubmitFlow runs the booking and payment pipeline for the active item and
// returns the hosted payment redirect. The flow survives a failed attempt.
func SubmitFlow(flows *reservation.FlowManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		orch, ok := flowFromRequest(c, flows)
		if !ok {
			return
		}

		result, err := orch.CompleteReservation(c.Request.Context())
		if err != nil {
			switch {
			case errors.Is(err, reservation.ErrSubmissionInProgress):
				c.JSON(http.StatusConflict, gin.H{"error": "a submission is already in flight"})
			case errors.Is(err, reservation.ErrSubmitUnavailable):
				c.JSON(http.StatusConflict, gin.H{"error": "the flow is not at the payment step"})
			case errors.Is(err, reservation.ErrEmptyCart):
				c.JSON(http.StatusOK, gin.H{"redirect": "/"})
			default:
				var subErr *reservation.SubmissionError
				if errors.As(err, &subErr) {
					getLogger(c).Warn("reservation submission failed",
						zap.String("stage", subErr.Stage), zap.Error(err))
					c.JSON(http.StatusBadGateway, gin.H{
						"error": subErr.Message, "stage": subErr.Stage, "retryable": true,
					})
					return
				}
				c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			}
			return
		}

		flows.End(c.Param("flowId"))
		c.JSON(http.StatusOK, result)
	}
}
