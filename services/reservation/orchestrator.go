package reservation

import (
	"context"
	"fmt"
	"sync"

	"campflow/models"
	"campflow/services/cart"
	"campflow/services/stepper"

	"go.uber.org/zap"
)

// Orchestrator drives one checkout flow over the cart queue: it walks the
// user through every queued item's guided steps, persists form state when the
// active item changes, and hands the finished flow to the submission
// pipeline. One Orchestrator serves one flow; it is safe for concurrent use.
type Orchestrator struct {
	mu        sync.Mutex
	queue     *cart.Queue
	engine    *stepper.Engine
	formCache *FormStateCache
	pipeline  *SubmissionPipeline
	user      *models.UserProfile
	logger    *zap.Logger

	currentIndex int
	form         models.ReservationForm
	submitting   bool
}

// NewOrchestrator wires a flow over the given queue. user may be nil for
// anonymous checkouts.
func NewOrchestrator(queue *cart.Queue, engine *stepper.Engine, formCache *FormStateCache, pipeline *SubmissionPipeline, user *models.UserProfile, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		queue:     queue,
		engine:    engine,
		formCache: formCache,
		pipeline:  pipeline,
		user:      user,
		logger:    logger,
	}
}

// Start binds the flow to the first queued item. An empty queue is not an
// internal failure: the caller redirects the user back to the landing page.
func (o *Orchestrator) Start() error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if o.queue.Len() == 0 {
		return ErrEmptyCart
	}
	o.currentIndex = 0
	return o.initializeForCurrentItemLocked()
}

// initializeForCurrentItemLocked scaffolds the working form for the item at
// the current index, resets the stepper against that item's recorded
// progress, and overlays any saved snapshot wholesale.
func (o *Orchestrator) initializeForCurrentItemLocked() error {
	item, ok := o.queue.ItemAt(o.currentIndex)
	if !ok {
		return ErrEmptyCart
	}

	form, err := scaffoldForm(item)
	if err != nil {
		return err
	}
	o.form = form

	o.engine.SetCurrentCartItem(item.ID)
	o.engine.Reset()
	if o.currentIndex > 0 {
		o.engine.GoToStep(0)
	}

	if snapshot, found := o.formCache.Load(item.ID); found {
		o.form = snapshot.Form
	}
	return nil
}

// scaffoldForm builds the initial form for an item. The reservation
// selection must be coherent before the flow may begin; a bad item surfaces
// as a ScaffoldError rather than a half-initialized form.
func scaffoldForm(item models.CartItem) (models.ReservationForm, error) {
	if _, err := Nights(item.StartDate, item.EndDate); err != nil {
		return models.ReservationForm{}, NewScaffoldError("startDate", err.Error())
	}
	occ := item.Occupants
	if occ.TotalAdult < 0 || occ.TotalSenior < 0 || occ.TotalYouth < 0 || occ.TotalChild < 0 {
		return models.ReservationForm{}, NewScaffoldError("occupants", "occupant counts must not be negative")
	}

	return models.ReservationForm{
		ConfirmDetails: models.ConfirmDetailsForm{
			StartDate: item.StartDate,
			EndDate:   item.EndDate,
			Occupants: occ,
		},
	}, nil
}

// CartItem returns the item the flow is currently editing.
func (o *Orchestrator) CartItem() (models.CartItem, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.queue.ItemAt(o.currentIndex)
}

// CurrentIndex returns the position of the active item in the queue.
func (o *Orchestrator) CurrentIndex() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentIndex
}

// TotalCartItems returns the number of items in the flow's queue.
func (o *Orchestrator) TotalCartItems() int {
	return o.queue.Len()
}

// IsLastCartItem reports whether the active item is the final one.
func (o *Orchestrator) IsLastCartItem() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.currentIndex == o.queue.Len()-1
}

// Form returns the working form for the active item.
func (o *Orchestrator) Form() models.ReservationForm {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.form
}

// Steps returns the stepper's current step descriptors.
func (o *Orchestrator) Steps() []stepper.StepConfig {
	return o.engine.Steps()
}

// CurrentStepIndex returns the stepper's active step.
func (o *Orchestrator) CurrentStepIndex() int {
	return o.engine.CurrentStepIndex()
}

// BookingSummary derives the read-only summary for the active item. It is
// recomputed from the item on every call.
func (o *Orchestrator) BookingSummary() (models.BookingSummary, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	item, ok := o.queue.ItemAt(o.currentIndex)
	if !ok {
		return models.BookingSummary{}, false
	}
	return buildSummary(item), true
}

// ApplyFormValues replaces the working form wholesale. Later writes win.
func (o *Orchestrator) ApplyFormValues(form models.ReservationForm) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.form = form
}

// OnStepValidated records a step's validity as reported by the client.
func (o *Orchestrator) OnStepValidated(stepIndex int, valid bool) {
	o.engine.MarkStepValid(stepIndex, valid)
}

// Next advances the stepper. It reports false when navigation was refused,
// including attempts inside the transition window.
func (o *Orchestrator) Next() bool {
	return o.engine.GoNext()
}

// Previous steps the flow backwards.
func (o *Orchestrator) Previous() bool {
	return o.engine.GoPrevious()
}

// GoToStep jumps directly to a step, unlocking every step up to it.
func (o *Orchestrator) GoToStep(stepIndex int) bool {
	return o.engine.GoToStep(stepIndex)
}

// OnStepCompleted records a finished step: the working form is snapshotted,
// the item's persisted step flag is set, and the stepper's history updated.
// Completing the equipment step decides the flow's direction: the last item
// proceeds to payment, any other item hands the flow to the next one.
func (o *Orchestrator) OnStepCompleted(ctx context.Context, stepIndex int) error {
	o.mu.Lock()

	item, ok := o.queue.ItemAt(o.currentIndex)
	if !ok {
		o.mu.Unlock()
		return ErrEmptyCart
	}
	if stepIndex < 0 || stepIndex >= stepper.StepCount {
		o.mu.Unlock()
		return fmt.Errorf("step index %d out of range", stepIndex)
	}

	o.formCache.Save(item.ID, o.form.Snapshot())
	if stepIndex < stepper.StepPayment {
		if err := o.queue.SetStepCompleted(ctx, item.ID, stepIndex, true); err != nil {
			o.mu.Unlock()
			return err
		}
	}
	o.engine.MarkStepValid(stepIndex, true)
	o.engine.MarkStepCompleted(stepIndex)

	if stepIndex != stepper.StepEquipment {
		o.mu.Unlock()
		return nil
	}

	last := o.currentIndex == o.queue.Len()-1
	if last {
		o.mu.Unlock()
		o.engine.GoNext()
		return nil
	}

	o.currentIndex++
	err := o.initializeForCurrentItemLocked()
	o.mu.Unlock()
	return err
}

// SwitchToItem moves the flow to another queued item. The outgoing item's
// form is snapshotted first so nothing typed so far is lost; the incoming
// item restores its own snapshot if one exists.
func (o *Orchestrator) SwitchToItem(index int) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if index < 0 || index >= o.queue.Len() {
		return fmt.Errorf("cart item index %d out of range", index)
	}
	if index == o.currentIndex {
		return nil
	}

	if item, ok := o.queue.ItemAt(o.currentIndex); ok {
		o.formCache.Save(item.ID, o.form.Snapshot())
	}

	o.currentIndex = index
	return o.initializeForCurrentItemLocked()
}

// RemoveItem drops a queued item from the flow. Its saved form snapshot
// goes with it; a form for an item that no longer exists must never be
// restored. Removing the active item rebinds the flow to the item now at
// the same position, or the previous one when the tail was removed.
func (o *Orchestrator) RemoveItem(ctx context.Context, itemID string) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	if !o.queue.Remove(ctx, itemID) {
		return cart.ErrItemNotFound
	}
	o.formCache.Purge(itemID)

	if o.queue.Len() == 0 {
		return ErrEmptyCart
	}
	if o.currentIndex >= o.queue.Len() {
		o.currentIndex = o.queue.Len() - 1
	}
	return o.initializeForCurrentItemLocked()
}

// CompleteReservation submits the flow from the payment step of the last
// queued item. Reaching it any other way is refused: a direct jump can
// unlock the payment step on an earlier item, and submitting from there
// would tear down a queue that still holds unbooked items.
func (o *Orchestrator) CompleteReservation(ctx context.Context) (*SubmissionResult, error) {
	o.mu.Lock()
	last := o.currentIndex == o.queue.Len()-1
	o.mu.Unlock()

	if !last || o.engine.CurrentStepIndex() != stepper.StepPayment {
		return nil, ErrSubmitUnavailable
	}
	return o.Submit(ctx)
}

// Submit runs the booking and payment calls for the active item. A second
// submission while one is in flight is refused outright. On failure the
// queue and saved forms are left untouched so the user can retry; on success
// the flow's state is cleared and the caller redirects to the returned
// transaction URL.
func (o *Orchestrator) Submit(ctx context.Context) (*SubmissionResult, error) {
	o.mu.Lock()
	if o.submitting {
		o.mu.Unlock()
		return nil, ErrSubmissionInProgress
	}
	item, ok := o.queue.ItemAt(o.currentIndex)
	if !ok {
		o.mu.Unlock()
		return nil, ErrEmptyCart
	}
	o.submitting = true
	snapshot := o.form.Snapshot()
	o.formCache.Save(item.ID, snapshot)
	capturedID := item.ID
	o.mu.Unlock()

	result, err := o.pipeline.Submit(ctx, item, snapshot, o.user)

	o.mu.Lock()
	defer o.mu.Unlock()
	o.submitting = false

	if err != nil {
		return nil, err
	}

	// The active item may have changed while the submission was in flight.
	// A stale result never mutates the flow it no longer belongs to.
	current, ok := o.queue.ItemAt(o.currentIndex)
	if !ok || current.ID != capturedID {
		o.logger.Warn("discarding flow cleanup for stale submission result",
			zap.String("submittedItemId", capturedID))
		return result, nil
	}

	o.engine.MarkCartItemComplete(capturedID)
	o.queue.Clear(ctx)
	o.formCache.Clear()
	return result, nil
}

// Submitting reports whether a submission is currently in flight.
func (o *Orchestrator) Submitting() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.submitting
}
