package reservation

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"campflow/models"
	"campflow/services/cart"
	"campflow/services/stepper"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type stubBookingAPI struct {
	mu          sync.Mutex
	result      models.BookingResult
	err         error
	calls       int
	lastPayload models.BookingPayload
}

func (s *stubBookingAPI) CreateBooking(_ context.Context, payload models.BookingPayload, _, _, _, _ string) (*models.BookingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.lastPayload = payload
	if s.err != nil {
		return nil, s.err
	}
	result := s.result
	return &result, nil
}

type stubPaymentGateway struct {
	mu      sync.Mutex
	session models.PaymentSession
	err     error
	calls   int
	block   chan struct{}
}

func (s *stubPaymentGateway) Initiate(_ context.Context, _ models.PaymentRequest) (*models.PaymentSession, error) {
	s.mu.Lock()
	block := s.block
	s.calls++
	s.mu.Unlock()
	if block != nil {
		<-block
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	session := s.session
	return &session, nil
}

func flowItem(park string) models.CartItem {
	return models.CartItem{
		GeoZoneName:  park,
		ActivityID:   "66",
		ActivityName: "Backcountry Camping",
		CollectionID: "col-1",
		ActivityType: "campsite",
		StartDate:    "2025-06-09",
		EndDate:      "2025-06-14",
		Occupants:    models.Occupants{TotalAdult: 2, TotalChild: 1},
		TotalPrice:   150,
	}
}

type flowFixture struct {
	orch      *Orchestrator
	queue     *cart.Queue
	clock     *fakeClock
	forms     *FormStateCache
	booking   *stubBookingAPI
	payments  *stubPaymentGateway
	cartItems []models.CartItem
}

func newFlowFixture(t *testing.T, items ...models.CartItem) *flowFixture {
	t.Helper()
	ctx := context.Background()
	logger := zap.NewNop()
	queue := cart.NewQueue(ctx, cart.NewMemoryStore(), "cart:test", logger)

	added := make([]models.CartItem, 0, len(items))
	for _, item := range items {
		added = append(added, queue.Add(ctx, item))
	}

	clock := &fakeClock{now: time.Unix(1700000000, 0)}
	booking := &stubBookingAPI{result: models.BookingResult{GlobalID: "GB-1", SessionID: "S-1"}}
	payments := &stubPaymentGateway{session: models.PaymentSession{TransactionURL: "https://pay.example/t/1"}}
	pipeline := NewSubmissionPipeline(booking, payments, nil, nil, logger)

	forms := NewFormStateCache()
	engine := stepper.NewEngineWithClock(logger, clock)
	orch := NewOrchestrator(queue, engine, forms, pipeline, nil, logger)

	return &flowFixture{
		orch:      orch,
		queue:     queue,
		clock:     clock,
		forms:     forms,
		booking:   booking,
		payments:  payments,
		cartItems: added,
	}
}

// completeStep validates and completes a step, then advances past it the way
// the presentation layer does for the data-collection steps.
func (f *flowFixture) completeStep(t *testing.T, stepIndex int) {
	t.Helper()
	f.clock.advance(60 * time.Millisecond)
	f.orch.OnStepValidated(stepIndex, true)
	require.NoError(t, f.orch.OnStepCompleted(context.Background(), stepIndex))
	if stepIndex < stepper.StepEquipment {
		require.True(t, f.orch.Next())
	}
}

func TestStartEmptyCartReturnsRedirectCase(t *testing.T) {
	f := newFlowFixture(t)
	err := f.orch.Start()
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestStartScaffoldsFormFromItem(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	require.NoError(t, f.orch.Start())

	form := f.orch.Form()
	assert.Equal(t, "2025-06-09", form.ConfirmDetails.StartDate)
	assert.Equal(t, "2025-06-14", form.ConfirmDetails.EndDate)
	assert.Equal(t, 2, form.ConfirmDetails.Occupants.TotalAdult)
	assert.Equal(t, 0, f.orch.CurrentStepIndex())
}

func TestStartRejectsIncoherentItem(t *testing.T) {
	bad := flowItem("Garibaldi")
	bad.EndDate = "2025-06-01"
	f := newFlowFixture(t, bad)

	err := f.orch.Start()
	var scaffoldErr *ScaffoldError
	require.ErrorAs(t, err, &scaffoldErr)
	assert.Equal(t, "startDate", scaffoldErr.Field)
}

func TestSingleItemFlowReachesPayment(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	require.NoError(t, f.orch.Start())

	for step := stepper.StepConfirmDetails; step <= stepper.StepEquipment; step++ {
		f.completeStep(t, step)
	}

	assert.Equal(t, stepper.StepPayment, f.orch.CurrentStepIndex())
	assert.True(t, f.orch.IsLastCartItem())

	item, ok := f.orch.CartItem()
	require.True(t, ok)
	assert.True(t, item.Step1Completed)
	assert.True(t, item.Step4Completed)
	assert.True(t, item.AreAllStepsCompleted)
}

func TestEquipmentCompletionHandsFlowToNextItem(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"), flowItem("Strathcona"))
	require.NoError(t, f.orch.Start())

	for step := stepper.StepConfirmDetails; step <= stepper.StepEquipment; step++ {
		f.completeStep(t, step)
	}

	assert.Equal(t, 1, f.orch.CurrentIndex())
	assert.Equal(t, 0, f.orch.CurrentStepIndex())

	item, ok := f.orch.CartItem()
	require.True(t, ok)
	assert.Equal(t, "Strathcona", item.GeoZoneName)

	first, ok := f.queue.ItemAt(0)
	require.True(t, ok)
	assert.True(t, first.AreAllStepsCompleted)
}

func TestSwitchToItemRestoresSavedForm(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"), flowItem("Strathcona"))
	require.NoError(t, f.orch.Start())

	form := f.orch.Form()
	form.CampingParty.PrimaryOccupant.FirstName = "Robin"
	form.Equipment.LicensePlate = "ABC123"
	f.orch.ApplyFormValues(form)

	require.NoError(t, f.orch.SwitchToItem(1))
	assert.Empty(t, f.orch.Form().CampingParty.PrimaryOccupant.FirstName)

	f.clock.advance(60 * time.Millisecond)
	require.NoError(t, f.orch.SwitchToItem(0))
	restored := f.orch.Form()
	assert.Equal(t, "Robin", restored.CampingParty.PrimaryOccupant.FirstName)
	assert.Equal(t, "ABC123", restored.Equipment.LicensePlate)
	assert.Equal(t, 0, f.orch.CurrentStepIndex())
}

func TestSwitchToItemBounds(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	require.NoError(t, f.orch.Start())

	assert.Error(t, f.orch.SwitchToItem(-1))
	assert.Error(t, f.orch.SwitchToItem(5))
	assert.NoError(t, f.orch.SwitchToItem(0))
}

func TestBookingSummaryDerivation(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	require.NoError(t, f.orch.Start())

	summary, ok := f.orch.BookingSummary()
	require.True(t, ok)
	assert.Equal(t, "Garibaldi", summary.ParkName)
	assert.Equal(t, "Backcountry Camping", summary.ActivityName)
	assert.Equal(t, 5, summary.NumberOfNights)
	assert.Equal(t, 3, summary.NumberOfOccupants)
	assert.Equal(t, 150.0, summary.Total)
}

func TestBookingSummaryFallbacks(t *testing.T) {
	item := flowItem("")
	item.ActivityName = ""
	f := newFlowFixture(t, item)
	require.NoError(t, f.orch.Start())

	summary, ok := f.orch.BookingSummary()
	require.True(t, ok)
	assert.Equal(t, "Unknown Park", summary.ParkName)
	assert.Equal(t, "Unknown Activity", summary.ActivityName)
}

func TestCompleteReservationRefusedOnNonLastItem(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"), flowItem("Strathcona"))
	require.NoError(t, f.orch.Start())

	// A direct jump unlocks the payment step without completing anything,
	// so the step check alone would let item 0 submit and clear the queue
	// with item 1 never booked.
	f.clock.advance(60 * time.Millisecond)
	require.True(t, f.orch.GoToStep(stepper.StepPayment))
	require.Equal(t, stepper.StepPayment, f.orch.CurrentStepIndex())

	_, err := f.orch.CompleteReservation(context.Background())
	assert.ErrorIs(t, err, ErrSubmitUnavailable)
	assert.Equal(t, 0, f.booking.calls)
	assert.Equal(t, 2, f.queue.Len())
}

func TestCompleteReservationAcceptedOnLastItemPaymentStep(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"), flowItem("Strathcona"))
	require.NoError(t, f.orch.Start())

	require.NoError(t, f.orch.SwitchToItem(1))
	f.clock.advance(60 * time.Millisecond)
	require.True(t, f.orch.GoToStep(stepper.StepPayment))

	result, err := f.orch.CompleteReservation(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GB-1", result.BookingID)
}

func TestCompleteReservationRefusedOffPaymentStep(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	require.NoError(t, f.orch.Start())

	_, err := f.orch.CompleteReservation(context.Background())
	assert.ErrorIs(t, err, ErrSubmitUnavailable)
}

func TestSubmitSuccessClearsFlowState(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	require.NoError(t, f.orch.Start())

	result, err := f.orch.Submit(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GB-1", result.BookingID)
	assert.Equal(t, "S-1", result.SessionID)
	assert.Equal(t, "https://pay.example/t/1", result.TransactionURL)

	assert.Equal(t, 0, f.queue.Len())
	assert.Equal(t, 0, f.forms.Len())
}

func TestSubmitBookingFailurePreservesQueue(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	f.booking.err = errors.New("upstream 502")
	require.NoError(t, f.orch.Start())

	_, err := f.orch.Submit(context.Background())
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, StageBooking, subErr.Stage)
	assert.Equal(t, 1, f.queue.Len())
	assert.Equal(t, 0, f.payments.calls)
}

func TestSubmitMissingSessionIDIsBookingFailure(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	f.booking.result = models.BookingResult{GlobalID: "GB-1"}
	require.NoError(t, f.orch.Start())

	_, err := f.orch.Submit(context.Background())
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, StageBooking, subErr.Stage)
	assert.Equal(t, 1, f.queue.Len())
	assert.Equal(t, 0, f.payments.calls)
}

func TestSubmitPaymentFailurePreservesQueue(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	f.payments.err = errors.New("provider down")
	require.NoError(t, f.orch.Start())

	_, err := f.orch.Submit(context.Background())
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, StagePayment, subErr.Stage)
	assert.Equal(t, 1, f.queue.Len())
	assert.Equal(t, 1, f.booking.calls)
}

func TestSubmitMissingTransactionURLIsPaymentFailure(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	f.payments.session = models.PaymentSession{}
	require.NoError(t, f.orch.Start())

	_, err := f.orch.Submit(context.Background())
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, StagePayment, subErr.Stage)
	assert.Equal(t, 1, f.queue.Len())
}

func TestSubmitRefusedWhileInFlight(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	f.payments.block = make(chan struct{})
	require.NoError(t, f.orch.Start())

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := f.orch.Submit(context.Background())
		assert.NoError(t, err)
	}()

	require.Eventually(t, f.orch.Submitting, time.Second, time.Millisecond)

	_, err := f.orch.Submit(context.Background())
	assert.ErrorIs(t, err, ErrSubmissionInProgress)

	close(f.payments.block)
	<-done
	assert.False(t, f.orch.Submitting())
}

func TestStaleSubmissionResultSkipsCleanup(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"), flowItem("Strathcona"))
	f.payments.block = make(chan struct{})
	require.NoError(t, f.orch.Start())

	done := make(chan struct{})
	go func() {
		defer close(done)
		result, err := f.orch.Submit(context.Background())
		assert.NoError(t, err)
		assert.NotNil(t, result)
	}()

	require.Eventually(t, f.orch.Submitting, time.Second, time.Millisecond)
	require.NoError(t, f.orch.SwitchToItem(1))

	close(f.payments.block)
	<-done

	// The flow moved on while the call was in flight, so the result must
	// not tear down state that now belongs to another item.
	assert.Equal(t, 2, f.queue.Len())
	assert.Equal(t, 1, f.orch.CurrentIndex())
}

func TestRemoveItemPurgesSavedForm(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"), flowItem("Strathcona"))
	require.NoError(t, f.orch.Start())

	form := f.orch.Form()
	form.Equipment.LicensePlate = "ABC123"
	f.orch.ApplyFormValues(form)

	first := f.cartItems[0]
	require.NoError(t, f.orch.SwitchToItem(1))
	require.NoError(t, f.orch.RemoveItem(context.Background(), first.ID))

	_, ok := f.forms.Load(first.ID)
	assert.False(t, ok)
	assert.Equal(t, 1, f.queue.Len())
	assert.Equal(t, 0, f.orch.CurrentIndex())

	item, ok := f.orch.CartItem()
	require.True(t, ok)
	assert.Equal(t, "Strathcona", item.GeoZoneName)
}

func TestRemoveLastItemEmptiesFlow(t *testing.T) {
	f := newFlowFixture(t, flowItem("Garibaldi"))
	require.NoError(t, f.orch.Start())

	err := f.orch.RemoveItem(context.Background(), f.cartItems[0].ID)
	assert.ErrorIs(t, err, ErrEmptyCart)
}

func TestNights(t *testing.T) {
	nights, err := Nights("2025-06-09", "2025-06-14")
	require.NoError(t, err)
	assert.Equal(t, 5, nights)

	_, err = Nights("2025-06-14", "2025-06-09")
	assert.Error(t, err)

	_, err = Nights("not-a-date", "2025-06-09")
	assert.Error(t, err)

	_, err = Nights("2025-06-09", "2025-06-09")
	assert.Error(t, err)
}

func TestFlowManagerLifecycle(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	queue := cart.NewQueue(ctx, cart.NewMemoryStore(), "cart:mgr", logger)
	queue.Add(ctx, flowItem("Garibaldi"))

	booking := &stubBookingAPI{result: models.BookingResult{GlobalID: "GB-1", SessionID: "S-1"}}
	payments := &stubPaymentGateway{session: models.PaymentSession{TransactionURL: "https://pay.example/t/1"}}
	manager := NewFlowManager(NewSubmissionPipeline(booking, payments, nil, nil, logger), logger)

	id, orch, err := manager.Start(queue, nil)
	require.NoError(t, err)
	require.NotNil(t, orch)
	assert.Equal(t, 1, manager.Len())

	got, err := manager.Get(id)
	require.NoError(t, err)
	assert.Same(t, orch, got)

	manager.End(id)
	_, err = manager.Get(id)
	assert.ErrorIs(t, err, ErrFlowNotFound)
}

func TestFlowManagerEmptyCart(t *testing.T) {
	ctx := context.Background()
	logger := zap.NewNop()
	queue := cart.NewQueue(ctx, cart.NewMemoryStore(), "cart:empty", logger)

	manager := NewFlowManager(NewSubmissionPipeline(nil, nil, nil, nil, logger), logger)
	_, _, err := manager.Start(queue, nil)
	assert.ErrorIs(t, err, ErrEmptyCart)
	assert.Equal(t, 0, manager.Len())
}
