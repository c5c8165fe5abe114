package reservation

import (
	"context"
	"time"

	"campflow/database/repository/bookingrec"
	"campflow/models"
	"campflow/services/gateway"

	"go.uber.org/zap"
)

// SubmissionResult carries the identifiers and redirect target of a
// successful submission.
type SubmissionResult struct {
	BookingID      string `json:"bookingId"`
	SessionID      string `json:"sessionId"`
	TransactionURL string `json:"transactionUrl"`
}

// ExpiryScheduler schedules a deferred check that marks a booking expired if
// its payment never completed.
type ExpiryScheduler interface {
	ScheduleExpiryCheck(globalID string, in time.Duration) error
}

// pendingPaymentWindow is how long a booking may sit unpaid before the
// deferred check marks it expired.
const pendingPaymentWindow = 30 * time.Minute

// SubmissionPipeline turns validated form state into a booking-creation call
// followed by a payment-initiation call. Failures at either call leave all
// checkout state untouched so the user can retry.
type SubmissionPipeline struct {
	booking  gateway.BookingAPI
	payments gateway.PaymentGateway
	records  bookingrec.Repository
	expiry   ExpiryScheduler
	logger   *zap.Logger
}

// NewSubmissionPipeline wires the pipeline's collaborators. records and
// expiry may be nil when record-keeping is disabled.
func NewSubmissionPipeline(booking gateway.BookingAPI, payments gateway.PaymentGateway, records bookingrec.Repository, expiry ExpiryScheduler, logger *zap.Logger) *SubmissionPipeline {
	return &SubmissionPipeline{
		booking:  booking,
		payments: payments,
		records:  records,
		expiry:   expiry,
		logger:   logger,
	}
}

// Submit creates the booking and initiates its payment session. The returned
// redirect URL is the caller's side effect to perform.
func (p *SubmissionPipeline) Submit(ctx context.Context, item models.CartItem, snapshot models.FormSnapshot, user *models.UserProfile) (*SubmissionResult, error) {
	payload := BuildBookingPayload(item, snapshot, user)

	result, err := p.booking.CreateBooking(ctx, payload, item.CollectionID, item.ActivityType, item.ActivityID, item.StartDate)
	if err != nil {
		return nil, &SubmissionError{Stage: StageBooking, Message: "booking creation was rejected", Err: err}
	}
	if result.GlobalID == "" || result.SessionID == "" {
		return nil, &SubmissionError{Stage: StageBooking, Message: "booking result is missing its identifiers"}
	}

	session, err := p.payments.Initiate(ctx, models.PaymentRequest{
		Amount:    item.TotalPrice,
		BookingID: result.GlobalID,
		SessionID: result.SessionID,
		Email:     payload.Email,
	})
	if err != nil {
		return nil, &SubmissionError{Stage: StagePayment, Message: "payment initiation was rejected", Err: err}
	}
	if session.TransactionURL == "" {
		return nil, &SubmissionError{Stage: StagePayment, Message: "payment provider returned no transaction URL"}
	}

	p.recordBooking(ctx, item, payload, result, user)

	return &SubmissionResult{
		BookingID:      result.GlobalID,
		SessionID:      result.SessionID,
		TransactionURL: session.TransactionURL,
	}, nil
}

// RetryPayment re-initiates the payment session for a standing booking that
// never completed its payment. Only the payment call is repeated; the
// booking itself is not recreated.
func (p *SubmissionPipeline) RetryPayment(ctx context.Context, record models.BookingRecord) (*SubmissionResult, error) {
	if record.Status != models.BookingStatusPendingPayment {
		return nil, &SubmissionError{Stage: StagePayment, Message: "booking is not awaiting payment"}
	}

	session, err := p.payments.Initiate(ctx, models.PaymentRequest{
		Amount:    record.TotalPrice,
		BookingID: record.GlobalID,
		SessionID: record.SessionID,
		Email:     record.Email,
	})
	if err != nil {
		return nil, &SubmissionError{Stage: StagePayment, Message: "payment initiation was rejected", Err: err}
	}
	if session.TransactionURL == "" {
		return nil, &SubmissionError{Stage: StagePayment, Message: "payment provider returned no transaction URL"}
	}

	return &SubmissionResult{
		BookingID:      record.GlobalID,
		SessionID:      record.SessionID,
		TransactionURL: session.TransactionURL,
	}, nil
}

// recordBooking keeps a record of the submitted booking and schedules its
// pending-payment expiry check. Record-keeping failures are logged, never
// surfaced: the booking and payment calls already succeeded.
func (p *SubmissionPipeline) recordBooking(ctx context.Context, item models.CartItem, payload models.BookingPayload, result *models.BookingResult, user *models.UserProfile) {
	if p.records == nil {
		return
	}

	userSub := ""
	if user != nil {
		userSub = user.Sub
	}
	record := &models.BookingRecord{
		GlobalID:     result.GlobalID,
		SessionID:    result.SessionID,
		UserSub:      userSub,
		ParkName:     item.GeoZoneName,
		ActivityID:   item.ActivityID,
		ActivityName: item.ActivityName,
		CollectionID: item.CollectionID,
		ActivityType: item.ActivityType,
		StartDate:    item.StartDate,
		EndDate:      item.EndDate,
		Party:        payload.PartyInformation,
		Email:        payload.Email,
		TotalPrice:   item.TotalPrice,
		Status:       models.BookingStatusPendingPayment,
		CreatedAt:    time.Now(),
	}
	if err := p.records.Insert(ctx, record); err != nil {
		p.logger.Warn("failed to record submitted booking",
			zap.String("globalId", result.GlobalID), zap.Error(err))
		return
	}

	if p.expiry != nil {
		if err := p.expiry.ScheduleExpiryCheck(result.GlobalID, pendingPaymentWindow); err != nil {
			p.logger.Warn("failed to schedule payment expiry check",
				zap.String("globalId", result.GlobalID), zap.Error(err))
		}
	}
}

// BuildBookingPayload assembles the booking-creation payload from the item's
// reservation selection and the form snapshot's occupant, contact and
// equipment fields. When the user opted to be the named occupant, the
// authenticated profile overrides the manually entered contact fields.
// Empty contact fields are omitted from the payload entirely.
func BuildBookingPayload(item models.CartItem, snapshot models.FormSnapshot, user *models.UserProfile) models.BookingPayload {
	form := snapshot.Form

	contact := form.CampingParty.PrimaryOccupant
	if form.CampingParty.UserIsPrimaryOccupant && user != nil && !user.IsGuest() {
		contact = models.ContactInfo{
			FirstName:   user.FirstName,
			LastName:    user.LastName,
			Email:       user.Email,
			PhoneNumber: user.PhoneNumber,
		}
	}

	occupants := form.ConfirmDetails.Occupants
	address := form.CampingParty.Address

	return models.BookingPayload{
		PartyInformation: models.PartyInformation{
			Adult:  occupants.TotalAdult,
			Senior: occupants.TotalSenior,
			Youth:  occupants.TotalYouth,
			Child:  occupants.TotalChild,
		},
		FirstName:     contact.FirstName,
		LastName:      contact.LastName,
		Email:         contact.Email,
		PhoneNumber:   contact.PhoneNumber,
		StreetAddress: address.StreetAddress,
		UnitNumber:    address.UnitNumber,
		City:          address.City,
		Province:      address.Province,
		PostalCode:    address.PostalCode,
		Country:       address.Country,
		EntryPoint:    form.ConfirmDetails.EntryPoint,
		ExitPoint:     form.ConfirmDetails.ExitPoint,
		EquipmentInfo: models.EquipmentInfo{
			LicensePlate:       form.Equipment.LicensePlate,
			RegisteredProvince: form.Equipment.RegisteredProvince,
			EquipmentDetails:   form.Equipment.EquipmentDetails,
		},
		StartDate:  item.StartDate,
		EndDate:    item.EndDate,
		TotalPrice: item.TotalPrice,
	}
}
