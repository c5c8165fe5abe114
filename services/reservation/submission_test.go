package reservation

import (
	"context"
	"encoding/json"
	"testing"

	"campflow/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func filledSnapshot() models.FormSnapshot {
	form := models.ReservationForm{
		ConfirmDetails: models.ConfirmDetailsForm{
			EntryPoint: "Rubble Creek",
			ExitPoint:  "Cheakamus",
			StartDate:  "2025-06-09",
			EndDate:    "2025-06-14",
			Occupants:  models.Occupants{TotalAdult: 2, TotalYouth: 1},
		},
		PolicyReview: models.PolicyReviewForm{AcknowledgePolicies: true},
		CampingParty: models.CampingPartyForm{
			PrimaryOccupant: models.ContactInfo{
				FirstName: "Robin", LastName: "Lee", Email: "robin@example.com",
			},
			Address: models.AddressInfo{City: "Victoria", Province: "BC"},
		},
		Equipment: models.EquipmentForm{LicensePlate: "ABC123", RegisteredProvince: "BC"},
	}
	return form.Snapshot()
}

func TestBuildBookingPayloadFromSnapshot(t *testing.T) {
	payload := BuildBookingPayload(flowItem("Garibaldi"), filledSnapshot(), nil)

	assert.Equal(t, 2, payload.PartyInformation.Adult)
	assert.Equal(t, 1, payload.PartyInformation.Youth)
	assert.Equal(t, "Robin", payload.FirstName)
	assert.Equal(t, "robin@example.com", payload.Email)
	assert.Equal(t, "Rubble Creek", payload.EntryPoint)
	assert.Equal(t, "ABC123", payload.EquipmentInfo.LicensePlate)
	assert.Equal(t, "2025-06-09", payload.StartDate)
	assert.Equal(t, 150.0, payload.TotalPrice)
}

func TestBuildBookingPayloadOmitsEmptyContactFields(t *testing.T) {
	snapshot := filledSnapshot()
	snapshot.Form.CampingParty.PrimaryOccupant.PhoneNumber = ""
	snapshot.Form.CampingParty.Address.UnitNumber = ""

	payload := BuildBookingPayload(flowItem("Garibaldi"), snapshot, nil)
	raw, err := json.Marshal(payload)
	require.NoError(t, err)

	var fields map[string]any
	require.NoError(t, json.Unmarshal(raw, &fields))
	assert.NotContains(t, fields, "phoneNumber")
	assert.NotContains(t, fields, "unitNumber")
	assert.Contains(t, fields, "firstName")
}

func TestBuildBookingPayloadProfileOverride(t *testing.T) {
	snapshot := filledSnapshot()
	snapshot.Form.CampingParty.UserIsPrimaryOccupant = true
	user := &models.UserProfile{
		Sub: "auth0|abc", FirstName: "Dana", LastName: "Singh",
		Email: "dana@example.com", PhoneNumber: "250-555-0101",
	}

	payload := BuildBookingPayload(flowItem("Garibaldi"), snapshot, user)
	assert.Equal(t, "Dana", payload.FirstName)
	assert.Equal(t, "dana@example.com", payload.Email)
	assert.Equal(t, "250-555-0101", payload.PhoneNumber)
}

func TestBuildBookingPayloadGuestProfileDoesNotOverride(t *testing.T) {
	snapshot := filledSnapshot()
	snapshot.Form.CampingParty.UserIsPrimaryOccupant = true
	guest := &models.UserProfile{Sub: "guest-1b2c", FirstName: "Guest"}

	payload := BuildBookingPayload(flowItem("Garibaldi"), snapshot, guest)
	assert.Equal(t, "Robin", payload.FirstName)
}

func TestRetryPaymentOnlyForPendingBookings(t *testing.T) {
	logger := zap.NewNop()
	payments := &stubPaymentGateway{session: models.PaymentSession{TransactionURL: "https://pay.example/t/2"}}
	pipeline := NewSubmissionPipeline(nil, payments, nil, nil, logger)

	record := models.BookingRecord{
		GlobalID:   "GB-7",
		SessionID:  "S-7",
		Email:      "robin@example.com",
		TotalPrice: 80,
		Status:     models.BookingStatusConfirmed,
	}
	_, err := pipeline.RetryPayment(context.Background(), record)
	var subErr *SubmissionError
	require.ErrorAs(t, err, &subErr)
	assert.Equal(t, StagePayment, subErr.Stage)
	assert.Equal(t, 0, payments.calls)

	record.Status = models.BookingStatusPendingPayment
	result, err := pipeline.RetryPayment(context.Background(), record)
	require.NoError(t, err)
	assert.Equal(t, "GB-7", result.BookingID)
	assert.Equal(t, "https://pay.example/t/2", result.TransactionURL)
}
