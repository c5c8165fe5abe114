package models

import "time"

// ContactInfo identifies the primary occupant of a reservation.
type ContactInfo struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber"`
}

// AddressInfo is the primary occupant's mailing address.
type AddressInfo struct {
	StreetAddress string `json:"streetAddress"`
	UnitNumber    string `json:"unitNumber"`
	City          string `json:"city"`
	Province      string `json:"province"`
	PostalCode    string `json:"postalCode"`
	Country       string `json:"country"`
}

// ConfirmDetailsForm is the field set for the Confirm Details step.
type ConfirmDetailsForm struct {
	EntryPoint string    `json:"entryPoint"`
	ExitPoint  string    `json:"exitPoint"`
	StartDate  string    `json:"startDate"`
	EndDate    string    `json:"endDate"`
	Occupants  Occupants `json:"occupants"`
}

// PolicyReviewForm is the field set for the Policy Review step.
type PolicyReviewForm struct {
	AcknowledgePolicies bool `json:"acknowledgePolicies"`
}

// CampingPartyForm is the field set for the Camping Party step.
type CampingPartyForm struct {
	UserIsPrimaryOccupant bool        `json:"userIsPrimaryOccupant"`
	PrimaryOccupant       ContactInfo `json:"primaryOccupant"`
	Address               AddressInfo `json:"addressInfo"`
}

// EquipmentForm is the field set for the Equipment step.
type EquipmentForm struct {
	LicensePlate       string `json:"licensePlate"`
	RegisteredProvince string `json:"registeredProvince"`
	EquipmentDetails   string `json:"equipmentDetails"`
}

// ReservationForm is the accumulated form state for one cart item's
// walk-through, one typed record per data-collection step.
type ReservationForm struct {
	ConfirmDetails ConfirmDetailsForm `json:"confirmDetails"`
	PolicyReview   PolicyReviewForm   `json:"policyReview"`
	CampingParty   CampingPartyForm   `json:"campingParty"`
	Equipment      EquipmentForm      `json:"equipment"`
}

// FormSnapshot is a verbatim capture of a reservation form. The value copy
// carries every field, including ones the presentation layer renders
// disabled.
type FormSnapshot struct {
	Form    ReservationForm `json:"form"`
	SavedAt time.Time       `json:"savedAt"`
}

// Snapshot captures the form's current raw values.
func (f ReservationForm) Snapshot() FormSnapshot {
	return FormSnapshot{Form: f, SavedAt: time.Now()}
}
