package models

import "time"

// PartyInformation is the occupant breakdown as the bookings backend expects
// it.
type PartyInformation struct {
	Adult  int `json:"adult"`
	Senior int `json:"senior"`
	Youth  int `json:"youth"`
	Child  int `json:"child"`
}

// EquipmentInfo is the vehicle/equipment slice of the booking payload.
type EquipmentInfo struct {
	LicensePlate       string `json:"licensePlate,omitempty"`
	RegisteredProvince string `json:"registeredProvince,omitempty"`
	EquipmentDetails   string `json:"equipmentDetails,omitempty"`
}

// BookingPayload is the booking-creation request body. The field names are
// the contract surface of the bookings collaborator; empty contact fields are
// omitted rather than sent as empty strings.
type BookingPayload struct {
	PartyInformation PartyInformation `json:"partyInformation"`

	FirstName   string `json:"firstName,omitempty"`
	LastName    string `json:"lastName,omitempty"`
	Email       string `json:"email,omitempty"`
	PhoneNumber string `json:"phoneNumber,omitempty"`

	StreetAddress string `json:"streetAddress,omitempty"`
	UnitNumber    string `json:"unitNumber,omitempty"`
	City          string `json:"city,omitempty"`
	Province      string `json:"province,omitempty"`
	PostalCode    string `json:"postalCode,omitempty"`
	Country       string `json:"country,omitempty"`

	EntryPoint string `json:"entryPoint,omitempty"`
	ExitPoint  string `json:"exitPoint,omitempty"`

	EquipmentInfo EquipmentInfo `json:"equipmentInfo"`

	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	TotalPrice float64 `json:"totalPrice"`
}

// BookingResult is what the bookings collaborator returns for a created
// booking. Both identifiers are required for the payment handoff.
type BookingResult struct {
	GlobalID  string `json:"globalId"`
	SessionID string `json:"sessionId"`
}

// Booking record statuses.
const (
	BookingStatusPendingPayment = "pending_payment"
	BookingStatusConfirmed      = "confirmed"
	BookingStatusCancelled      = "cancelled"
	BookingStatusExpired        = "expired"
)

// BookingRecord is a submitted booking as kept in the records store.
type BookingRecord struct {
	GlobalID     string           `bson:"globalId" json:"globalId"`
	SessionID    string           `bson:"sessionId" json:"sessionId"`
	UserSub      string           `bson:"userSub" json:"userSub"`
	ParkName     string           `bson:"parkName" json:"parkName"`
	ActivityID   string           `bson:"activityId" json:"activityId"`
	ActivityName string           `bson:"activityName" json:"activityName"`
	CollectionID string           `bson:"collectionId" json:"collectionId"`
	ActivityType string           `bson:"activityType" json:"activityType"`
	StartDate    string           `bson:"startDate" json:"startDate"`
	EndDate      string           `bson:"endDate" json:"endDate"`
	Party        PartyInformation `bson:"party" json:"partyInformation"`
	Email        string           `bson:"email,omitempty" json:"email,omitempty"`
	TotalPrice   float64          `bson:"totalPrice" json:"totalPrice"`
	Status       string           `bson:"status" json:"bookingStatus"`
	CreatedAt    time.Time        `bson:"createdAt" json:"createdAt"`
}

// BookingSummary is the derived read-only view of the active cart item shown
// alongside every step. It is recomputed on demand, never cached.
type BookingSummary struct {
	ParkName          string  `json:"parkName"`
	ActivityName      string  `json:"activityName"`
	CheckInDate       string  `json:"checkInDate"`
	CheckOutDate      string  `json:"checkOutDate"`
	NumberOfNights    int     `json:"numberOfNights"`
	NumberOfOccupants int     `json:"numberOfOccupants"`
	BasePrice         float64 `json:"basePrice"`
	EquipmentTotal    float64 `json:"equipmentTotal"`
	Taxes             float64 `json:"taxes"`
	Total             float64 `json:"total"`
}
