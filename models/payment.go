package models

// PaymentRequest is posted as a transaction to the payment-initiation
// collaborator. Field names are its contract surface.
type PaymentRequest struct {
	Amount    float64 `json:"amount"`
	BookingID string  `json:"bookingId"`
	SessionID string  `json:"sessionId"`
	Email     string  `json:"email,omitempty"`
}

// PaymentSession is the hosted-payment handoff returned by the collaborator.
// The caller performs the redirect; a missing URL is a hard failure.
type PaymentSession struct {
	TransactionURL string `json:"transactionUrl"`
}
