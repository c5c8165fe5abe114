package reservation

import (
	"errors"
	"fmt"
)

// ErrEmptyCart means the flow was started with nothing in the queue; the
// caller redirects to the entry surface instead of rendering steps.
var ErrEmptyCart = errors.New("cart is empty")

// ErrSubmissionInProgress blocks a second submission attempt while one is in
// flight. This guard is independent of the stepper's transition lock.
var ErrSubmissionInProgress = errors.New("a submission is already in progress")

// ErrSubmitUnavailable means submission was triggered from somewhere other
// than the terminal step of the last cart item.
var ErrSubmitUnavailable = errors.New("submission is only available from the payment step of the last cart item")

// Submission stages, used to distinguish failure messaging.
const (
	StageBooking = "booking"
	StagePayment = "payment"
)

// ScaffoldError reports a cart item missing required reservation fields when
// its form is built. Surfaced to the caller; never recovered silently.
type ScaffoldError struct {
	Field   string
	Message string
}

func (e *ScaffoldError) Error() string {
	return fmt.Sprintf("cannot build form: %s: %s", e.Field, e.Message)
}

// NewScaffoldError returns a ScaffoldError for the given item field.
func NewScaffoldError(field, message string) error {
	return &ScaffoldError{Field: field, Message: message}
}

// SubmissionError reports a failure from one of the submission
// collaborators. The stage only changes messaging; state impact is identical
// and the queue is preserved for retry.
type SubmissionError struct {
	Stage   string
	Message string
	Err     error
}

func (e *SubmissionError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s submission failed: %s: %v", e.Stage, e.Message, e.Err)
	}
	return fmt.Sprintf("%s submission failed: %s", e.Stage, e.Message)
}

func (e *SubmissionError) Unwrap() error { return e.Err }
