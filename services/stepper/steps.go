package stepper

// StepConfig describes one step of the reservation walk-through and its
// current flags.
type StepConfig struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	IsCompleted   bool   `json:"isCompleted"`
	IsValid       bool   `json:"isValid"`
	IsActive      bool   `json:"isActive"`
	CanNavigateTo bool   `json:"canNavigateTo"`
}

// Step indices. The five steps are fixed and linearly ordered.
const (
	StepConfirmDetails = iota
	StepPolicyReview
	StepCampingParty
	StepEquipment
	StepPayment

	StepCount = 5
)

// Definitions returns a fresh copy of the ordered step descriptor set. Only
// the first step starts active and reachable.
func Definitions() []StepConfig {
	return []StepConfig{
		{
			ID:            "confirm-details",
			Title:         "Confirm Details",
			Description:   "Entry/exit points and activity details",
			IsActive:      true,
			CanNavigateTo: true,
		},
		{
			ID:          "policy-review",
			Title:       "Policy Review",
			Description: "Review and accept policies",
		},
		{
			ID:          "camping-party",
			Title:       "Camping Party",
			Description: "Party details and occupants",
		},
		{
			ID:          "equipment",
			Title:       "Equipment",
			Description: "Equipment and additional needs",
		},
		{
			ID:          "payment",
			Title:       "Review & Payment",
			Description: "Final review and payment processing",
		},
	}
}
