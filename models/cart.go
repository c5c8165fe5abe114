package models

// Occupants holds the four party-size buckets for a reservation.
type Occupants struct {
	TotalAdult  int `json:"totalAdult"`
	TotalSenior int `json:"totalSenior"`
	TotalYouth  int `json:"totalYouth"`
	TotalChild  int `json:"totalChild"`
}

// Total returns the combined occupant count across all buckets.
func (o Occupants) Total() int {
	return o.TotalAdult + o.TotalSenior + o.TotalYouth + o.TotalChild
}

// CartItem is one pending reservation selection in the checkout queue.
type CartItem struct {
	ID           string    `json:"id"`
	GeoZoneName  string    `json:"geoZoneName"`
	ActivityID   string    `json:"activityId"`
	ActivityName string    `json:"activityName"`
	CollectionID string    `json:"acCollectionId"`
	ActivityType string    `json:"activityType"`
	StartDate    string    `json:"startDate"`
	EndDate      string    `json:"endDate"`
	Occupants    Occupants `json:"occupants"`
	TotalPrice   float64   `json:"totalPrice"`

	Step1Completed       bool `json:"step1Completed"`
	Step2Completed       bool `json:"step2Completed"`
	Step3Completed       bool `json:"step3Completed"`
	Step4Completed       bool `json:"step4Completed"`
	AreAllStepsCompleted bool `json:"areAllStepsCompleted"`
}

// RecomputeAllStepsCompleted refreshes the derived flag from the four step
// flags. Every write path that touches a step flag must call this before the
// item is persisted.
func (c *CartItem) RecomputeAllStepsCompleted() {
	c.AreAllStepsCompleted = c.Step1Completed && c.Step2Completed && c.Step3Completed && c.Step4Completed
}

// StepCompleted reports the completion flag for the given non-terminal step
// index (0..3).
func (c *CartItem) StepCompleted(stepIndex int) bool {
	switch stepIndex {
	case 0:
		return c.Step1Completed
	case 1:
		return c.Step2Completed
	case 2:
		return c.Step3Completed
	case 3:
		return c.Step4Completed
	}
	return false
}

// SetStepCompleted sets the completion flag for the given non-terminal step
// index (0..3) and recomputes the derived flag.
func (c *CartItem) SetStepCompleted(stepIndex int, completed bool) {
	switch stepIndex {
	case 0:
		c.Step1Completed = completed
	case 1:
		c.Step2Completed = completed
	case 2:
		c.Step3Completed = completed
	case 3:
		c.Step4Completed = completed
	}
	c.RecomputeAllStepsCompleted()
}

// CartItemPatch carries the fields of a shallow-merge cart update. Nil fields
// are left untouched; nested structures are replaced whole, so callers must
// pass complete values for the structures they intend to change.
type CartItemPatch struct {
	GeoZoneName    *string    `json:"geoZoneName,omitempty"`
	ActivityID     *string    `json:"activityId,omitempty"`
	ActivityName   *string    `json:"activityName,omitempty"`
	CollectionID   *string    `json:"acCollectionId,omitempty"`
	ActivityType   *string    `json:"activityType,omitempty"`
	StartDate      *string    `json:"startDate,omitempty"`
	EndDate        *string    `json:"endDate,omitempty"`
	Occupants      *Occupants `json:"occupants,omitempty"`
	TotalPrice     *float64   `json:"totalPrice,omitempty"`
	Step1Completed *bool      `json:"step1Completed,omitempty"`
	Step2Completed *bool      `json:"step2Completed,omitempty"`
	Step3Completed *bool      `json:"step3Completed,omitempty"`
	Step4Completed *bool      `json:"step4Completed,omitempty"`
}
