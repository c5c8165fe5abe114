package reservation

import (
	"fmt"
	"math"
	"time"

	"campflow/models"
)

const dateLayout = "2006-01-02"

// Nights computes the stay length as ceil((end - start) in days). The start
// date must be strictly before the end date.
func Nights(startDate, endDate string) (int, error) {
	start, err := time.Parse(dateLayout, startDate)
	if err != nil {
		return 0, fmt.Errorf("invalid start date %q: %w", startDate, err)
	}
	end, err := time.Parse(dateLayout, endDate)
	if err != nil {
		return 0, fmt.Errorf("invalid end date %q: %w", endDate, err)
	}
	if !start.Before(end) {
		return 0, fmt.Errorf("start date %s is not before end date %s", startDate, endDate)
	}
	return int(math.Ceil(end.Sub(start).Hours() / 24)), nil
}

// buildSummary derives the booking summary for an item. Nights and occupant
// totals are recomputed every call, never cached.
func buildSummary(item models.CartItem) models.BookingSummary {
	parkName := item.GeoZoneName
	if parkName == "" {
		parkName = "Unknown Park"
	}
	activityName := item.ActivityName
	if activityName == "" {
		activityName = "Unknown Activity"
	}

	nights, err := Nights(item.StartDate, item.EndDate)
	if err != nil {
		nights = 0
	}

	return models.BookingSummary{
		ParkName:          parkName,
		ActivityName:      activityName,
		CheckInDate:       item.StartDate,
		CheckOutDate:      item.EndDate,
		NumberOfNights:    nights,
		NumberOfOccupants: item.Occupants.Total(),
		BasePrice:         item.TotalPrice,
		Total:             item.TotalPrice,
	}
}
