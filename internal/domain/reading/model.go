package reading

import "time"

// Blood pressure statuses.
const (
	StatusNormal   = "Normal"
	StatusElevated = "Elevated"
	StatusHigh     = "High"
	StatusNoData   = "No data"
)

// Reading maps to the bp_readings table. Status is derived, not stored.
type Reading struct {
	ID             int64     `json:"id"`
	UserID         int64     `json:"user_id"`
	Systolic       int       `json:"systolic"`
	Diastolic      int       `json:"diastolic"`
	Pulse          *int      `json:"pulse,omitempty"`
	Notes          *string   `json:"notes,omitempty"`
	FoodConsumed   *string   `json:"food_consumed,omitempty"`
	ActivityBefore *string   `json:"activity_before,omitempty"`
	StressLevel    *int      `json:"stress_level,omitempty"`
	Location       *string   `json:"location,omitempty"`
	ReadingTime    time.Time `json:"reading_time"`
	CreatedAt      time.Time `json:"created_at"`
	Status         string    `json:"status"`
}

// Classify maps a reading onto a status. Either value crossing a cutoff is
// enough to raise the status.
func Classify(systolic, diastolic int) string {
	switch {
	case systolic >= 140 || diastolic >= 90:
		return StatusHigh
	case systolic >= 130 || diastolic >= 80:
		return StatusElevated
	default:
		return StatusNormal
	}
}

// StatusOf classifies r, reporting StatusNoData for a nil reading.
func StatusOf(r *Reading) string {
	if r == nil {
		return StatusNoData
	}
	return Classify(r.Systolic, r.Diastolic)
}

// CreateRequest is the body of POST /api/bp-readings.
type CreateRequest struct {
	UserID         *int64     `json:"user_id"`
	Systolic       *int       `json:"systolic"`
	Diastolic      *int       `json:"diastolic"`
	Pulse          *int       `json:"pulse"`
	Notes          *string    `json:"notes"`
	FoodConsumed   *string    `json:"food_consumed"`
	ActivityBefore *string    `json:"activity_before"`
	StressLevel    *int       `json:"stress_level"`
	Location       *string    `json:"location"`
	ReadingTime    *time.Time `json:"reading_time"`
}
