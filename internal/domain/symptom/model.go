package symptom

import "time"

// SymptomLog maps to the symptom_logs table.
type SymptomLog struct {
	ID              int64     `json:"id"`
	UserID          int64     `json:"user_id"`
	SymptomType     string    `json:"symptom_type"`
	Severity        int       `json:"severity"`
	Description     *string   `json:"description"`
	DurationMinutes *int      `json:"duration_minutes"`
	Triggers        []string  `json:"triggers"`
	LoggedAt        time.Time `json:"logged_at"`
}

type CreateRequest struct {
	UserID          *int64     `json:"user_id"`
	SymptomType     string     `json:"symptom_type"`
	Severity        *int       `json:"severity"`
	Description     *string    `json:"description"`
	DurationMinutes *int       `json:"duration_minutes"`
	Triggers        []string   `json:"triggers"`
	LoggedAt        *time.Time `json:"logged_at"`
}
