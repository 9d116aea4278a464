package medication

import (
	"time"

	"github.com/bptrack/bptrack/pkg/calendar"
)

// Medication maps to the medications table.
type Medication struct {
	ID                int64        `json:"id"`
	UserID            int64        `json:"user_id"`
	MedicationName    string       `json:"medication_name"`
	Dosage            *string      `json:"dosage,omitempty"`
	Frequency         *string      `json:"frequency,omitempty"`
	TimesPerDay       *int         `json:"times_per_day,omitempty"`
	ReminderTimes     []string     `json:"reminder_times"`
	PrescribingDoctor *string      `json:"prescribing_doctor,omitempty"`
	StartDate         calendar.Day `json:"start_date"`
	EndDate           calendar.Day `json:"end_date"`
	Notes             *string      `json:"notes,omitempty"`
	Active            bool         `json:"active"`
	CreatedAt         time.Time    `json:"created_at"`
}

// MedicationLog maps to the medication_logs table.
type MedicationLog struct {
	ID           int64     `json:"id"`
	MedicationID int64     `json:"medication_id"`
	UserID       int64     `json:"user_id"`
	Taken        bool      `json:"taken"`
	TakenAt      time.Time `json:"taken_at"`
	Notes        *string   `json:"notes,omitempty"`
}

// Adherence summarizes today's doses.
type Adherence struct {
	ScheduledToday int    `json:"scheduled_today"`
	TakenToday     int    `json:"taken_today"`
	Rate           int    `json:"adherence_rate"`
	Label          string `json:"label"`
}

// CreateRequest is the body of POST /api/medications.
type CreateRequest struct {
	UserID            *int64       `json:"user_id"`
	MedicationName    string       `json:"medication_name"`
	Dosage            *string      `json:"dosage"`
	Frequency         *string      `json:"frequency"`
	TimesPerDay       *int         `json:"times_per_day"`
	ReminderTimes     []string     `json:"reminder_times"`
	PrescribingDoctor *string      `json:"prescribing_doctor"`
	StartDate         calendar.Day `json:"start_date"`
	EndDate           calendar.Day `json:"end_date"`
	Notes             *string      `json:"notes"`
	Active            *bool        `json:"active"`
}

// UpdateRequest is the body of PATCH /api/medications/:id.
type UpdateRequest struct {
	UserID *int64 `json:"user_id"`
	Active *bool  `json:"active"`
}

// LogRequest is the body of POST /api/medications/:id/logs.
type LogRequest struct {
	UserID  *int64     `json:"user_id"`
	Taken   *bool      `json:"taken"`
	TakenAt *time.Time `json:"taken_at"`
	Notes   *string    `json:"notes"`
}
