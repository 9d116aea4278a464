package reminder

import (
	"time"

	"github.com/bptrack/bptrack/pkg/calendar"
)

// Delivery methods.
const (
	MethodEmail = "email"
	MethodSMS   = "sms"
)

// Delivery outcomes.
const (
	StatusSent    = "sent"
	StatusFailed  = "failed"
	StatusSkipped = "skipped"
)

// SendRequest is the body of POST /api/medication-reminders.
type SendRequest struct {
	UserID         *int64 `json:"user_id"`
	ReminderMethod string `json:"reminder_method"`
	TestSend       bool   `json:"test_send"`
}

// Result is the outcome of one reminder delivery.
type Result struct {
	Medication string `json:"medication"`
	Time       string `json:"time"`
	Method     string `json:"method"`
	Status     string `json:"status"`
	Error      string `json:"error,omitempty"`
}

// SendResult summarizes a manual send.
type SendResult struct {
	RemindersSent           int      `json:"reminders_sent"`
	TotalMedicationsChecked int      `json:"total_medications_checked"`
	RemindersDue            int      `json:"reminders_due"`
	Results                 []Result `json:"results"`
	Message                 string   `json:"message"`
}

// Upcoming is one of today's scheduled doses.
type Upcoming struct {
	MedicationID     int64     `json:"medication_id"`
	MedicationName   string    `json:"medication_name"`
	Dosage           *string   `json:"dosage"`
	ReminderTime     string    `json:"reminder_time"`
	ReminderDateTime time.Time `json:"reminder_datetime"`
	AlreadyTaken     bool      `json:"already_taken"`
	IsOverdue        bool      `json:"is_overdue"`
	Notes            *string   `json:"notes"`
}

// Schedule is today's reminder list with its counters.
type Schedule struct {
	Reminders    []Upcoming `json:"upcoming_reminders"`
	TotalToday   int        `json:"total_for_today"`
	TakenCount   int        `json:"taken_count"`
	OverdueCount int        `json:"overdue_count"`
}

// Delivery identifies one reminder occurrence. At most one delivery is
// recorded per medication, reminder time and local date.
type Delivery struct {
	MedicationID int64
	ReminderTime string
	Date         calendar.Day
	Method       string
}

// DispatchStats reports one dispatcher pass.
type DispatchStats struct {
	Checked int `json:"checked"`
	Due     int `json:"due"`
	Sent    int `json:"sent"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}
