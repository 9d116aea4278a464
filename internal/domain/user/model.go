package user

import "time"

// User maps to the users table.
type User struct {
	ID              int64     `json:"id"`
	Name            string    `json:"name"`
	Email           *string   `json:"email,omitempty"`
	Phone           *string   `json:"phone,omitempty"`
	Age             *int      `json:"age,omitempty"`
	TargetSteps     *int      `json:"target_steps,omitempty"`
	TargetSystolic  *int      `json:"target_systolic,omitempty"`
	TargetDiastolic *int      `json:"target_diastolic,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}
