package sharing

import (
	"time"

	"github.com/bptrack/bptrack/internal/domain/medication"
	"github.com/bptrack/bptrack/internal/domain/reading"
	"github.com/bptrack/bptrack/internal/domain/symptom"
)

const (
	AccessBasic = "basic"
	AccessFull  = "full"

	DefaultExpiryDays = 30
	MaxExpiryDays     = 365
)

// DoctorAccess maps to the doctor_access table; unique per (user, doctor email).
type DoctorAccess struct {
	ID            int64     `json:"id"`
	UserID        int64     `json:"user_id"`
	DoctorEmail   string    `json:"doctor_email"`
	DoctorName    string    `json:"doctor_name"`
	AccessLevel   string    `json:"access_level"`
	AccessGranted bool      `json:"access_granted"`
	ExpiresAt     time.Time `json:"expires_at"`
	GrantedAt     time.Time `json:"granted_at"`
	CreatedAt     time.Time `json:"created_at"`
	// TokenID is the jti of the only share token accepted for this grant.
	TokenID string `json:"-"`
}

// Active reports whether the grant is usable at t.
func (a *DoctorAccess) Active(t time.Time) bool {
	return a.AccessGranted && a.ExpiresAt.After(t)
}

type GrantRequest struct {
	UserID        *int64 `json:"user_id"`
	DoctorEmail   string `json:"doctor_email"`
	DoctorName    string `json:"doctor_name"`
	AccessLevel   string `json:"access_level"`
	ExpiresInDays *int   `json:"expires_in_days"`
}

// Grant is the outcome of sharing data with a doctor.
type Grant struct {
	Access    *DoctorAccess
	AccessURL string
}

type PatientInfo struct {
	Name            string `json:"name"`
	Age             *int   `json:"age"`
	TargetSystolic  *int   `json:"target_systolic"`
	TargetDiastolic *int   `json:"target_diastolic"`
}

// DoctorView is the read-only snapshot a doctor sees through a share link.
type DoctorView struct {
	PatientInfo  PatientInfo              `json:"patient_info"`
	Readings     []*reading.Reading       `json:"bp_readings"`
	Medications  []*medication.Medication `json:"medications"`
	Symptoms     []*symptom.SymptomLog    `json:"symptoms"`
	DoctorAccess *DoctorAccess            `json:"doctor_access"`
}
