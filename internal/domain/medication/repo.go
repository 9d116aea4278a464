package medication

import (
	"context"
	"time"
)

type MedicationRepository interface {
	Create(ctx context.Context, m *Medication) error
	GetByID(ctx context.Context, id int64) (*Medication, error)
	// ListByUser orders by medication name.
	ListByUser(ctx context.Context, userID int64, activeOnly bool) ([]*Medication, error)
	SetActive(ctx context.Context, id, userID int64, active bool) (*Medication, error)
	// ListActiveWithReminders returns every active medication carrying at
	// least one reminder time, across all users.
	ListActiveWithReminders(ctx context.Context) ([]*Medication, error)
}

type LogRepository interface {
	Create(ctx context.Context, l *MedicationLog) error
	// ListTaken returns the user's taken doses with from <= taken_at < to.
	ListTaken(ctx context.Context, userID int64, from, to time.Time) ([]*MedicationLog, error)
}
