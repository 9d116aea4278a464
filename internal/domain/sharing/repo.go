package sharing

import (
	"context"
	"time"
)

type AccessRepository interface {
	// Upsert inserts or re-grants the (user, doctor email) access row.
	Upsert(ctx context.Context, a *DoctorAccess) error
	// ListByUser returns grants newest granted first.
	ListByUser(ctx context.Context, userID int64) ([]*DoctorAccess, error)
	// GetActive returns the grant matching tokenID that is granted and unexpired at now.
	GetActive(ctx context.Context, userID int64, email, tokenID string, now time.Time) (*DoctorAccess, error)
	// Revoke reports whether a grant existed.
	Revoke(ctx context.Context, userID int64, email string) (bool, error)
}
