package activity

import (
	"context"

	"github.com/bptrack/bptrack/pkg/calendar"
)

type ActivityRepository interface {
	// Upsert inserts or replaces the log for (user_id, date).
	Upsert(ctx context.Context, l *ActivityLog) error
	// ListRange returns logs with from <= date <= to, newest first.
	ListRange(ctx context.Context, userID int64, from, to calendar.Day) ([]*ActivityLog, error)
}
