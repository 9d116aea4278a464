package food

import (
	"context"
	"time"
)

type FoodLogRepository interface {
	Create(ctx context.Context, l *FoodLog) error
	// ListByUser returns the newest logs first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*FoodLog, error)
	// SumSodium totals sodium_content logged with from <= logged_at < to.
	SumSodium(ctx context.Context, userID int64, from, to time.Time) (float64, error)
}
