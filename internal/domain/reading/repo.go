package reading

import "context"

type ReadingRepository interface {
	Create(ctx context.Context, r *Reading) error
	// ListByUser returns the newest readings first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*Reading, error)
}
