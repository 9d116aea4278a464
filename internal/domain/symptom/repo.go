package symptom

import "context"

type SymptomRepository interface {
	Create(ctx context.Context, s *SymptomLog) error
	// ListByUser returns the newest entries first.
	ListByUser(ctx context.Context, userID int64, limit int) ([]*SymptomLog, error)
}
