package reminder

import "context"

type DeliveryRepository interface {
	// Claim records d and reports false when it was already recorded.
	Claim(ctx context.Context, d Delivery) (bool, error)
	// Release forgets d so a later pass can retry it.
	Release(ctx context.Context, d Delivery) error
}
