package reminder

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bptrack/bptrack/internal/platform/db"
)

type deliveryRepoPG struct{ pool *pgxpool.Pool }

func NewDeliveryRepoPG(pool *pgxpool.Pool) DeliveryRepository {
	return &deliveryRepoPG{pool: pool}
}

func (r *deliveryRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *deliveryRepoPG) Claim(ctx context.Context, d Delivery) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO reminder_deliveries (medication_id, reminder_time, delivery_date, method)
		VALUES ($1,$2,$3,$4)
		ON CONFLICT (medication_id, reminder_time, delivery_date) DO NOTHING`,
		d.MedicationID, d.ReminderTime, d.Date, d.Method)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() == 1, nil
}

func (r *deliveryRepoPG) Release(ctx context.Context, d Delivery) error {
	_, err := r.conn(ctx).Exec(ctx, `
		DELETE FROM reminder_deliveries
		WHERE medication_id = $1 AND reminder_time = $2 AND delivery_date = $3`,
		d.MedicationID, d.ReminderTime, d.Date)
	return err
}
