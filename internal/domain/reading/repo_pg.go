package reading

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bptrack/bptrack/internal/platform/db"
)

type readingRepoPG struct{ pool *pgxpool.Pool }

func NewReadingRepoPG(pool *pgxpool.Pool) ReadingRepository {
	return &readingRepoPG{pool: pool}
}

func (r *readingRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const readingCols = `id, user_id, systolic, diastolic, pulse, notes, food_consumed, activity_before,
	stress_level, location, reading_time, created_at`

func (r *readingRepoPG) scanRow(row pgx.Row) (*Reading, error) {
	var rd Reading
	err := row.Scan(&rd.ID, &rd.UserID, &rd.Systolic, &rd.Diastolic, &rd.Pulse, &rd.Notes,
		&rd.FoodConsumed, &rd.ActivityBefore, &rd.StressLevel, &rd.Location,
		&rd.ReadingTime, &rd.CreatedAt)
	return &rd, err
}

func (r *readingRepoPG) Create(ctx context.Context, rd *Reading) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO bp_readings (user_id, systolic, diastolic, pulse, notes, food_consumed,
			activity_before, stress_level, location, reading_time)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
		RETURNING id, created_at`,
		rd.UserID, rd.Systolic, rd.Diastolic, rd.Pulse, rd.Notes, rd.FoodConsumed,
		rd.ActivityBefore, rd.StressLevel, rd.Location, rd.ReadingTime,
	).Scan(&rd.ID, &rd.CreatedAt)
}

func (r *readingRepoPG) ListByUser(ctx context.Context, userID int64, limit int) ([]*Reading, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+readingCols+` FROM bp_readings
		WHERE user_id = $1 ORDER BY reading_time DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*Reading
	for rows.Next() {
		rd, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, rd)
	}
	return items, rows.Err()
}
