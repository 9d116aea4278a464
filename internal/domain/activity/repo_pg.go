package activity

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bptrack/bptrack/internal/platform/db"
	"github.com/bptrack/bptrack/pkg/calendar"
)

type activityRepoPG struct{ pool *pgxpool.Pool }

func NewActivityRepoPG(pool *pgxpool.Pool) ActivityRepository {
	return &activityRepoPG{pool: pool}
}

func (r *activityRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const activityCols = `id, user_id, date, steps_count, distance_km, active_minutes, calories_burned, created_at`

func (r *activityRepoPG) scanRow(row pgx.Row) (*ActivityLog, error) {
	var l ActivityLog
	err := row.Scan(&l.ID, &l.UserID, &l.Date, &l.StepsCount, &l.DistanceKm,
		&l.ActiveMinutes, &l.CaloriesBurned, &l.CreatedAt)
	return &l, err
}

func (r *activityRepoPG) Upsert(ctx context.Context, l *ActivityLog) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO activity_logs (user_id, date, steps_count, distance_km, active_minutes, calories_burned)
		VALUES ($1,$2,$3,$4,$5,$6)
		ON CONFLICT (user_id, date) DO UPDATE SET
			steps_count = EXCLUDED.steps_count,
			distance_km = EXCLUDED.distance_km,
			active_minutes = EXCLUDED.active_minutes,
			calories_burned = EXCLUDED.calories_burned
		RETURNING id, created_at`,
		l.UserID, l.Date, l.StepsCount, l.DistanceKm, l.ActiveMinutes, l.CaloriesBurned,
	).Scan(&l.ID, &l.CreatedAt)
}

func (r *activityRepoPG) ListRange(ctx context.Context, userID int64, from, to calendar.Day) ([]*ActivityLog, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+activityCols+` FROM activity_logs
		WHERE user_id = $1 AND date BETWEEN $2 AND $3
		ORDER BY date DESC`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*ActivityLog
	for rows.Next() {
		l, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}
