package food

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bptrack/bptrack/internal/platform/db"
)

type foodLogRepoPG struct{ pool *pgxpool.Pool }

func NewFoodLogRepoPG(pool *pgxpool.Pool) FoodLogRepository {
	return &foodLogRepoPG{pool: pool}
}

func (r *foodLogRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const foodCols = `id, user_id, meal_type, food_description, sodium_content, calories, image_url, logged_at`

func (r *foodLogRepoPG) scanRow(row pgx.Row) (*FoodLog, error) {
	var l FoodLog
	err := row.Scan(&l.ID, &l.UserID, &l.MealType, &l.FoodDescription, &l.SodiumContent,
		&l.Calories, &l.ImageURL, &l.LoggedAt)
	return &l, err
}

func (r *foodLogRepoPG) Create(ctx context.Context, l *FoodLog) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO food_logs (user_id, meal_type, food_description, sodium_content, calories, image_url, logged_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		l.UserID, l.MealType, l.FoodDescription, l.SodiumContent, l.Calories, l.ImageURL, l.LoggedAt,
	).Scan(&l.ID)
}

func (r *foodLogRepoPG) ListByUser(ctx context.Context, userID int64, limit int) ([]*FoodLog, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+foodCols+` FROM food_logs
		WHERE user_id = $1 ORDER BY logged_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*FoodLog
	for rows.Next() {
		l, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, l)
	}
	return items, rows.Err()
}

func (r *foodLogRepoPG) SumSodium(ctx context.Context, userID int64, from, to time.Time) (float64, error) {
	var total float64
	err := r.conn(ctx).QueryRow(ctx, `
		SELECT COALESCE(SUM(sodium_content), 0) FROM food_logs
		WHERE user_id = $1 AND logged_at >= $2 AND logged_at < $3`, userID, from, to).Scan(&total)
	return total, err
}
