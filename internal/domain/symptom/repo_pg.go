package symptom

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bptrack/bptrack/internal/platform/db"
)

type symptomRepoPG struct{ pool *pgxpool.Pool }

func NewSymptomRepoPG(pool *pgxpool.Pool) SymptomRepository {
	return &symptomRepoPG{pool: pool}
}

func (r *symptomRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const symptomCols = `id, user_id, symptom_type, severity, description, duration_minutes, triggers, logged_at`

func (r *symptomRepoPG) scanRow(row pgx.Row) (*SymptomLog, error) {
	var s SymptomLog
	err := row.Scan(&s.ID, &s.UserID, &s.SymptomType, &s.Severity, &s.Description,
		&s.DurationMinutes, &s.Triggers, &s.LoggedAt)
	return &s, err
}

func (r *symptomRepoPG) Create(ctx context.Context, s *SymptomLog) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO symptom_logs (user_id, symptom_type, severity, description, duration_minutes, triggers, logged_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id`,
		s.UserID, s.SymptomType, s.Severity, s.Description, s.DurationMinutes, s.Triggers, s.LoggedAt,
	).Scan(&s.ID)
}

func (r *symptomRepoPG) ListByUser(ctx context.Context, userID int64, limit int) ([]*SymptomLog, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+symptomCols+` FROM symptom_logs
		WHERE user_id = $1 ORDER BY logged_at DESC LIMIT $2`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*SymptomLog
	for rows.Next() {
		s, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, s)
	}
	return items, rows.Err()
}
