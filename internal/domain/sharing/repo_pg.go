package sharing

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bptrack/bptrack/internal/platform/db"
	"github.com/bptrack/bptrack/internal/platform/envelope"
)

type accessRepoPG struct{ pool *pgxpool.Pool }

func NewAccessRepoPG(pool *pgxpool.Pool) AccessRepository {
	return &accessRepoPG{pool: pool}
}

func (r *accessRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const accessCols = `id, user_id, doctor_email, doctor_name, access_level, access_granted,
	expires_at, granted_at, created_at, token_id`

func (r *accessRepoPG) scanRow(row pgx.Row) (*DoctorAccess, error) {
	var a DoctorAccess
	err := row.Scan(&a.ID, &a.UserID, &a.DoctorEmail, &a.DoctorName, &a.AccessLevel,
		&a.AccessGranted, &a.ExpiresAt, &a.GrantedAt, &a.CreatedAt, &a.TokenID)
	return &a, err
}

func (r *accessRepoPG) Upsert(ctx context.Context, a *DoctorAccess) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO doctor_access (user_id, doctor_email, doctor_name, access_level,
			access_granted, expires_at, granted_at, token_id)
		VALUES ($1,$2,$3,$4,TRUE,$5,$6,$7)
		ON CONFLICT (user_id, doctor_email) DO UPDATE SET
			doctor_name = EXCLUDED.doctor_name,
			access_level = EXCLUDED.access_level,
			access_granted = TRUE,
			expires_at = EXCLUDED.expires_at,
			granted_at = EXCLUDED.granted_at,
			token_id = EXCLUDED.token_id
		RETURNING id, access_granted, created_at`,
		a.UserID, a.DoctorEmail, a.DoctorName, a.AccessLevel, a.ExpiresAt, a.GrantedAt, a.TokenID,
	).Scan(&a.ID, &a.AccessGranted, &a.CreatedAt)
}

func (r *accessRepoPG) ListByUser(ctx context.Context, userID int64) ([]*DoctorAccess, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+accessCols+` FROM doctor_access
		WHERE user_id = $1 ORDER BY granted_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*DoctorAccess
	for rows.Next() {
		a, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, a)
	}
	return items, rows.Err()
}

func (r *accessRepoPG) GetActive(ctx context.Context, userID int64, email, tokenID string, now time.Time) (*DoctorAccess, error) {
	a, err := r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+accessCols+` FROM doctor_access
		WHERE user_id = $1 AND doctor_email = $2 AND token_id = $3
			AND access_granted AND expires_at > $4`, userID, email, tokenID, now))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, envelope.NotFoundf("Doctor access not found")
	}
	return a, err
}

func (r *accessRepoPG) Revoke(ctx context.Context, userID int64, email string) (bool, error) {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE doctor_access SET access_granted = FALSE
		WHERE user_id = $1 AND doctor_email = $2`, userID, email)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
