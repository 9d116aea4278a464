package user

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bptrack/bptrack/internal/platform/db"
	"github.com/bptrack/bptrack/internal/platform/envelope"
)

type userRepoPG struct{ pool *pgxpool.Pool }

func NewUserRepoPG(pool *pgxpool.Pool) UserRepository {
	return &userRepoPG{pool: pool}
}

func (r *userRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const userCols = `id, name, email, phone, age, target_steps, target_systolic, target_diastolic, created_at`

func (r *userRepoPG) scanRow(row pgx.Row) (*User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.Age,
		&u.TargetSteps, &u.TargetSystolic, &u.TargetDiastolic, &u.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, envelope.NotFoundf("User not found")
	}
	return &u, err
}

func (r *userRepoPG) Create(ctx context.Context, u *User) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO users (name, email, phone, age, target_steps, target_systolic, target_diastolic)
		VALUES ($1,$2,$3,$4,$5,$6,$7)
		RETURNING id, created_at`,
		u.Name, u.Email, u.Phone, u.Age, u.TargetSteps, u.TargetSystolic, u.TargetDiastolic,
	).Scan(&u.ID, &u.CreatedAt)
}

func (r *userRepoPG) GetByID(ctx context.Context, id int64) (*User, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+userCols+` FROM users WHERE id = $1`, id))
}

func (r *userRepoPG) SetStepGoal(ctx context.Context, id int64, goal int) error {
	tag, err := r.conn(ctx).Exec(ctx, `UPDATE users SET target_steps = $2 WHERE id = $1`, id, goal)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return envelope.NotFoundf("User not found")
	}
	return nil
}
