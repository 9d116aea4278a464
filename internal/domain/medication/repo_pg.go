package medication

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/bptrack/bptrack/internal/platform/db"
	"github.com/bptrack/bptrack/internal/platform/envelope"
)

// -- Medication --

type medicationRepoPG struct{ pool *pgxpool.Pool }

func NewMedicationRepoPG(pool *pgxpool.Pool) MedicationRepository {
	return &medicationRepoPG{pool: pool}
}

func (r *medicationRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

const medCols = `id, user_id, medication_name, dosage, frequency, times_per_day, reminder_times,
	prescribing_doctor, start_date, end_date, notes, active, created_at`

func (r *medicationRepoPG) scanRow(row pgx.Row) (*Medication, error) {
	var m Medication
	err := row.Scan(&m.ID, &m.UserID, &m.MedicationName, &m.Dosage, &m.Frequency, &m.TimesPerDay,
		&m.ReminderTimes, &m.PrescribingDoctor, &m.StartDate, &m.EndDate, &m.Notes,
		&m.Active, &m.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, envelope.NotFoundf("Medication not found")
	}
	return &m, err
}

func (r *medicationRepoPG) scanRows(rows pgx.Rows) ([]*Medication, error) {
	defer rows.Close()
	var items []*Medication
	for rows.Next() {
		m, err := r.scanRow(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (r *medicationRepoPG) Create(ctx context.Context, m *Medication) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medications (user_id, medication_name, dosage, frequency, times_per_day,
			reminder_times, prescribing_doctor, start_date, end_date, notes, active)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
		RETURNING id, created_at`,
		m.UserID, m.MedicationName, m.Dosage, m.Frequency, m.TimesPerDay,
		m.ReminderTimes, m.PrescribingDoctor, m.StartDate, m.EndDate, m.Notes, m.Active,
	).Scan(&m.ID, &m.CreatedAt)
}

func (r *medicationRepoPG) GetByID(ctx context.Context, id int64) (*Medication, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `SELECT `+medCols+` FROM medications WHERE id = $1`, id))
}

func (r *medicationRepoPG) ListByUser(ctx context.Context, userID int64, activeOnly bool) ([]*Medication, error) {
	query := `SELECT ` + medCols + ` FROM medications WHERE user_id = $1`
	if activeOnly {
		query += ` AND active = true`
	}
	rows, err := r.conn(ctx).Query(ctx, query+` ORDER BY medication_name`, userID)
	if err != nil {
		return nil, err
	}
	return r.scanRows(rows)
}

func (r *medicationRepoPG) SetActive(ctx context.Context, id, userID int64, active bool) (*Medication, error) {
	return r.scanRow(r.conn(ctx).QueryRow(ctx, `
		UPDATE medications SET active = $3 WHERE id = $1 AND user_id = $2
		RETURNING `+medCols, id, userID, active))
}

func (r *medicationRepoPG) ListActiveWithReminders(ctx context.Context) ([]*Medication, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+medCols+` FROM medications
		WHERE active = true AND cardinality(reminder_times) > 0
		ORDER BY user_id, id`)
	if err != nil {
		return nil, err
	}
	return r.scanRows(rows)
}

// -- MedicationLog --

type logRepoPG struct{ pool *pgxpool.Pool }

func NewLogRepoPG(pool *pgxpool.Pool) LogRepository {
	return &logRepoPG{pool: pool}
}

func (r *logRepoPG) conn(ctx context.Context) db.Querier {
	return db.Conn(ctx, r.pool)
}

func (r *logRepoPG) Create(ctx context.Context, l *MedicationLog) error {
	return r.conn(ctx).QueryRow(ctx, `
		INSERT INTO medication_logs (medication_id, user_id, taken, taken_at, notes)
		VALUES ($1,$2,$3,$4,$5)
		RETURNING id`,
		l.MedicationID, l.UserID, l.Taken, l.TakenAt, l.Notes,
	).Scan(&l.ID)
}

func (r *logRepoPG) ListTaken(ctx context.Context, userID int64, from, to time.Time) ([]*MedicationLog, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT id, medication_id, user_id, taken, taken_at, notes FROM medication_logs
		WHERE user_id = $1 AND taken = true AND taken_at >= $2 AND taken_at < $3
		ORDER BY taken_at`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*MedicationLog
	for rows.Next() {
		var l MedicationLog
		if err := rows.Scan(&l.ID, &l.MedicationID, &l.UserID, &l.Taken, &l.TakenAt, &l.Notes); err != nil {
			return nil, err
		}
		items = append(items, &l)
	}
	return items, rows.Err()
}
