package reminder

import (
	"context"
	"testing"
	"time"

	"github.com/bptrack/bptrack/internal/domain/medication"
	"github.com/bptrack/bptrack/internal/domain/user"
	"github.com/bptrack/bptrack/internal/platform/db/dbtest"
	"github.com/bptrack/bptrack/pkg/calendar"
)

func TestDeliveryRepoPG_ClaimOnce(t *testing.T) {
	pool := dbtest.Pool(t)
	ctx := context.Background()

	u := &user.User{Name: "Ada"}
	if err := user.NewUserRepoPG(pool).Create(ctx, u); err != nil {
		t.Fatalf("create user: %v", err)
	}
	m := &medication.Medication{UserID: u.ID, MedicationName: "Lisinopril", ReminderTimes: []string{"08:00"}, Active: true}
	if err := medication.NewMedicationRepoPG(pool).Create(ctx, m); err != nil {
		t.Fatalf("create medication: %v", err)
	}

	repo := NewDeliveryRepoPG(pool)
	day := calendar.New(2026, time.March, 14)
	d := Delivery{MedicationID: m.ID, ReminderTime: "08:00", Date: day, Method: "email"}

	ok, err := repo.Claim(ctx, d)
	if err != nil || !ok {
		t.Fatalf("expected first claim to win, got %v %v", ok, err)
	}
	ok, err = repo.Claim(ctx, Delivery{MedicationID: m.ID, ReminderTime: "08:00", Date: day, Method: "sms"})
	if err != nil || ok {
		t.Fatalf("expected duplicate claim to lose, got %v %v", ok, err)
	}

	next := d
	next.Date = day.AddDays(1)
	if ok, err := repo.Claim(ctx, next); err != nil || !ok {
		t.Errorf("expected next day to be claimable, got %v %v", ok, err)
	}

	if err := repo.Release(ctx, d); err != nil {
		t.Fatalf("release: %v", err)
	}
	if ok, err := repo.Claim(ctx, d); err != nil || !ok {
		t.Errorf("expected claim after release to win, got %v %v", ok, err)
	}
}
