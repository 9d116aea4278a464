package dashboard

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/bptrack/bptrack/internal/domain/medication"
	"github.com/bptrack/bptrack/internal/domain/reading"
	"github.com/bptrack/bptrack/internal/domain/reminder"
	"github.com/bptrack/bptrack/internal/domain/user"
	"github.com/bptrack/bptrack/internal/platform/envelope"
)

type fakeSources struct {
	latest   *reading.Reading
	steps    int
	goal     int
	sodium   float64
	failWith error
}

func (f *fakeSources) GetUser(_ context.Context, id int64) (*user.User, error) {
	if id != 1 {
		return nil, envelope.NotFoundf("User not found")
	}
	return &user.User{ID: 1, Name: "Ana"}, nil
}

func (f *fakeSources) Latest(context.Context, int64) (*reading.Reading, error) {
	return f.latest, nil
}

func (f *fakeSources) ListMedications(_ context.Context, userID int64, _ bool) ([]*medication.Medication, error) {
	return []*medication.Medication{{ID: 1, UserID: userID, MedicationName: "Amlodipine", Active: true}}, nil
}

func (f *fakeSources) Adherence(context.Context, int64) (*medication.Adherence, error) {
	return &medication.Adherence{ScheduledToday: 2, TakenToday: 1, Rate: 50, Label: "Needs Attention"}, nil
}

func (f *fakeSources) TodaySteps(context.Context, int64) (int, int, error) {
	return f.steps, f.goal, nil
}

func (f *fakeSources) Today(context.Context, int64) (*reminder.Schedule, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	return &reminder.Schedule{TotalToday: 3, TakenCount: 1, OverdueCount: 1}, nil
}

func (f *fakeSources) TodaySodium(context.Context, int64) (float64, error) {
	return f.sodium, nil
}

func newTestService(f *fakeSources) *Service {
	return NewService(Sources{Users: f, Readings: f, Medications: f, Activity: f, Reminders: f, Food: f}, zerolog.Nop())
}

func TestSummary(t *testing.T) {
	f := &fakeSources{
		latest: &reading.Reading{ID: 7, Systolic: 135, Diastolic: 85, Status: reading.StatusElevated},
		steps:  3750, goal: 5000, sodium: 1240.5,
	}
	sum, err := newTestService(f).Summary(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.BPStatus != reading.StatusElevated || sum.LatestReading.ID != 7 {
		t.Errorf("unexpected reading section %+v", sum)
	}
	if sum.Steps != (StepsToday{Steps: 3750, StepGoal: 5000, CompletionPercentage: 75}) {
		t.Errorf("unexpected steps %+v", sum.Steps)
	}
	if sum.Reminders != (ReminderCounts{Total: 3, Taken: 1, Overdue: 1}) {
		t.Errorf("unexpected reminders %+v", sum.Reminders)
	}
	if len(sum.ActiveMedications) != 1 || sum.Adherence.Rate != 50 || sum.TodaySodiumMg != 1240.5 {
		t.Errorf("unexpected summary %+v", sum)
	}
}

func TestSummary_NoReadings(t *testing.T) {
	sum, err := newTestService(&fakeSources{steps: 6000, goal: 5000}).Summary(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sum.BPStatus != reading.StatusNoData || sum.LatestReading != nil {
		t.Errorf("expected No data, got %+v", sum)
	}
	if !sum.Steps.GoalAchieved || sum.Steps.CompletionPercentage != 120 {
		t.Errorf("unexpected steps %+v", sum.Steps)
	}
}

func TestSummary_Errors(t *testing.T) {
	if _, err := newTestService(&fakeSources{}).Summary(context.Background(), 2); !errors.Is(err, envelope.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
	boom := errors.New("db down")
	if _, err := newTestService(&fakeSources{failWith: boom}).Summary(context.Background(), 1); !errors.Is(err, boom) {
		t.Errorf("expected section failure, got %v", err)
	}
}
