// Package dashboard assembles the home screen summary from the other
// resources.
package dashboard

import (
	"context"
	"math"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/bptrack/bptrack/internal/domain/medication"
	"github.com/bptrack/bptrack/internal/domain/reading"
	"github.com/bptrack/bptrack/internal/domain/reminder"
	"github.com/bptrack/bptrack/internal/domain/user"
)

type UserLookup interface {
	GetUser(ctx context.Context, id int64) (*user.User, error)
}

type ReadingSource interface {
	Latest(ctx context.Context, userID int64) (*reading.Reading, error)
}

type MedicationSource interface {
	ListMedications(ctx context.Context, userID int64, activeOnly bool) ([]*medication.Medication, error)
	Adherence(ctx context.Context, userID int64) (*medication.Adherence, error)
}

type ActivitySource interface {
	TodaySteps(ctx context.Context, userID int64) (steps, goal int, err error)
}

type ReminderSource interface {
	Today(ctx context.Context, userID int64) (*reminder.Schedule, error)
}

type FoodSource interface {
	TodaySodium(ctx context.Context, userID int64) (float64, error)
}

// Sources are the services the summary reads from.
type Sources struct {
	Users       UserLookup
	Readings    ReadingSource
	Medications MedicationSource
	Activity    ActivitySource
	Reminders   ReminderSource
	Food        FoodSource
}

type StepsToday struct {
	Steps                int  `json:"steps"`
	StepGoal             int  `json:"step_goal"`
	CompletionPercentage int  `json:"completion_percentage"`
	GoalAchieved         bool `json:"goal_achieved"`
}

type ReminderCounts struct {
	Total   int `json:"total_for_today"`
	Taken   int `json:"taken_count"`
	Overdue int `json:"overdue_count"`
}

// Summary is the dashboard payload.
type Summary struct {
	LatestReading     *reading.Reading         `json:"latest_reading"`
	BPStatus          string                   `json:"bp_status"`
	ActiveMedications []*medication.Medication `json:"active_medications"`
	Adherence         *medication.Adherence    `json:"medication_adherence"`
	Steps             StepsToday               `json:"steps_today"`
	Reminders         ReminderCounts           `json:"reminders_today"`
	TodaySodiumMg     float64                  `json:"today_sodium_mg"`
}

type Service struct {
	src    Sources
	logger zerolog.Logger
}

func NewService(src Sources, logger zerolog.Logger) *Service {
	return &Service{src: src, logger: logger}
}

// Summary reads every section concurrently; the first failure cancels the rest.
func (s *Service) Summary(ctx context.Context, userID int64) (*Summary, error) {
	if _, err := s.src.Users.GetUser(ctx, userID); err != nil {
		return nil, err
	}

	out := &Summary{}
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		r, err := s.src.Readings.Latest(ctx, userID)
		out.LatestReading = r
		out.BPStatus = reading.StatusOf(r)
		return err
	})
	g.Go(func() error {
		meds, err := s.src.Medications.ListMedications(ctx, userID, true)
		out.ActiveMedications = meds
		return err
	})
	g.Go(func() error {
		a, err := s.src.Medications.Adherence(ctx, userID)
		out.Adherence = a
		return err
	})
	g.Go(func() error {
		steps, goal, err := s.src.Activity.TodaySteps(ctx, userID)
		out.Steps = StepsToday{Steps: steps, StepGoal: goal, GoalAchieved: goal > 0 && steps >= goal}
		if goal > 0 {
			out.Steps.CompletionPercentage = int(math.Round(float64(steps) / float64(goal) * 100))
		}
		return err
	})
	g.Go(func() error {
		sched, err := s.src.Reminders.Today(ctx, userID)
		if err != nil {
			return err
		}
		out.Reminders = ReminderCounts{Total: sched.TotalToday, Taken: sched.TakenCount, Overdue: sched.OverdueCount}
		return nil
	})
	g.Go(func() error {
		mg, err := s.src.Food.TodaySodium(ctx, userID)
		out.TodaySodiumMg = mg
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}
