package activity

import (
	"context"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/bptrack/bptrack/internal/platform/envelope"
	"github.com/bptrack/bptrack/internal/platform/websocket"
	"github.com/bptrack/bptrack/pkg/calendar"
)

const EventLogged = "activity.logged"

// GoalStore reads and updates a user's daily step goal.
type GoalStore interface {
	StepGoal(ctx context.Context, userID int64) (int, error)
	SetStepGoal(ctx context.Context, userID int64, goal int) error
}

type Service struct {
	repo   ActivityRepository
	goals  GoalStore
	pub    websocket.EventPublisher
	logger zerolog.Logger
	loc    *time.Location
	now    func() time.Time
}

func NewService(repo ActivityRepository, goals GoalStore, pub websocket.EventPublisher, logger zerolog.Logger, loc *time.Location) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{repo: repo, goals: goals, pub: pub, logger: logger, loc: loc, now: time.Now}
}

// Today returns the current date in the configured zone.
func (s *Service) Today() calendar.Day {
	return calendar.Of(s.now().In(s.loc))
}

// LogActivity records the day's totals, replacing any earlier entry for
// the same date.
func (s *Service) LogActivity(ctx context.Context, userID int64, req LogRequest) (*Progress, error) {
	if req.StepsCount == nil {
		return nil, envelope.Invalidf("user_id and steps_count required")
	}
	if *req.StepsCount < 0 {
		return nil, envelope.Invalidf("steps_count must not be negative")
	}
	if req.ActiveMinutes != nil && (*req.ActiveMinutes < 0 || *req.ActiveMinutes > 24*60) {
		return nil, envelope.Invalidf("active_minutes must be between 0 and 1440")
	}
	if req.DistanceKm != nil && *req.DistanceKm < 0 {
		return nil, envelope.Invalidf("distance_km must not be negative")
	}
	if req.CaloriesBurned != nil && *req.CaloriesBurned < 0 {
		return nil, envelope.Invalidf("calories_burned must not be negative")
	}
	date := req.Date
	if date.IsZero() {
		date = s.Today()
	}
	if date.After(s.Today().AddDays(1)) {
		return nil, envelope.Invalidf("date must not be in the future")
	}

	goal, err := s.goals.StepGoal(ctx, userID)
	if err != nil {
		return nil, err
	}

	l := &ActivityLog{
		UserID:         userID,
		Date:           date,
		StepsCount:     *req.StepsCount,
		DistanceKm:     req.DistanceKm,
		CaloriesBurned: req.CaloriesBurned,
	}
	if req.ActiveMinutes != nil {
		l.ActiveMinutes = *req.ActiveMinutes
	}
	if err := s.repo.Upsert(ctx, l); err != nil {
		return nil, err
	}
	l.GoalAchieved = l.StepsCount >= goal

	p := &Progress{
		Log:                  l,
		GoalAchieved:         l.GoalAchieved,
		StepGoal:             goal,
		CompletionPercentage: percent(l.StepsCount, goal),
	}
	websocket.PublishBestEffort(ctx, s.pub, s.logger, websocket.NewEvent(EventLogged, userID, l.ID,
		map[string]any{"date": l.Date, "steps_count": l.StepsCount, "goal_achieved": l.GoalAchieved}))
	return p, nil
}

// LastDays returns the history window of n days ending today.
func (s *Service) LastDays(ctx context.Context, userID int64, n int) (*History, error) {
	if n < 1 || n > MaxWindowDays {
		return nil, envelope.Invalidf("days must be between 1 and %d", MaxWindowDays)
	}
	today := s.Today()
	return s.history(ctx, userID, today.AddDays(-(n - 1)), today)
}

// Range returns the history window [from, to].
func (s *Service) Range(ctx context.Context, userID int64, from, to calendar.Day) (*History, error) {
	if to.Before(from) {
		return nil, envelope.Invalidf("date_from must not be after date_to")
	}
	if from.DaysUntil(to)+1 > MaxWindowDays {
		return nil, envelope.Invalidf("date range must not exceed %d days", MaxWindowDays)
	}
	return s.history(ctx, userID, from, to)
}

func (s *Service) history(ctx context.Context, userID int64, from, to calendar.Day) (*History, error) {
	logs, err := s.repo.ListRange(ctx, userID, from, to)
	if err != nil {
		return nil, err
	}
	goal, err := s.goals.StepGoal(ctx, userID)
	if err != nil {
		return nil, err
	}

	byDate := make(map[string]*ActivityLog, len(logs))
	stats := Statistics{StepGoal: goal, DaysTracked: len(logs)}
	for _, l := range logs {
		byDate[l.Date.String()] = l
		stats.TotalSteps += l.StepsCount
		if l.StepsCount >= goal {
			stats.DaysWithGoal++
		}
	}
	if len(logs) > 0 {
		stats.AverageSteps = int(math.Round(float64(stats.TotalSteps) / float64(len(logs))))
		stats.GoalAchievementRate = percent(stats.DaysWithGoal, len(logs))
	}

	days := make([]DayEntry, 0, from.DaysUntil(to)+1)
	for d := to; !d.Before(from); d = d.AddDays(-1) {
		entry := DayEntry{Date: d}
		if l, ok := byDate[d.String()]; ok {
			entry.StepsCount = l.StepsCount
			entry.DistanceKm = l.DistanceKm
			entry.ActiveMinutes = l.ActiveMinutes
			entry.CaloriesBurned = l.CaloriesBurned
			entry.GoalAchieved = l.StepsCount >= goal
		}
		days = append(days, entry)
	}
	return &History{Days: days, Statistics: stats}, nil
}

func (s *Service) SetStepGoal(ctx context.Context, userID int64, goal int) error {
	return s.goals.SetStepGoal(ctx, userID, goal)
}

// TodaySteps returns today's step count and the user's goal.
func (s *Service) TodaySteps(ctx context.Context, userID int64) (steps, goal int, err error) {
	today := s.Today()
	logs, err := s.repo.ListRange(ctx, userID, today, today)
	if err != nil {
		return 0, 0, err
	}
	if goal, err = s.goals.StepGoal(ctx, userID); err != nil {
		return 0, 0, err
	}
	if len(logs) > 0 {
		steps = logs[0].StepsCount
	}
	return steps, goal, nil
}

// percent is round(part/whole*100); a non-positive whole yields 0.
func percent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(whole) * 100))
}
