package activity

import (
	"time"

	"github.com/bptrack/bptrack/pkg/calendar"
)

// MaxWindowDays bounds a history query.
const MaxWindowDays = 366

// ActivityLog maps to the activity_logs table; one row per user per date.
type ActivityLog struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"user_id"`
	Date           calendar.Day `json:"date"`
	StepsCount     int          `json:"steps_count"`
	DistanceKm     *float64     `json:"distance_km"`
	ActiveMinutes  int          `json:"active_minutes"`
	CaloriesBurned *float64     `json:"calories_burned"`
	CreatedAt      time.Time    `json:"created_at"`
	GoalAchieved   bool         `json:"goal_achieved"`
}

// DayEntry is one day of a history window. Days without a log are zero.
type DayEntry struct {
	Date           calendar.Day `json:"date"`
	StepsCount     int          `json:"steps_count"`
	DistanceKm     *float64     `json:"distance_km"`
	ActiveMinutes  int          `json:"active_minutes"`
	CaloriesBurned *float64     `json:"calories_burned"`
	GoalAchieved   bool         `json:"goal_achieved"`
}

// Statistics are computed over the stored logs of a window.
type Statistics struct {
	TotalSteps          int `json:"total_steps"`
	AverageSteps        int `json:"average_steps"`
	DaysWithGoal        int `json:"days_with_goal"`
	GoalAchievementRate int `json:"goal_achievement_rate"`
	StepGoal            int `json:"step_goal"`
	DaysTracked         int `json:"days_tracked"`
}

// History is a zero-filled window, most recent day first.
type History struct {
	Days       []DayEntry `json:"activity_logs"`
	Statistics Statistics `json:"statistics"`
}

// Progress is the outcome of logging a day's activity.
type Progress struct {
	Log                  *ActivityLog `json:"activity_log"`
	GoalAchieved         bool         `json:"goal_achieved"`
	StepGoal             int          `json:"step_goal"`
	CompletionPercentage int          `json:"completion_percentage"`
}

// LogRequest is the body of POST /api/activity-tracking.
type LogRequest struct {
	UserID         *int64       `json:"user_id"`
	StepsCount     *int         `json:"steps_count"`
	DistanceKm     *float64     `json:"distance_km"`
	ActiveMinutes  *int         `json:"active_minutes"`
	CaloriesBurned *float64     `json:"calories_burned"`
	Date           calendar.Day `json:"date"`
}

// GoalRequest is the body of PUT /api/activity-tracking.
type GoalRequest struct {
	UserID   *int64 `json:"user_id"`
	StepGoal *int   `json:"step_goal"`
}
