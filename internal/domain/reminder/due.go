package reminder

import (
	"time"

	"github.com/bptrack/bptrack/internal/domain/medication"
	"github.com/bptrack/bptrack/pkg/calendar"
)

// DueWindow is how far from its scheduled time a reminder counts as due.
const DueWindow = 15

// Due reports whether a reminder at clock is within DueWindow minutes of
// now's wall-clock time. Distance is measured on the 24h circle.
func Due(now time.Time, clock medication.Clock) bool {
	return clockDistance(now.Hour()*60+now.Minute(), clock.Minutes()) <= DueWindow
}

func clockDistance(a, b int) int {
	d := a - b
	if d < 0 {
		d = -d
	}
	d %= medication.MinutesPerDay
	return min(d, medication.MinutesPerDay-d)
}

// occurrence returns the instance of clock nearest to now in loc. A 23:55
// reminder checked at 00:05 belongs to the previous day.
func occurrence(now time.Time, clock medication.Clock, loc *time.Location) time.Time {
	now = now.In(loc)
	today := calendar.Of(now)
	best := today.At(clock.Hour, clock.Minute, loc)
	for _, offset := range []int{-1, 1} {
		cand := today.AddDays(offset).At(clock.Hour, clock.Minute, loc)
		if absDuration(cand.Sub(now)) < absDuration(best.Sub(now)) {
			best = cand
		}
	}
	return best
}

func absDuration(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}
	return d
}
