package medication

import (
	"fmt"
	"strconv"
	"strings"
)

// MinutesPerDay is the length of the reminder clock.
const MinutesPerDay = 24 * 60

// Clock is a wall-clock time of day used for reminder times.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock accepts "H:MM" or "HH:MM" on a 24h clock.
func ParseClock(s string) (Clock, error) {
	hh, mm, ok := strings.Cut(strings.TrimSpace(s), ":")
	if !ok || len(mm) != 2 || len(hh) == 0 || len(hh) > 2 || !digits(hh) || !digits(mm) {
		return Clock{}, fmt.Errorf("invalid reminder time %q: expected HH:MM", s)
	}
	h, err1 := strconv.Atoi(hh)
	m, err2 := strconv.Atoi(mm)
	if err1 != nil || err2 != nil || h < 0 || h > 23 || m < 0 || m > 59 {
		return Clock{}, fmt.Errorf("invalid reminder time %q: expected HH:MM", s)
	}
	return Clock{Hour: h, Minute: m}, nil
}

func digits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Minutes returns the minutes since midnight.
func (c Clock) Minutes() int { return c.Hour*60 + c.Minute }

func (c Clock) String() string { return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute) }
