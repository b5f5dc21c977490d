package preferences

import (
	"time"

	"github.com/notikit/notikit/pkg/notification"
)

// InQuietWindow reports whether a wall-clock time falls inside the quiet
// window [start, end]. Both ends are inclusive. When start > end the window
// wraps midnight: 22:00–06:00 covers 23:30 and 02:00 but not 12:00.
func InQuietWindow(t, start, end notification.TimeOfDay) bool {
	m, s, e := t.Minutes(), start.Minutes(), end.Minutes()
	if s <= e {
		return m >= s && m <= e
	}
	return m >= s || m <= e
}

// localTimeOfDay converts an instant to the user's wall clock. An empty or
// unknown timezone falls back to UTC rather than failing the decision.
func localTimeOfDay(instant time.Time, timezone string) notification.TimeOfDay {
	loc := time.UTC
	if timezone != "" {
		if l, err := time.LoadLocation(timezone); err == nil {
			loc = l
		}
	}
	local := instant.In(loc)
	return notification.TimeOfDay{Hour: local.Hour(), Minute: local.Minute()}
}
