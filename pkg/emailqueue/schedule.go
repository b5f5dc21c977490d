package emailqueue

import (
	"time"

	"github.com/notikit/notikit/pkg/notification"
)

// dailySendHour is the local wall-clock hour daily-frequency emails go out.
const dailySendHour = 8

// NextSendTime computes when an email becomes eligible for sending given the
// user's effective frequency. Hourly and Daily are computed against the
// user's timezone; an unknown or empty timezone falls back to UTC.
func NextSendTime(freq notification.Frequency, now time.Time, timezone string) time.Time {
	loc, err := time.LoadLocation(timezone)
	if err != nil || timezone == "" {
		loc = time.UTC
	}
	local := now.In(loc)

	switch freq {
	case notification.FrequencyHourly:
		// Top of the next local clock hour, safe for half-hour offset zones.
		return time.Date(local.Year(), local.Month(), local.Day(), local.Hour(), 0, 0, 0, loc).Add(time.Hour)
	case notification.FrequencyDaily:
		next := local.AddDate(0, 0, 1)
		return time.Date(next.Year(), next.Month(), next.Day(), dailySendHour, 0, 0, 0, loc)
	default:
		return now
	}
}
