package publisher

import (
	"time"

	"github.com/notikit/notikit/pkg/cache"
)

// DefaultPollWindow is the sliding window within which repeated polls of the
// same (user, notification) pair are suppressed.
const DefaultPollWindow = 5 * time.Minute

// PollTracker de-duplicates polling-mode reads. Polling has no "already
// shown" acknowledgment, so without this a client would re-display the same
// pending notification on every poll.
type PollTracker struct {
	seen *cache.TTLCache[string, struct{}]
}

// NewPollTracker creates a tracker with the given suppression window.
// A non-positive window falls back to DefaultPollWindow.
func NewPollTracker(window time.Duration) *PollTracker {
	if window <= 0 {
		window = DefaultPollWindow
	}
	return &PollTracker{
		seen: cache.NewTTLCache[string, struct{}](window),
	}
}

// FirstSight reports whether this is the first poll of the pair within the
// window, recording it as seen. Subsequent calls inside the window return
// false; after the window expires the pair is reported again.
func (t *PollTracker) FirstSight(username, notificationID string) bool {
	return t.seen.PutIfAbsent(username+"|"+notificationID, struct{}{})
}

// Forget drops the pair so the next poll reports it again, used when a
// client explicitly dismisses and re-requests history.
func (t *PollTracker) Forget(username, notificationID string) {
	t.seen.Remove(username + "|" + notificationID)
}
