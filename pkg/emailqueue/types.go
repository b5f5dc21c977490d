package emailqueue

import (
	"time"

	"github.com/notikit/notikit/pkg/mailer"
)

// DefaultLeaseTimeout is how long a Processing claim is honored before any
// worker may reclaim the row. It doubles as the crash-recovery window: rows
// claimed by a worker that died mid-batch become eligible again once the
// lease ages out, without explicit crash detection.
const DefaultLeaseTimeout = 5 * time.Minute

// Status is the lifecycle state of a queue entry.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusSent       Status = "sent"
	StatusFailed     Status = "failed"
)

// Terminal reports whether the status is an end state for retention purposes.
// Failed rows are terminal only once the retry sweep stops touching them.
func (s Status) Terminal() bool {
	return s == StatusSent || s == StatusFailed
}

// Entry is one queued outbound email. Content is rendered at enqueue time so
// the send path needs no template or settings lookups.
type Entry struct {
	ID                  string          `json:"id"`
	NotificationID      string          `json:"notification_id"`
	DeliveryID          string          `json:"delivery_id"`
	Username            string          `json:"username"`
	Recipient           string          `json:"recipient"`
	Subject             string          `json:"subject"`
	HTMLBody            string          `json:"html_body,omitempty"`
	TextBody            string          `json:"text_body,omitempty"`
	Priority            mailer.Priority `json:"priority"`
	Status              Status          `json:"status"`
	ScheduledAt         time.Time       `json:"scheduled_at"`
	SentAt              *time.Time      `json:"sent_at,omitempty"`
	RetryCount          int             `json:"retry_count"`
	FailureReason       string          `json:"failure_reason,omitempty"`
	ProcessingInstance  string          `json:"processing_instance,omitempty"`
	ProcessingStartedAt *time.Time      `json:"processing_started_at,omitempty"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}

// Stats is a point-in-time snapshot of queue state. Exhausted counts Failed
// rows whose retry budget is spent; they stay Failed until purged.
type Stats struct {
	Pending    int `json:"pending"`
	Processing int `json:"processing"`
	Sent       int `json:"sent"`
	Failed     int `json:"failed"`
	Exhausted  int `json:"exhausted"`
}
