package emailqueue

import (
	"context"
	"time"
)

// Storage persists queue entries and implements the claim lifecycle.
// Implementations must make ClaimPending atomic with respect to concurrent
// callers: two workers racing on the same row can never both win the claim.
type Storage interface {
	// CreateEntry inserts a new entry.
	CreateEntry(ctx context.Context, e Entry) error

	// Entry retrieves a single entry by id. Returns ErrEntryNotFound if absent.
	Entry(ctx context.Context, id string) (*Entry, error)

	// ClaimPending atomically claims up to batchSize rows for instanceID.
	// Eligible rows are Pending with ScheduledAt due, plus Processing rows
	// whose lease is older than DefaultLeaseTimeout. High priority wins over
	// Normal, then earliest ScheduledAt. Claimed rows transition to
	// Processing with the instance and lease timestamp recorded, and are
	// returned in their post-claim state.
	ClaimPending(ctx context.Context, instanceID string, batchSize int) ([]Entry, error)

	// MarkSent transitions an entry to Sent and records the send time.
	MarkSent(ctx context.Context, id string, at time.Time) error

	// MarkFailed transitions an entry to Failed and records the reason.
	MarkFailed(ctx context.Context, id string, reason string) error

	// ReleaseForRetry returns Failed rows with remaining retry budget that
	// have cooled down to Pending, incrementing their retry count and
	// clearing the failure reason. Rows at or over maxRetries are never
	// touched. Returns the number of rows released.
	ReleaseForRetry(ctx context.Context, maxRetries int, cooldown time.Duration) (int, error)

	// Stats returns a snapshot of queue counts. maxRetries determines which
	// Failed rows count as Exhausted.
	Stats(ctx context.Context, maxRetries int) (Stats, error)

	// PurgeTerminalOlderThan deletes Sent and Failed rows created before the
	// cutoff. Returns the number of rows removed.
	PurgeTerminalOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}
