package emailqueue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStorage is the PostgreSQL-backed Storage implementation. The claim runs
// as a single UPDATE with a locked subselect, so concurrent workers can never
// claim the same row twice; SKIP LOCKED keeps racing workers from blocking
// each other.
type PGStorage struct {
	pool  *pgxpool.Pool
	lease time.Duration
}

// NewPGStorage creates a queue store backed by the given connection pool.
func NewPGStorage(pool *pgxpool.Pool, opts ...PGOption) (*PGStorage, error) {
	if pool == nil {
		return nil, ErrStorageNil
	}
	s := &PGStorage{
		pool:  pool,
		lease: DefaultLeaseTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// PGOption configures PGStorage.
type PGOption func(*PGStorage)

// WithPGLeaseTimeout overrides the claim lease staleness window.
func WithPGLeaseTimeout(d time.Duration) PGOption {
	return func(s *PGStorage) {
		if d > 0 {
			s.lease = d
		}
	}
}

const entryColumns = `id, notification_id, delivery_id, username, recipient, subject,
	html_body, text_body, priority, status, scheduled_at, sent_at, retry_count,
	failure_reason, processing_instance, processing_started_at, created_at, updated_at`

func (s *PGStorage) CreateEntry(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	}
	if e.Recipient == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidEntry)
	}

	_, err := s.pool.Exec(ctx, `
		INSERT INTO email_queue (
			id, notification_id, delivery_id, username, recipient, subject,
			html_body, text_body, priority, status, scheduled_at, retry_count,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, now())`,
		e.ID, e.NotificationID, e.DeliveryID, e.Username, e.Recipient, e.Subject,
		e.HTMLBody, e.TextBody, e.Priority, e.Status, e.ScheduledAt, e.RetryCount,
		e.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("emailqueue: failed to insert entry: %w", err)
	}
	return nil
}

func (s *PGStorage) Entry(ctx context.Context, id string) (*Entry, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+entryColumns+` FROM email_queue WHERE id = $1`, id)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEntryNotFound
		}
		return nil, fmt.Errorf("emailqueue: failed to load entry: %w", err)
	}
	return e, nil
}

func (s *PGStorage) ClaimPending(ctx context.Context, instanceID string, batchSize int) ([]Entry, error) {
	if batchSize <= 0 {
		return nil, nil
	}

	// Atomic claim: the subselect locks eligible rows and the outer UPDATE
	// transitions them in the same statement. Eligible rows are due Pending
	// rows plus Processing rows whose lease has gone stale.
	rows, err := s.pool.Query(ctx, `
		UPDATE email_queue SET
			status = 'processing',
			processing_instance = $1,
			processing_started_at = now(),
			updated_at = now()
		WHERE id IN (
			SELECT id FROM email_queue
			WHERE (status = 'pending' AND scheduled_at <= now())
			   OR (status = 'processing' AND processing_started_at < now() - $2::interval)
			ORDER BY
				CASE WHEN priority = 'high' THEN 0 ELSE 1 END,
				scheduled_at
			LIMIT $3
			FOR UPDATE SKIP LOCKED
		)
		RETURNING `+entryColumns,
		instanceID, s.lease, batchSize,
	)
	if err != nil {
		return nil, fmt.Errorf("emailqueue: claim failed: %w", err)
	}
	defer rows.Close()

	var claimed []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("emailqueue: failed to scan claimed entry: %w", err)
		}
		claimed = append(claimed, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("emailqueue: claim failed: %w", err)
	}
	return claimed, nil
}

func (s *PGStorage) MarkSent(ctx context.Context, id string, at time.Time) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE email_queue SET
			status = 'sent',
			sent_at = $2,
			failure_reason = '',
			processing_instance = '',
			processing_started_at = NULL,
			updated_at = now()
		WHERE id = $1`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("emailqueue: failed to mark sent: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *PGStorage) MarkFailed(ctx context.Context, id string, reason string) error {
	tag, err := s.pool.Exec(ctx, `
		UPDATE email_queue SET
			status = 'failed',
			failure_reason = $2,
			processing_instance = '',
			processing_started_at = NULL,
			updated_at = now()
		WHERE id = $1`,
		id, reason,
	)
	if err != nil {
		return fmt.Errorf("emailqueue: failed to mark failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEntryNotFound
	}
	return nil
}

func (s *PGStorage) ReleaseForRetry(ctx context.Context, maxRetries int, cooldown time.Duration) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		UPDATE email_queue SET
			status = 'pending',
			retry_count = retry_count + 1,
			failure_reason = '',
			scheduled_at = now(),
			updated_at = now()
		WHERE status = 'failed'
		  AND retry_count < $1
		  AND updated_at <= now() - $2::interval`,
		maxRetries, cooldown,
	)
	if err != nil {
		return 0, fmt.Errorf("emailqueue: retry sweep failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func (s *PGStorage) Stats(ctx context.Context, maxRetries int) (Stats, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE status = 'pending'),
			COUNT(*) FILTER (WHERE status = 'processing'),
			COUNT(*) FILTER (WHERE status = 'sent'),
			COUNT(*) FILTER (WHERE status = 'failed'),
			COUNT(*) FILTER (WHERE status = 'failed' AND retry_count >= $1)
		FROM email_queue`,
		maxRetries,
	)

	var stats Stats
	if err := row.Scan(&stats.Pending, &stats.Processing, &stats.Sent, &stats.Failed, &stats.Exhausted); err != nil {
		return Stats{}, fmt.Errorf("emailqueue: failed to load stats: %w", err)
	}
	return stats, nil
}

func (s *PGStorage) PurgeTerminalOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	tag, err := s.pool.Exec(ctx, `
		DELETE FROM email_queue
		WHERE status IN ('sent', 'failed') AND created_at < $1`,
		cutoff,
	)
	if err != nil {
		return 0, fmt.Errorf("emailqueue: purge failed: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

func scanEntry(row pgx.Row) (*Entry, error) {
	var e Entry
	err := row.Scan(
		&e.ID, &e.NotificationID, &e.DeliveryID, &e.Username, &e.Recipient,
		&e.Subject, &e.HTMLBody, &e.TextBody, &e.Priority, &e.Status,
		&e.ScheduledAt, &e.SentAt, &e.RetryCount, &e.FailureReason,
		&e.ProcessingInstance, &e.ProcessingStartedAt, &e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
