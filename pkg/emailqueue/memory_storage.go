package emailqueue

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/notikit/notikit/pkg/mailer"
)

// MemoryStorage is an in-memory Storage implementation for development and
// tests. All lifecycle transitions, claiming included, happen under a single
// mutex, which gives the same exclusivity guarantee a transactional store
// provides with row locks.
type MemoryStorage struct {
	mu      sync.Mutex
	entries map[string]*Entry
	lease   time.Duration
	now     func() time.Time
}

// MemoryOption configures MemoryStorage.
type MemoryOption func(*MemoryStorage)

// WithLeaseTimeout overrides the claim lease staleness window.
func WithLeaseTimeout(d time.Duration) MemoryOption {
	return func(s *MemoryStorage) {
		if d > 0 {
			s.lease = d
		}
	}
}

// WithClock swaps the time source, used by tests to age leases.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStorage) {
		if now != nil {
			s.now = now
		}
	}
}

// NewMemoryStorage creates an empty in-memory queue store.
func NewMemoryStorage(opts ...MemoryOption) *MemoryStorage {
	s := &MemoryStorage{
		entries: make(map[string]*Entry),
		lease:   DefaultLeaseTimeout,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStorage) CreateEntry(ctx context.Context, e Entry) error {
	if e.ID == "" {
		return fmt.Errorf("%w: id is required", ErrInvalidEntry)
	}
	if e.Recipient == "" {
		return fmt.Errorf("%w: recipient is required", ErrInvalidEntry)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[e.ID]; exists {
		return fmt.Errorf("%w: entry %s already exists", ErrInvalidEntry, e.ID)
	}
	clone := e
	if clone.UpdatedAt.IsZero() {
		clone.UpdatedAt = s.now()
	}
	s.entries[e.ID] = &clone
	return nil
}

func (s *MemoryStorage) Entry(ctx context.Context, id string) (*Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return nil, ErrEntryNotFound
	}
	clone := *e
	return &clone, nil
}

func (s *MemoryStorage) ClaimPending(ctx context.Context, instanceID string, batchSize int) ([]Entry, error) {
	if batchSize <= 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	staleBefore := now.Add(-s.lease)

	var eligible []*Entry
	for _, e := range s.entries {
		switch e.Status {
		case StatusPending:
			if !e.ScheduledAt.After(now) {
				eligible = append(eligible, e)
			}
		case StatusProcessing:
			if e.ProcessingStartedAt != nil && e.ProcessingStartedAt.Before(staleBefore) {
				eligible = append(eligible, e)
			}
		}
	}

	sort.Slice(eligible, func(i, j int) bool {
		if eligible[i].Priority != eligible[j].Priority {
			return eligible[i].Priority == mailer.PriorityHigh
		}
		return eligible[i].ScheduledAt.Before(eligible[j].ScheduledAt)
	})

	if len(eligible) > batchSize {
		eligible = eligible[:batchSize]
	}

	claimed := make([]Entry, 0, len(eligible))
	for _, e := range eligible {
		startedAt := now
		e.Status = StatusProcessing
		e.ProcessingInstance = instanceID
		e.ProcessingStartedAt = &startedAt
		e.UpdatedAt = now
		claimed = append(claimed, *e)
	}
	return claimed, nil
}

func (s *MemoryStorage) MarkSent(ctx context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	sentAt := at
	e.Status = StatusSent
	e.SentAt = &sentAt
	e.FailureReason = ""
	e.ProcessingInstance = ""
	e.ProcessingStartedAt = nil
	e.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStorage) MarkFailed(ctx context.Context, id string, reason string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[id]
	if !ok {
		return ErrEntryNotFound
	}
	e.Status = StatusFailed
	e.FailureReason = reason
	e.ProcessingInstance = ""
	e.ProcessingStartedAt = nil
	e.UpdatedAt = s.now()
	return nil
}

func (s *MemoryStorage) ReleaseForRetry(ctx context.Context, maxRetries int, cooldown time.Duration) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	cooledBefore := now.Add(-cooldown)

	released := 0
	for _, e := range s.entries {
		if e.Status != StatusFailed || e.RetryCount >= maxRetries {
			continue
		}
		if e.UpdatedAt.After(cooledBefore) {
			continue
		}
		e.Status = StatusPending
		e.RetryCount++
		e.FailureReason = ""
		e.ScheduledAt = now
		e.UpdatedAt = now
		released++
	}
	return released, nil
}

func (s *MemoryStorage) Stats(ctx context.Context, maxRetries int) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var stats Stats
	for _, e := range s.entries {
		switch e.Status {
		case StatusPending:
			stats.Pending++
		case StatusProcessing:
			stats.Processing++
		case StatusSent:
			stats.Sent++
		case StatusFailed:
			stats.Failed++
			if e.RetryCount >= maxRetries {
				stats.Exhausted++
			}
		}
	}
	return stats, nil
}

func (s *MemoryStorage) PurgeTerminalOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for id, e := range s.entries {
		if e.Status.Terminal() && e.CreatedAt.Before(cutoff) {
			delete(s.entries, id)
			removed++
		}
	}
	return removed, nil
}
