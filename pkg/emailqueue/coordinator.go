package emailqueue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/notikit/notikit/pkg/logger"
	"github.com/notikit/notikit/pkg/mailer"
	"github.com/notikit/notikit/pkg/notification"
	"github.com/notikit/notikit/pkg/templates"
)

const (
	// DefaultMaxRetries bounds how many times a failed send re-enters the
	// claim cycle before the row is left Failed permanently.
	DefaultMaxRetries = 3

	// DefaultRetryCooldown is how long a failed row rests before the sweep
	// returns it to Pending.
	DefaultRetryCooldown = 10 * time.Minute
)

// Coordinator owns the email dispatch lifecycle: rendering and enqueueing on
// one side, claim/send/retry on the other. Multiple instances may run the
// send side concurrently; exclusivity comes from Storage.ClaimPending.
type Coordinator struct {
	storage    Storage
	engine     *templates.Engine
	sender     mailer.Sender
	deliveries notification.DeliveryStore

	instanceID    string
	maxRetries    int
	retryCooldown time.Duration
	logger        *slog.Logger
	now           func() time.Time
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithMaxRetries overrides the retry budget per entry.
func WithMaxRetries(n int) CoordinatorOption {
	return func(c *Coordinator) {
		if n >= 0 {
			c.maxRetries = n
		}
	}
}

// WithRetryCooldown overrides the rest period before a failed row is retried.
func WithRetryCooldown(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > 0 {
			c.retryCooldown = d
		}
	}
}

// WithInstanceID sets the claim lease owner id. Defaults to a random uuid
// per Coordinator, which is correct for one coordinator per process.
func WithInstanceID(id string) CoordinatorOption {
	return func(c *Coordinator) {
		if id != "" {
			c.instanceID = id
		}
	}
}

// WithCoordinatorLogger sets the logger.
func WithCoordinatorLogger(l *slog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCoordinatorClock swaps the time source for tests.
func WithCoordinatorClock(now func() time.Time) CoordinatorOption {
	return func(c *Coordinator) {
		if now != nil {
			c.now = now
		}
	}
}

// NewCoordinator creates an email queue coordinator.
func NewCoordinator(storage Storage, engine *templates.Engine, sender mailer.Sender, deliveries notification.DeliveryStore, opts ...CoordinatorOption) (*Coordinator, error) {
	if storage == nil {
		return nil, ErrStorageNil
	}
	if engine == nil {
		return nil, ErrEngineNil
	}
	if sender == nil {
		return nil, ErrSenderNil
	}

	c := &Coordinator{
		storage:       storage,
		engine:        engine,
		sender:        sender,
		deliveries:    deliveries,
		instanceID:    uuid.NewString(),
		maxRetries:    DefaultMaxRetries,
		retryCooldown: DefaultRetryCooldown,
		logger:        slog.Default(),
		now:           time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// InstanceID returns the claim lease owner id of this coordinator.
func (c *Coordinator) InstanceID() string {
	return c.instanceID
}

// EnqueueRequest carries everything needed to render and queue one email.
type EnqueueRequest struct {
	Message     notification.Message
	User        notification.UserSettings
	AppSettings notification.ApplicationSettings
	DeliveryID  string
	TemplateKey string
	// Extra variables merged over the message-derived context.
	Variables map[string]any
}

// Enqueue renders the notification through the template engine and inserts a
// Pending queue entry. The scheduled send time follows the user's effective
// frequency; Error and Critical severities queue at high priority.
func (c *Coordinator) Enqueue(ctx context.Context, req EnqueueRequest) (*Entry, error) {
	if req.User.Email == "" {
		return nil, fmt.Errorf("%w: user %s has no email address", ErrInvalidEntry, req.User.Username)
	}

	vars := map[string]any{
		"Title":       req.Message.Title,
		"Content":     req.Message.Content,
		"Severity":    req.Message.Severity.String(),
		"AlertType":   string(req.Message.AlertType),
		"Application": req.Message.Application,
		"Username":    req.User.Username,
	}
	for k, v := range req.Message.Metadata {
		vars[k] = v
	}
	for k, v := range req.Variables {
		vars[k] = v
	}

	rendered, err := c.engine.Render(ctx, req.TemplateKey, req.Message.Application, vars)
	if err != nil {
		return nil, fmt.Errorf("emailqueue: failed to render %q: %w", req.TemplateKey, err)
	}

	now := c.now()
	freq := req.AppSettings.EffectiveFrequency(req.User.Frequency)

	priority := mailer.PriorityNormal
	if req.Message.Severity >= notification.SeverityError {
		priority = mailer.PriorityHigh
	}

	entry := Entry{
		ID:             uuid.NewString(),
		NotificationID: req.Message.ID,
		DeliveryID:     req.DeliveryID,
		Username:       req.User.Username,
		Recipient:      req.User.Email,
		Subject:        rendered.Subject,
		HTMLBody:       rendered.HTML,
		TextBody:       rendered.Text,
		Priority:       priority,
		Status:         StatusPending,
		ScheduledAt:    NextSendTime(freq, now, req.User.Timezone),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if err := c.storage.CreateEntry(ctx, entry); err != nil {
		return nil, err
	}

	c.logger.DebugContext(ctx, "email queued",
		logger.NotificationID(entry.NotificationID),
		logger.Username(entry.Username),
		slog.String("entry_id", entry.ID),
		slog.Time("scheduled_at", entry.ScheduledAt),
		slog.String("priority", string(entry.Priority)))

	return &entry, nil
}

// ProcessBatch claims up to batchSize due entries and sends them. One entry's
// failure never aborts the rest of the batch. Returns the number of entries
// sent successfully.
func (c *Coordinator) ProcessBatch(ctx context.Context, batchSize int) (int, error) {
	claimed, err := c.storage.ClaimPending(ctx, c.instanceID, batchSize)
	if err != nil {
		return 0, err
	}

	sent := 0
	for _, entry := range claimed {
		if err := c.sendEntry(ctx, entry); err != nil {
			c.logger.WarnContext(ctx, "email send failed",
				logger.Error(err),
				logger.NotificationID(entry.NotificationID),
				logger.Username(entry.Username),
				slog.String("entry_id", entry.ID),
				logger.RetryCount(entry.RetryCount))
			continue
		}
		sent++
	}
	return sent, nil
}

// sendEntry attempts delivery of one claimed entry and records the outcome.
func (c *Coordinator) sendEntry(ctx context.Context, entry Entry) error {
	msg := mailer.Message{
		To:       entry.Recipient,
		Subject:  entry.Subject,
		HTMLBody: entry.HTMLBody,
		TextBody: entry.TextBody,
		Priority: entry.Priority,
		Headers:  map[string]string{"X-Notification-ID": entry.NotificationID},
		Tag:      "notification",
	}

	if err := c.sender.Send(ctx, msg); err != nil {
		if markErr := c.storage.MarkFailed(ctx, entry.ID, err.Error()); markErr != nil {
			c.logger.ErrorContext(ctx, "failed to record send failure",
				logger.Error(markErr),
				slog.String("entry_id", entry.ID))
		}
		// Out of retries means the delivery will never complete.
		if entry.RetryCount >= c.maxRetries && c.deliveries != nil && entry.DeliveryID != "" {
			if markErr := c.deliveries.MarkFailed(ctx, entry.DeliveryID, err.Error()); markErr != nil {
				c.logger.ErrorContext(ctx, "failed to mark delivery failed",
					logger.Error(markErr),
					slog.String("delivery_id", entry.DeliveryID))
			}
		}
		return err
	}

	now := c.now()
	if err := c.storage.MarkSent(ctx, entry.ID, now); err != nil {
		return fmt.Errorf("emailqueue: failed to mark sent: %w", err)
	}
	if c.deliveries != nil && entry.DeliveryID != "" {
		if err := c.deliveries.MarkDelivered(ctx, entry.DeliveryID, now); err != nil {
			c.logger.ErrorContext(ctx, "failed to mark delivery delivered",
				logger.Error(err),
				slog.String("delivery_id", entry.DeliveryID))
		}
	}

	c.logger.InfoContext(ctx, "email sent",
		logger.NotificationID(entry.NotificationID),
		logger.Username(entry.Username),
		slog.String("entry_id", entry.ID))
	return nil
}

// RetrySweep returns cooled-down failed entries with remaining retry budget
// to Pending. Returns the number of entries released.
func (c *Coordinator) RetrySweep(ctx context.Context) (int, error) {
	released, err := c.storage.ReleaseForRetry(ctx, c.maxRetries, c.retryCooldown)
	if err != nil {
		return 0, err
	}
	if released > 0 {
		c.logger.InfoContext(ctx, "failed emails released for retry",
			slog.Int("released", released))
	}
	return released, nil
}

// Stats returns a point-in-time snapshot of queue counts.
func (c *Coordinator) Stats(ctx context.Context) (Stats, error) {
	return c.storage.Stats(ctx, c.maxRetries)
}

// PurgeTerminalOlderThan removes aged Sent and Failed entries.
func (c *Coordinator) PurgeTerminalOlderThan(ctx context.Context, cutoff time.Time) (int, error) {
	return c.storage.PurgeTerminalOlderThan(ctx, cutoff)
}
