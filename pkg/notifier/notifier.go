package notifier

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/notikit/notikit/pkg/emailqueue"
	"github.com/notikit/notikit/pkg/logger"
	"github.com/notikit/notikit/pkg/notification"
	"github.com/notikit/notikit/pkg/preferences"
	"github.com/notikit/notikit/pkg/publisher"
)

// DefaultTemplateKey is used when an application profile declares no email
// template of its own.
const DefaultTemplateKey = "notification-default"

// Notifier is the orchestrator: it persists notifications, asks the resolver
// who receives them over which channels, creates per-user delivery records,
// and hands them to the publisher and the email queue.
type Notifier struct {
	messages   notification.MessageStore
	deliveries notification.DeliveryStore
	settings   notification.SettingsStore
	profiles   notification.ProfileStore
	resolver   *preferences.Resolver
	publisher  publisher.Publisher
	emails     *emailqueue.Coordinator
	tracker    *publisher.PollTracker

	templateKey string
	logger      *slog.Logger
	now         func() time.Time
}

// Option configures a Notifier.
type Option func(*Notifier)

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(n *Notifier) {
		if l != nil {
			n.logger = l
		}
	}
}

// WithClock swaps the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(n *Notifier) {
		if now != nil {
			n.now = now
		}
	}
}

// WithDefaultTemplateKey overrides the fallback email template key.
func WithDefaultTemplateKey(key string) Option {
	return func(n *Notifier) {
		if key != "" {
			n.templateKey = key
		}
	}
}

// WithPollTracker installs the polling de-duplication window. Only consulted
// when the publisher reports real-time as unavailable.
func WithPollTracker(t *publisher.PollTracker) Option {
	return func(n *Notifier) {
		n.tracker = t
	}
}

// Stores bundles the persistence dependencies of the orchestrator.
type Stores struct {
	Messages   notification.MessageStore
	Deliveries notification.DeliveryStore
	Settings   notification.SettingsStore
	Profiles   notification.ProfileStore
}

// New creates a Notifier.
func New(stores Stores, resolver *preferences.Resolver, pub publisher.Publisher, emails *emailqueue.Coordinator, opts ...Option) (*Notifier, error) {
	if stores.Messages == nil || stores.Deliveries == nil || stores.Settings == nil || stores.Profiles == nil {
		return nil, ErrStoreNil
	}
	if resolver == nil {
		return nil, ErrResolverNil
	}
	if pub == nil {
		return nil, ErrPublisherNil
	}
	if emails == nil {
		return nil, ErrCoordinatorNil
	}

	n := &Notifier{
		messages:    stores.Messages,
		deliveries:  stores.Deliveries,
		settings:    stores.Settings,
		profiles:    stores.Profiles,
		resolver:    resolver,
		publisher:   pub,
		emails:      emails,
		templateKey: DefaultTemplateKey,
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// SendRequest describes a notification to deliver to a set of users.
type SendRequest struct {
	Application          string
	Title                string
	Content              string
	Severity             notification.Severity
	AlertType            notification.AlertType
	Metadata             map[string]string
	RequiresConfirmation bool
	Recipients           []string
}

// Send persists the notification and delivers it to every recipient the
// resolver accepts. One recipient's failure never aborts the rest; the
// returned message reflects what was persisted.
func (n *Notifier) Send(ctx context.Context, req SendRequest) (*notification.Message, error) {
	if req.Application == "" {
		return nil, fmt.Errorf("%w: application is required", ErrInvalidRequest)
	}
	if req.Title == "" {
		return nil, fmt.Errorf("%w: title is required", ErrInvalidRequest)
	}
	if len(req.Recipients) == 0 {
		return nil, fmt.Errorf("%w: at least one recipient is required", ErrInvalidRequest)
	}

	msg := notification.Message{
		ID:                   uuid.NewString(),
		Application:          req.Application,
		Title:                req.Title,
		Content:              req.Content,
		Severity:             req.Severity,
		AlertType:            req.AlertType,
		Metadata:             req.Metadata,
		RequiresConfirmation: req.RequiresConfirmation,
		CreatedAt:            n.now(),
		Active:               true,
	}
	if err := n.messages.Create(ctx, msg); err != nil {
		return nil, fmt.Errorf("notifier: failed to persist notification: %w", err)
	}

	templateKey := n.resolveTemplateKey(ctx, req.Application)

	var pushTargets []string
	pushDeliveries := make(map[string]string)
	for _, username := range req.Recipients {
		decision, err := n.resolver.Decide(ctx, username, msg)
		if err != nil {
			n.logger.WarnContext(ctx, "preference resolution failed, skipping user",
				logger.Error(err),
				logger.Username(username),
				logger.NotificationID(msg.ID))
			continue
		}
		if !decision.Deliver {
			continue
		}

		if decision.Has(notification.ChannelPush) {
			if id, ok := n.createDelivery(ctx, msg, username, notification.ChannelPush); ok {
				pushTargets = append(pushTargets, username)
				pushDeliveries[username] = id
			}
		}
		if decision.Has(notification.ChannelEmail) {
			n.queueEmail(ctx, msg, username, templateKey)
		}
	}

	if len(pushTargets) > 0 {
		n.pushOut(ctx, msg, pushTargets, pushDeliveries)
	}

	return &msg, nil
}

// resolveTemplateKey picks the application's declared template, falling back
// to the shared default.
func (n *Notifier) resolveTemplateKey(ctx context.Context, application string) string {
	profile, err := n.profiles.Profile(ctx, application)
	if err != nil || profile.DefaultTemplateKey == "" {
		return n.templateKey
	}
	return profile.DefaultTemplateKey
}

// createDelivery inserts a Pending delivery row, tolerating duplicates from
// a retried send.
func (n *Notifier) createDelivery(ctx context.Context, msg notification.Message, username string, channel notification.Channel) (string, bool) {
	d := notification.Delivery{
		ID:             uuid.NewString(),
		NotificationID: msg.ID,
		Username:       username,
		Channel:        channel,
		Status:         notification.DeliveryStatusPending,
		CreatedAt:      n.now(),
	}
	if err := n.deliveries.Create(ctx, d); err != nil {
		if errors.Is(err, notification.ErrDuplicateDelivery) {
			return "", false
		}
		n.logger.WarnContext(ctx, "failed to create delivery record",
			logger.Error(err),
			logger.Username(username),
			logger.Channel(string(channel)),
			logger.NotificationID(msg.ID))
		return "", false
	}
	return d.ID, true
}

// pushOut publishes to all push recipients in one fan-out. Delivery rows are
// marked Delivered only when the publisher reports real-time delivery;
// otherwise they stay Pending for client polling.
func (n *Notifier) pushOut(ctx context.Context, msg notification.Message, targets []string, deliveryIDs map[string]string) {
	result := n.publisher.Publish(ctx, msg, targets)

	if result.Outcome != publisher.OutcomeDelivered || !n.publisher.RealTimeAvailable() {
		if result.Err != nil {
			n.logger.WarnContext(ctx, "push degraded, deliveries stay pending for polling",
				logger.Error(result.Err),
				logger.NotificationID(msg.ID))
		}
		return
	}

	now := n.now()
	for _, username := range targets {
		if err := n.deliveries.MarkDelivered(ctx, deliveryIDs[username], now); err != nil {
			n.logger.WarnContext(ctx, "failed to mark push delivery delivered",
				logger.Error(err),
				logger.Username(username),
				logger.NotificationID(msg.ID))
		}
	}
}

// queueEmail creates the email delivery row and hands the notification to
// the queue coordinator.
func (n *Notifier) queueEmail(ctx context.Context, msg notification.Message, username, templateKey string) {
	userSettings, err := n.settings.UserSettings(ctx, username)
	if err != nil {
		n.logger.WarnContext(ctx, "cannot queue email without user settings",
			logger.Error(err),
			logger.Username(username),
			logger.NotificationID(msg.ID))
		return
	}
	appSettings, err := n.settings.ApplicationSettings(ctx, username, msg.Application)
	if err != nil {
		n.logger.WarnContext(ctx, "cannot queue email without application settings",
			logger.Error(err),
			logger.Username(username),
			logger.NotificationID(msg.ID))
		return
	}

	deliveryID, ok := n.createDelivery(ctx, msg, username, notification.ChannelEmail)
	if !ok {
		return
	}

	if _, err := n.emails.Enqueue(ctx, emailqueue.EnqueueRequest{
		Message:     msg,
		User:        *userSettings,
		AppSettings: *appSettings,
		DeliveryID:  deliveryID,
		TemplateKey: templateKey,
	}); err != nil {
		n.logger.WarnContext(ctx, "failed to queue email",
			logger.Error(err),
			logger.Username(username),
			logger.NotificationID(msg.ID))
		if markErr := n.deliveries.MarkFailed(ctx, deliveryID, err.Error()); markErr != nil {
			n.logger.ErrorContext(ctx, "failed to mark email delivery failed",
				logger.Error(markErr),
				logger.Username(username))
		}
	}
}

// PendingNotification pairs a pending delivery with its notification for
// client polling.
type PendingNotification struct {
	Delivery notification.Delivery `json:"delivery"`
	Message  notification.Message  `json:"message"`
}

// Pending returns the user's undelivered push notifications. In polling mode
// repeated polls of the same pair inside the de-duplication window are
// suppressed, since polling has no "already shown" acknowledgment.
func (n *Notifier) Pending(ctx context.Context, username string) ([]PendingNotification, error) {
	rows, err := n.deliveries.ListPending(ctx, username, notification.ChannelPush)
	if err != nil {
		return nil, fmt.Errorf("notifier: failed to list pending deliveries: %w", err)
	}

	dedupe := n.tracker != nil && !n.publisher.RealTimeAvailable()

	out := make([]PendingNotification, 0, len(rows))
	for _, d := range rows {
		if dedupe && !n.tracker.FirstSight(username, d.NotificationID) {
			continue
		}
		msg, err := n.messages.Get(ctx, d.NotificationID)
		if err != nil {
			n.logger.WarnContext(ctx, "pending delivery references missing notification",
				logger.Error(err),
				logger.NotificationID(d.NotificationID))
			continue
		}
		out = append(out, PendingNotification{Delivery: d, Message: *msg})
	}
	return out, nil
}

// Unconfirmed returns delivered notifications that require confirmation and
// have not been confirmed by the user.
func (n *Notifier) Unconfirmed(ctx context.Context, username string) ([]PendingNotification, error) {
	rows, err := n.deliveries.ListUnconfirmed(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("notifier: failed to list unconfirmed deliveries: %w", err)
	}

	out := make([]PendingNotification, 0, len(rows))
	for _, d := range rows {
		msg, err := n.messages.Get(ctx, d.NotificationID)
		if err != nil || !msg.RequiresConfirmation {
			continue
		}
		out = append(out, PendingNotification{Delivery: d, Message: *msg})
	}
	return out, nil
}

// Confirm records the user's confirmation of a notification.
func (n *Notifier) Confirm(ctx context.Context, notificationID, username string) error {
	if err := n.deliveries.Confirm(ctx, notificationID, username, n.now()); err != nil {
		return fmt.Errorf("notifier: confirm failed: %w", err)
	}
	return nil
}

// QueueStats returns a snapshot of the email queue.
func (n *Notifier) QueueStats(ctx context.Context) (emailqueue.Stats, error) {
	return n.emails.Stats(ctx)
}

// PublisherStatus returns the push publisher's operational snapshot.
func (n *Notifier) PublisherStatus() publisher.Status {
	return n.publisher.Status()
}

// RetentionPolicy bounds how long each record kind is kept.
type RetentionPolicy struct {
	MessageAge  time.Duration
	DeliveryAge time.Duration
	QueueAge    time.Duration
}

// RetentionResult reports what a sweep removed.
type RetentionResult struct {
	MessagesDeactivated int
	DeliveriesPurged    int
	QueueEntriesPurged  int
}

// RetentionSweep deactivates aged notifications and purges aged delivery and
// queue records. Each stage runs even if an earlier one fails; the first
// error is returned alongside the partial result.
func (n *Notifier) RetentionSweep(ctx context.Context, policy RetentionPolicy) (RetentionResult, error) {
	now := n.now()
	var result RetentionResult
	var firstErr error

	if policy.MessageAge > 0 {
		count, err := n.messages.DeactivateOlderThan(ctx, now.Add(-policy.MessageAge))
		if err != nil {
			firstErr = err
		}
		result.MessagesDeactivated = count
	}
	if policy.DeliveryAge > 0 {
		count, err := n.deliveries.PurgeOlderThan(ctx, now.Add(-policy.DeliveryAge))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		result.DeliveriesPurged = count
	}
	if policy.QueueAge > 0 {
		count, err := n.emails.PurgeTerminalOlderThan(ctx, now.Add(-policy.QueueAge))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		result.QueueEntriesPurged = count
	}

	if firstErr != nil {
		return result, fmt.Errorf("notifier: retention sweep: %w", firstErr)
	}
	return result, nil
}
