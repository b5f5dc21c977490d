package publisher

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/notikit/notikit/pkg/logger"
	"github.com/notikit/notikit/pkg/notification"
)

// PushEventName is the transport event notifications arrive under.
const PushEventName = "notification"

// BusPublisher fans notifications out over a pub/sub bus. Client pushes
// happen exclusively in the subscription handler: the origin instance
// receives its own publish back through the bus, so a single code path
// reaches every instance's locally-connected clients.
//
// Publish never propagates a bus fault. A failed publish records the error
// and comes back as a Degraded result; the delivery stays Pending and
// reaches the client through polling.
type BusPublisher struct {
	bus       Bus
	transport PushTransport
	sub       Subscription
	instance  string
	logger    *slog.Logger
	now       func() time.Time

	mu            sync.RWMutex
	connected     bool
	lastError     string
	lastSuccessAt *time.Time

	cancel context.CancelFunc
	done   chan struct{}
}

// BusPublisherOption configures a BusPublisher.
type BusPublisherOption func(*BusPublisher)

// WithBusLogger sets the logger.
func WithBusLogger(l *slog.Logger) BusPublisherOption {
	return func(p *BusPublisher) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithBusInstanceID overrides the origin instance id stamped on envelopes.
func WithBusInstanceID(id string) BusPublisherOption {
	return func(p *BusPublisher) {
		if id != "" {
			p.instance = id
		}
	}
}

// WithBusClock swaps the time source for tests.
func WithBusClock(now func() time.Time) BusPublisherOption {
	return func(p *BusPublisher) {
		if now != nil {
			p.now = now
		}
	}
}

// NewBusPublisher subscribes to the three notification topics and starts the
// handler loop. The returned publisher must be closed to release the
// subscription.
func NewBusPublisher(ctx context.Context, bus Bus, transport PushTransport, opts ...BusPublisherOption) (*BusPublisher, error) {
	if bus == nil {
		return nil, ErrBusNil
	}
	if transport == nil {
		return nil, ErrTransportNil
	}

	p := &BusPublisher{
		bus:       bus,
		transport: transport,
		instance:  uuid.NewString(),
		logger:    slog.Default(),
		now:       time.Now,
		done:      make(chan struct{}),
	}
	for _, opt := range opts {
		opt(p)
	}

	subCtx, cancel := context.WithCancel(ctx)
	sub, err := bus.Subscribe(subCtx, TopicUser, TopicApplication, TopicRole)
	if err != nil {
		cancel()
		return nil, err
	}
	p.sub = sub
	p.cancel = cancel
	p.connected = true

	go p.consume(subCtx)
	return p, nil
}

// Close stops the handler loop and releases the bus subscription.
func (p *BusPublisher) Close() error {
	p.cancel()
	err := p.sub.Close()
	<-p.done
	return err
}

func (p *BusPublisher) Publish(ctx context.Context, msg notification.Message, usernames []string) Result {
	return p.publish(ctx, TopicUser, Envelope{
		Type:         EnvelopeUser,
		Notification: msg,
		Targets:      usernames,
	})
}

func (p *BusPublisher) PublishToApplication(ctx context.Context, msg notification.Message, application string) Result {
	return p.publish(ctx, TopicApplication, Envelope{
		Type:         EnvelopeApplication,
		Notification: msg,
		Targets:      []string{application},
	})
}

func (p *BusPublisher) PublishToRole(ctx context.Context, msg notification.Message, role string) Result {
	return p.publish(ctx, TopicRole, Envelope{
		Type:         EnvelopeRole,
		Notification: msg,
		Targets:      []string{role},
	})
}

func (p *BusPublisher) RealTimeAvailable() bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.connected
}

func (p *BusPublisher) Status() Status {
	p.mu.RLock()
	defer p.mu.RUnlock()

	return Status{
		Mode:          ModeBus,
		Connected:     p.connected,
		LastError:     p.lastError,
		LastSuccessAt: p.lastSuccessAt,
		Diagnostics: map[string]string{
			"instance": p.instance,
		},
	}
}

func (p *BusPublisher) publish(ctx context.Context, topic string, envelope Envelope) Result {
	envelope.Timestamp = p.now()
	envelope.OriginInstance = p.instance

	raw, err := envelope.Encode()
	if err != nil {
		return p.degraded(ctx, err)
	}
	if err := p.bus.Publish(ctx, topic, raw); err != nil {
		return p.degraded(ctx, err)
	}

	now := p.now()
	p.mu.Lock()
	p.connected = true
	p.lastSuccessAt = &now
	p.mu.Unlock()

	return Result{Outcome: OutcomeDelivered}
}

// degraded records a transport fault and turns it into a Result instead of
// an error return.
func (p *BusPublisher) degraded(ctx context.Context, err error) Result {
	p.mu.Lock()
	p.connected = false
	p.lastError = err.Error()
	p.mu.Unlock()

	p.logger.WarnContext(ctx, "bus publish failed, falling back to polling",
		logger.Error(err),
		logger.Instance(p.instance))

	return Result{Outcome: OutcomeDegraded, Err: err}
}

// consume is the subscription handler loop. Every instance, the origin
// included, performs client pushes here.
func (p *BusPublisher) consume(ctx context.Context) {
	defer close(p.done)

	for msg := range p.sub.Messages() {
		envelope, err := DecodeEnvelope(msg.Payload)
		if err != nil {
			p.logger.WarnContext(ctx, "dropping malformed bus message",
				logger.Error(err),
				slog.String("topic", msg.Topic))
			continue
		}
		p.dispatch(ctx, envelope)
	}
}

func (p *BusPublisher) dispatch(ctx context.Context, envelope *Envelope) {
	payload, err := json.Marshal(envelope.Notification)
	if err != nil {
		p.logger.WarnContext(ctx, "failed to encode notification for push",
			logger.Error(err),
			logger.NotificationID(envelope.Notification.ID))
		return
	}

	var groups []string
	switch envelope.Type {
	case EnvelopeUser:
		for _, username := range envelope.Targets {
			groups = append(groups, UserGroup(username))
		}
	case EnvelopeApplication:
		for _, application := range envelope.Targets {
			groups = append(groups, ApplicationGroup(application))
		}
	case EnvelopeRole:
		for _, role := range envelope.Targets {
			groups = append(groups, RoleGroup(role))
		}
	default:
		p.logger.WarnContext(ctx, "dropping envelope with unknown type",
			slog.String("type", string(envelope.Type)))
		return
	}

	for _, group := range groups {
		if err := p.transport.BroadcastToGroup(ctx, group, PushEventName, payload); err != nil {
			p.logger.WarnContext(ctx, "push transport broadcast failed",
				logger.Error(err),
				slog.String("group", group),
				logger.NotificationID(envelope.Notification.ID))
		}
	}
}
