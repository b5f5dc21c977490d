package publisher_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notikit/notikit/pkg/notification"
	"github.com/notikit/notikit/pkg/publisher"
)

type broadcastCall struct {
	group   string
	event   string
	payload []byte
}

// fakeTransport records group broadcasts made on this instance.
type fakeTransport struct {
	mu    sync.Mutex
	calls []broadcastCall
}

func (f *fakeTransport) BroadcastToGroup(ctx context.Context, groupKey, event string, payload []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, broadcastCall{group: groupKey, event: event, payload: payload})
	return nil
}

func (f *fakeTransport) groups() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, 0, len(f.calls))
	for _, c := range f.calls {
		out = append(out, c.group)
	}
	return out
}

// failingBus accepts subscriptions but rejects every publish, simulating a
// bus that went away after startup.
type failingBus struct {
	inner *publisher.MemoryBus
	err   error
}

func (b *failingBus) Publish(ctx context.Context, topic string, payload []byte) error {
	return b.err
}

func (b *failingBus) Subscribe(ctx context.Context, topics ...string) (publisher.Subscription, error) {
	return b.inner.Subscribe(ctx, topics...)
}

func (b *failingBus) Close() error {
	return b.inner.Close()
}

func testNotification() notification.Message {
	return notification.Message{
		ID:          uuid.NewString(),
		Application: "backup-service",
		Title:       "Backup failed",
		Content:     "nightly backup did not complete",
		Severity:    notification.SeverityError,
		AlertType:   notification.AlertTypeSystem,
		CreatedAt:   time.Now(),
		Active:      true,
	}
}

func TestBusPublisherFanout(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bus := publisher.NewMemoryBus()
	defer bus.Close()

	transport := &fakeTransport{}
	pub, err := publisher.NewBusPublisher(ctx, bus, transport)
	require.NoError(t, err)
	defer pub.Close()

	result := pub.Publish(ctx, testNotification(), []string{"alice", "bob"})
	assert.Equal(t, publisher.OutcomeDelivered, result.Outcome)
	assert.NoError(t, result.Err)
	assert.True(t, pub.RealTimeAvailable())

	assert.Eventually(t, func() bool {
		return len(transport.groups()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"user-alice", "user-bob"}, transport.groups())

	status := pub.Status()
	assert.Equal(t, publisher.ModeBus, status.Mode)
	assert.True(t, status.Connected)
	assert.NotNil(t, status.LastSuccessAt)
	assert.Empty(t, status.LastError)
}

func TestBusPublisherApplicationAndRoleTargets(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bus := publisher.NewMemoryBus()
	defer bus.Close()

	transport := &fakeTransport{}
	pub, err := publisher.NewBusPublisher(ctx, bus, transport)
	require.NoError(t, err)
	defer pub.Close()

	assert.Equal(t, publisher.OutcomeDelivered,
		pub.PublishToApplication(ctx, testNotification(), "backup-service").Outcome)
	assert.Equal(t, publisher.OutcomeDelivered,
		pub.PublishToRole(ctx, testNotification(), "admin").Outcome)

	assert.Eventually(t, func() bool {
		return len(transport.groups()) == 2
	}, 2*time.Second, 10*time.Millisecond)
	assert.ElementsMatch(t, []string{"app-backup-service", "role-admin"}, transport.groups())
}

func TestBusPublisherSelfConsumption(t *testing.T) {
	t.Parallel()

	// Two instances on the same bus: the origin must receive its own
	// publish through the subscription like any other instance.
	ctx := context.Background()
	bus := publisher.NewMemoryBus()
	defer bus.Close()

	transportA := &fakeTransport{}
	transportB := &fakeTransport{}

	pubA, err := publisher.NewBusPublisher(ctx, bus, transportA, publisher.WithBusInstanceID("instance-a"))
	require.NoError(t, err)
	defer pubA.Close()

	pubB, err := publisher.NewBusPublisher(ctx, bus, transportB, publisher.WithBusInstanceID("instance-b"))
	require.NoError(t, err)
	defer pubB.Close()

	result := pubA.Publish(ctx, testNotification(), []string{"alice"})
	require.Equal(t, publisher.OutcomeDelivered, result.Outcome)

	assert.Eventually(t, func() bool {
		return len(transportA.groups()) == 1 && len(transportB.groups()) == 1
	}, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, []string{"user-alice"}, transportA.groups())
	assert.Equal(t, []string{"user-alice"}, transportB.groups())
}

func TestBusPublisherDegradedOnBusFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	bus := &failingBus{
		inner: publisher.NewMemoryBus(),
		err:   errors.New("connection refused"),
	}
	defer bus.Close()

	transport := &fakeTransport{}
	pub, err := publisher.NewBusPublisher(ctx, bus, transport)
	require.NoError(t, err)
	defer pub.Close()

	result := pub.Publish(ctx, testNotification(), []string{"alice"})
	assert.Equal(t, publisher.OutcomeDegraded, result.Outcome)
	assert.Error(t, result.Err)

	assert.False(t, pub.RealTimeAvailable())
	status := pub.Status()
	assert.False(t, status.Connected)
	assert.Contains(t, status.LastError, "connection refused")
	assert.Empty(t, transport.groups())
}

func TestBusPublisherRequiresDependencies(t *testing.T) {
	t.Parallel()

	ctx := context.Background()

	_, err := publisher.NewBusPublisher(ctx, nil, &fakeTransport{})
	assert.ErrorIs(t, err, publisher.ErrBusNil)

	_, err = publisher.NewBusPublisher(ctx, publisher.NewMemoryBus(), nil)
	assert.ErrorIs(t, err, publisher.ErrTransportNil)
}

func TestPollingPublisher(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	pub := publisher.NewPollingPublisher()

	assert.Equal(t, publisher.OutcomePolling, pub.Publish(ctx, testNotification(), []string{"alice"}).Outcome)
	assert.Equal(t, publisher.OutcomePolling, pub.PublishToApplication(ctx, testNotification(), "app").Outcome)
	assert.Equal(t, publisher.OutcomePolling, pub.PublishToRole(ctx, testNotification(), "admin").Outcome)
	assert.False(t, pub.RealTimeAvailable())

	status := pub.Status()
	assert.Equal(t, publisher.ModePolling, status.Mode)
	assert.False(t, status.Connected)
}

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	msg := testNotification()
	envelope := publisher.Envelope{
		Type:           publisher.EnvelopeUser,
		Notification:   msg,
		Targets:        []string{"alice"},
		Timestamp:      time.Now().UTC(),
		OriginInstance: "instance-a",
	}

	raw, err := envelope.Encode()
	require.NoError(t, err)

	decoded, err := publisher.DecodeEnvelope(raw)
	require.NoError(t, err)
	assert.Equal(t, envelope.Type, decoded.Type)
	assert.Equal(t, msg.ID, decoded.Notification.ID)
	assert.Equal(t, envelope.Targets, decoded.Targets)
	assert.Equal(t, envelope.OriginInstance, decoded.OriginInstance)

	_, err = publisher.DecodeEnvelope([]byte("{not json"))
	assert.Error(t, err)
}
