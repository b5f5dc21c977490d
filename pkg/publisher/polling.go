package publisher

import (
	"context"

	"github.com/notikit/notikit/pkg/notification"
)

// PollingPublisher is the fallback strategy for deployments without a
// reachable bus. Publish calls are no-ops returning a completed result;
// clients retrieve notifications by polling their pending delivery records.
type PollingPublisher struct{}

// NewPollingPublisher creates the polling-mode publisher.
func NewPollingPublisher() *PollingPublisher {
	return &PollingPublisher{}
}

func (p *PollingPublisher) Publish(ctx context.Context, msg notification.Message, usernames []string) Result {
	return Result{Outcome: OutcomePolling}
}

func (p *PollingPublisher) PublishToApplication(ctx context.Context, msg notification.Message, application string) Result {
	return Result{Outcome: OutcomePolling}
}

func (p *PollingPublisher) PublishToRole(ctx context.Context, msg notification.Message, role string) Result {
	return Result{Outcome: OutcomePolling}
}

// RealTimeAvailable is always false: push deliveries stay Pending until a
// client poll picks them up.
func (p *PollingPublisher) RealTimeAvailable() bool {
	return false
}

func (p *PollingPublisher) Status() Status {
	return Status{
		Mode:      ModePolling,
		Connected: false,
	}
}
