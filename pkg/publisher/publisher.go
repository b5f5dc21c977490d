package publisher

import (
	"context"
	"fmt"
	"time"

	"github.com/notikit/notikit/pkg/notification"
)

// Mode identifies which fan-out strategy a Publisher implements. The mode is
// a deployment-time choice driven by bus availability, not a runtime state.
type Mode string

const (
	ModeBus     Mode = "bus"
	ModePolling Mode = "polling"
)

// Outcome is the explicit result of a publish attempt. Transport faults are
// reported as Degraded rather than raised so callers can branch on them.
type Outcome string

const (
	// OutcomeDelivered means the message reached the bus; every instance's
	// subscription handler will push it to locally-connected clients.
	OutcomeDelivered Outcome = "delivered"

	// OutcomeDegraded means the bus rejected the publish. The notification
	// stays Pending and reaches clients through polling.
	OutcomeDegraded Outcome = "degraded"

	// OutcomePolling means no push transport is configured; clients pull.
	OutcomePolling Outcome = "polling"
)

// Result reports how a publish attempt concluded. Err is set only for
// Degraded outcomes.
type Result struct {
	Outcome Outcome
	Err     error
}

// Status is an operational snapshot of a publisher.
type Status struct {
	Mode          Mode              `json:"mode"`
	Connected     bool              `json:"connected"`
	LastError     string            `json:"last_error,omitempty"`
	LastSuccessAt *time.Time        `json:"last_success_at,omitempty"`
	Diagnostics   map[string]string `json:"diagnostics,omitempty"`
}

// Publisher fans a notification out to connected clients. Implementations
// never propagate transport failures to the caller; a failed publish comes
// back as a Degraded result.
type Publisher interface {
	// Publish fans the notification out to the given users.
	Publish(ctx context.Context, msg notification.Message, usernames []string) Result

	// PublishToApplication fans out to every user watching an application.
	PublishToApplication(ctx context.Context, msg notification.Message, application string) Result

	// PublishToRole fans out to every user holding a role.
	PublishToRole(ctx context.Context, msg notification.Message, role string) Result

	// RealTimeAvailable reports whether a freshly created push delivery can
	// be considered delivered immediately. When false, delivery rows stay
	// Pending for client polling.
	RealTimeAvailable() bool

	// Status returns an operational snapshot.
	Status() Status
}

// PushTransport delivers a payload to all clients connected to a group on
// this instance. Group keys are produced by UserGroup, ApplicationGroup and
// RoleGroup.
type PushTransport interface {
	BroadcastToGroup(ctx context.Context, groupKey, event string, payload []byte) error
}

// UserGroup is the transport group key for one user's connections.
func UserGroup(username string) string {
	return fmt.Sprintf("user-%s", username)
}

// ApplicationGroup is the transport group key for an application's watchers.
func ApplicationGroup(application string) string {
	return fmt.Sprintf("app-%s", application)
}

// RoleGroup is the transport group key for holders of a role.
func RoleGroup(role string) string {
	return fmt.Sprintf("role-%s", role)
}
