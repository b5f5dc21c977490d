package notification

import (
	"fmt"
	"time"
)

// Severity is the ordered severity level of a notification.
// Higher values indicate more severe alerts.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
	SeverityCritical
)

// String returns the lowercase name of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityCritical:
		return "critical"
	default:
		return fmt.Sprintf("severity(%d)", int(s))
	}
}

// ParseSeverity converts a severity name into a Severity.
func ParseSeverity(s string) (Severity, error) {
	switch s {
	case "info":
		return SeverityInfo, nil
	case "warning":
		return SeverityWarning, nil
	case "error":
		return SeverityError, nil
	case "critical":
		return SeverityCritical, nil
	default:
		return SeverityInfo, fmt.Errorf("%w: %q", ErrUnknownSeverity, s)
	}
}

// AlertType categorizes a notification within its source application.
// The set is open: applications declare their supported types in their
// profile and may introduce new ones over time.
type AlertType string

const (
	AlertTypeSystem      AlertType = "system"
	AlertTypePerformance AlertType = "performance"
	AlertTypeSecurity    AlertType = "security"
	AlertTypeMaintenance AlertType = "maintenance"
)

// Message is the immutable notification record created by the orchestrator.
// Retention sweeps deactivate aged messages instead of deleting them so
// delivery history stays resolvable.
type Message struct {
	ID                   string            `json:"id"`
	Application          string            `json:"application"`
	Title                string            `json:"title"`
	Content              string            `json:"content"`
	Severity             Severity          `json:"severity"`
	AlertType            AlertType         `json:"alert_type"`
	Metadata             map[string]string `json:"metadata,omitempty"`
	RequiresConfirmation bool              `json:"requires_confirmation"`
	CreatedAt            time.Time         `json:"created_at"`
	Active               bool              `json:"active"`
}

// Channel is the delivery channel for a notification.
type Channel string

const (
	ChannelPush  Channel = "push"
	ChannelEmail Channel = "email"
)

// DeliveryStatus tracks the lifecycle of a single delivery record.
type DeliveryStatus string

const (
	DeliveryStatusPending   DeliveryStatus = "pending"
	DeliveryStatusDelivered DeliveryStatus = "delivered"
	DeliveryStatusFailed    DeliveryStatus = "failed"
	DeliveryStatusConfirmed DeliveryStatus = "confirmed"
)

// Delivery is one delivery record per (notification, user, channel).
type Delivery struct {
	ID             string         `json:"id"`
	NotificationID string         `json:"notification_id"`
	Username       string         `json:"username"`
	Channel        Channel        `json:"channel"`
	Status         DeliveryStatus `json:"status"`
	RetryCount     int            `json:"retry_count"`
	DeliveredAt    *time.Time     `json:"delivered_at,omitempty"`
	ConfirmedAt    *time.Time     `json:"confirmed_at,omitempty"`
	FailureReason  string         `json:"failure_reason,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}
