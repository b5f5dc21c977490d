package notification

import (
	"context"
	"time"
)

// MessageStore handles notification message persistence.
type MessageStore interface {
	// Create stores a new message.
	Create(ctx context.Context, msg Message) error

	// Get retrieves a single message. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Message, error)

	// DeactivateOlderThan soft-deletes active messages created before the
	// cutoff. Returns the number of messages deactivated.
	DeactivateOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// DeliveryStore handles per-channel delivery records.
type DeliveryStore interface {
	// Create stores a new delivery record. Returns ErrDuplicateDelivery
	// when a record for the same (notification, user, channel) exists.
	Create(ctx context.Context, d Delivery) error

	// Get retrieves a delivery record by id. Returns ErrNotFound if absent.
	Get(ctx context.Context, id string) (*Delivery, error)

	// MarkDelivered transitions a record to Delivered with the given timestamp.
	MarkDelivered(ctx context.Context, id string, at time.Time) error

	// MarkFailed transitions a record to Failed and records the reason.
	MarkFailed(ctx context.Context, id string, reason string) error

	// Confirm transitions the user's delivery records for a notification
	// to Confirmed. Returns ErrNotFound when the user has no record for it.
	Confirm(ctx context.Context, notificationID, username string, at time.Time) error

	// ListPending returns the user's Pending delivery records for a channel.
	ListPending(ctx context.Context, username string, channel Channel) ([]Delivery, error)

	// ListUnconfirmed returns the user's Delivered records that have not
	// been confirmed. Whether the notification requires confirmation is
	// decided by the caller against the message record.
	ListUnconfirmed(ctx context.Context, username string) ([]Delivery, error)

	// PurgeOlderThan removes records created before the cutoff.
	// Returns the number of records removed.
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int, error)
}

// SettingsStore handles user preferences, global and per application.
type SettingsStore interface {
	// UserSettings returns a user's global settings. Returns ErrNotFound if absent.
	UserSettings(ctx context.Context, username string) (*UserSettings, error)

	// SaveUserSettings creates or replaces a user's global settings.
	SaveUserSettings(ctx context.Context, s UserSettings) error

	// ApplicationSettings returns the user's settings for one application.
	// Returns ErrNotFound if the user never interacted with it.
	ApplicationSettings(ctx context.Context, username, application string) (*ApplicationSettings, error)

	// SaveApplicationSettings creates or replaces per-application settings.
	// At most one row exists per (username, application).
	SaveApplicationSettings(ctx context.Context, s ApplicationSettings) error
}

// ProfileStore handles application notification profiles.
type ProfileStore interface {
	// Profile returns the profile for an application. Returns ErrNotFound if absent.
	Profile(ctx context.Context, application string) (*ApplicationProfile, error)

	// SaveProfile creates or replaces an application profile.
	SaveProfile(ctx context.Context, p ApplicationProfile) error
}
