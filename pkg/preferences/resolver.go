package preferences

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/notikit/notikit/pkg/logger"
	"github.com/notikit/notikit/pkg/notification"
)

// Decision is the outcome of resolving a user's preferences against a
// notification. When Deliver is false, Channels is empty.
type Decision struct {
	Deliver  bool
	Channels []notification.Channel
}

// Has reports whether the decision includes the given channel.
func (d Decision) Has(c notification.Channel) bool {
	return slices.Contains(d.Channels, c)
}

// Resolver computes whether and how a user receives a notification.
// Decisions are recomputed per notification and never cached: settings can
// change between notifications.
type Resolver struct {
	settings notification.SettingsStore
	profiles notification.ProfileStore
	logger   *slog.Logger
	now      func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for the Resolver.
func WithLogger(l *slog.Logger) Option {
	return func(r *Resolver) {
		if l != nil {
			r.logger = l
		}
	}
}

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

// NewResolver creates a preference resolver backed by the given stores.
func NewResolver(settings notification.SettingsStore, profiles notification.ProfileStore, opts ...Option) (*Resolver, error) {
	if settings == nil || profiles == nil {
		return nil, ErrStoreNil
	}

	r := &Resolver{
		settings: settings,
		profiles: profiles,
		logger:   slog.Default(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// Decide evaluates the gates in order, short-circuiting to a rejection:
// subscription, severity floor (with critical bypass), alert-type allow-list,
// quiet hours (skipped for critical severity). It then computes the channel
// set and accepts iff it is non-empty.
//
// An error is returned only for storage failures; a rejected notification is
// a normal Decision with Deliver=false.
func (r *Resolver) Decide(ctx context.Context, username string, msg notification.Message) (Decision, error) {
	appSettings, err := r.applicationSettings(ctx, username, msg.Application)
	if err != nil {
		if errors.Is(err, notification.ErrNotFound) {
			// Unknown application: nothing to deliver against
			return Decision{}, nil
		}
		return Decision{}, fmt.Errorf("load application settings: %w", err)
	}

	if !appSettings.Subscribed {
		return Decision{}, nil
	}

	critical := msg.Severity == notification.SeverityCritical

	if msg.Severity < appSettings.SeverityFloor {
		if !(critical && appSettings.CriticalBypassesFilters) {
			return Decision{}, nil
		}
	}

	if !appSettings.AllowsAlertType(msg.AlertType) {
		return Decision{}, nil
	}

	userSettings, err := r.settings.UserSettings(ctx, username)
	if err != nil && !errors.Is(err, notification.ErrNotFound) {
		return Decision{}, fmt.Errorf("load user settings: %w", err)
	}

	// Critical notifications ignore quiet hours entirely
	if !critical && userSettings != nil && userSettings.QuietHoursStart != nil && userSettings.QuietHoursEnd != nil {
		local := localTimeOfDay(r.now().UTC(), userSettings.Timezone)
		if InQuietWindow(local, *userSettings.QuietHoursStart, *userSettings.QuietHoursEnd) {
			return Decision{}, nil
		}
	}

	var channels []notification.Channel
	if appSettings.PushEnabled {
		channels = append(channels, notification.ChannelPush)
	}
	if appSettings.EmailEnabled && userSettings != nil && userSettings.EmailEnabled {
		channels = append(channels, notification.ChannelEmail)
	}

	if len(channels) == 0 {
		return Decision{}, nil
	}
	return Decision{Deliver: true, Channels: channels}, nil
}

// applicationSettings loads the user's settings for an application,
// bootstrapping them from the application profile defaults on first
// interaction.
func (r *Resolver) applicationSettings(ctx context.Context, username, application string) (*notification.ApplicationSettings, error) {
	settings, err := r.settings.ApplicationSettings(ctx, username, application)
	if err == nil {
		return settings, nil
	}
	if !errors.Is(err, notification.ErrNotFound) {
		return nil, err
	}

	profile, err := r.profiles.Profile(ctx, application)
	if err != nil {
		return nil, err
	}

	defaults := profile.DefaultSettings(username)
	if err := r.settings.SaveApplicationSettings(ctx, defaults); err != nil {
		// The decision can still be made from the computed defaults
		r.logger.LogAttrs(ctx, slog.LevelWarn, "failed to persist default application settings",
			logger.Username(username),
			logger.Application(application),
			logger.Error(err),
		)
	}
	return &defaults, nil
}
