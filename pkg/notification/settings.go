package notification

import (
	"fmt"
	"slices"
)

// Frequency controls how email notifications are scheduled for a user.
type Frequency string

const (
	FrequencyImmediate Frequency = "immediate"
	FrequencyHourly    Frequency = "hourly"
	FrequencyDaily     Frequency = "daily"
)

// TimeOfDay is a wall-clock time without a date, used for quiet-hours
// boundaries. The zero value is midnight.
type TimeOfDay struct {
	Hour   int `json:"hour"`
	Minute int `json:"minute"`
}

// ParseTimeOfDay parses "HH:MM" into a TimeOfDay.
func ParseTimeOfDay(s string) (TimeOfDay, error) {
	var t TimeOfDay
	if _, err := fmt.Sscanf(s, "%d:%d", &t.Hour, &t.Minute); err != nil {
		return TimeOfDay{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	if t.Hour < 0 || t.Hour > 23 || t.Minute < 0 || t.Minute > 59 {
		return TimeOfDay{}, fmt.Errorf("time of day %q out of range", s)
	}
	return t, nil
}

// Minutes returns minutes since midnight.
func (t TimeOfDay) Minutes() int {
	return t.Hour*60 + t.Minute
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// UserSettings are the global, per-user notification preferences.
type UserSettings struct {
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	EmailEnabled    bool       `json:"email_enabled"`
	Frequency       Frequency  `json:"frequency"`
	QuietHoursStart *TimeOfDay `json:"quiet_hours_start,omitempty"`
	QuietHoursEnd   *TimeOfDay `json:"quiet_hours_end,omitempty"`
	Timezone        string     `json:"timezone"`
}

// ApplicationSettings are the per-(user, application) preferences. There is
// at most one row per (Username, Application).
type ApplicationSettings struct {
	Username                string      `json:"username"`
	Application             string      `json:"application"`
	Subscribed              bool        `json:"subscribed"`
	PushEnabled             bool        `json:"push_enabled"`
	EmailEnabled            bool        `json:"email_enabled"`
	SeverityFloor           Severity    `json:"severity_floor"`
	AlertTypes              []AlertType `json:"alert_types,omitempty"` // nil = all types
	CriticalBypassesFilters bool        `json:"critical_bypasses_filters"`
	FrequencyOverride       *Frequency  `json:"frequency_override,omitempty"` // nil = use global
}

// AllowsAlertType reports whether the allow-list admits the given type.
// A nil allow-list admits everything.
func (s ApplicationSettings) AllowsAlertType(t AlertType) bool {
	if s.AlertTypes == nil {
		return true
	}
	return slices.Contains(s.AlertTypes, t)
}

// EffectiveFrequency resolves the per-application override against the
// user's global default.
func (s ApplicationSettings) EffectiveFrequency(global Frequency) Frequency {
	if s.FrequencyOverride != nil {
		return *s.FrequencyOverride
	}
	if global == "" {
		return FrequencyImmediate
	}
	return global
}

// ApplicationProfile describes a source application and drives default
// settings creation on a user's first interaction with it.
type ApplicationProfile struct {
	Name                 string      `json:"name"`
	DisplayName          string      `json:"display_name"`
	SupportedAlertTypes  []AlertType `json:"supported_alert_types,omitempty"`
	DefaultSeverityFloor Severity    `json:"default_severity_floor"`
	DefaultSubscribed    bool        `json:"default_subscribed"`
	DefaultTemplateKey   string      `json:"default_template_key"`
}

// DefaultSettings creates the initial per-application settings for a user
// from the profile defaults. Both channels start enabled; the severity
// floor and subscription flag come from the profile.
func (p ApplicationProfile) DefaultSettings(username string) ApplicationSettings {
	return ApplicationSettings{
		Username:                username,
		Application:             p.Name,
		Subscribed:              p.DefaultSubscribed,
		PushEnabled:             true,
		EmailEnabled:            true,
		SeverityFloor:           p.DefaultSeverityFloor,
		AlertTypes:              nil,
		CriticalBypassesFilters: true,
	}
}
