package logger

import (
	"log/slog"
)

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Username records the user identifier under the key "username".
func Username(name string) slog.Attr {
	return slog.String("username", name)
}

// NotificationID records the notification identifier under the key "notification_id".
// If id is nil, it returns an empty Attr.
func NotificationID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("notification_id", id)
}

// Application records the source application name under the key "application".
func Application(name string) slog.Attr {
	return slog.String("application", name)
}

// Channel records the delivery channel under the key "channel".
func Channel(channel any) slog.Attr {
	return slog.Any("channel", channel)
}

// Instance records the processing instance identifier under the key "instance".
func Instance(id string) slog.Attr {
	return slog.String("instance", id)
}

// RetryCount records the retry count under the key "retry_count".
func RetryCount(count int) slog.Attr {
	return slog.Int("retry_count", count)
}

// Component records the component name under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}
