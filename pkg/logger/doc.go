// Package logger provides a small factory over log/slog with functional
// options for format, level and static attributes, plus shared attribute
// constructors so the delivery pipeline logs consistent keys (username,
// notification_id, instance, ...) across components.
package logger
