package notification

import "errors"

var (
	// ErrNotFound is returned when a requested entity does not exist.
	// Callers can distinguish it from generic storage failures to decide
	// between "give up" and "retry".
	ErrNotFound = errors.New("notification: not found")

	// ErrDuplicateDelivery is returned when a delivery record already
	// exists for the same (notification, user, channel).
	ErrDuplicateDelivery = errors.New("notification: duplicate delivery record")

	// ErrUnknownSeverity is returned when parsing an unrecognized severity name.
	ErrUnknownSeverity = errors.New("notification: unknown severity")
)
