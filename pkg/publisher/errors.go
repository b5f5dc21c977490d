package publisher

import "errors"

var (
	ErrBusNil         = errors.New("publisher: bus cannot be nil")
	ErrTransportNil   = errors.New("publisher: push transport cannot be nil")
	ErrBusUnavailable = errors.New("publisher: bus unavailable")
	ErrClosed         = errors.New("publisher: closed")
)
