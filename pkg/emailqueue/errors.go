package emailqueue

import "errors"

var (
	ErrEntryNotFound = errors.New("emailqueue: entry not found")
	ErrInvalidEntry  = errors.New("emailqueue: invalid entry")
	ErrStorageNil    = errors.New("emailqueue: storage cannot be nil")
	ErrSenderNil     = errors.New("emailqueue: sender cannot be nil")
	ErrEngineNil     = errors.New("emailqueue: template engine cannot be nil")
)
