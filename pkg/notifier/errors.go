package notifier

import "errors"

var (
	ErrStoreNil       = errors.New("notifier: store cannot be nil")
	ErrResolverNil    = errors.New("notifier: resolver cannot be nil")
	ErrPublisherNil   = errors.New("notifier: publisher cannot be nil")
	ErrCoordinatorNil = errors.New("notifier: email coordinator cannot be nil")
	ErrInvalidRequest = errors.New("notifier: invalid request")
)
