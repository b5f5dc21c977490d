package preferences

import "errors"

// ErrStoreNil is returned when a nil store is provided to NewResolver.
var ErrStoreNil = errors.New("preferences: store cannot be nil")
