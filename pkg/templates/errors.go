package templates

import "errors"

var (
	// ErrTemplateNotFound is returned when neither an application-specific
	// nor a global template exists for a key.
	ErrTemplateNotFound = errors.New("templates: template not found")

	// ErrDuplicateKey is returned when creating a version that duplicates
	// an existing (key, application, version) triple.
	ErrDuplicateKey = errors.New("templates: duplicate template key")

	// ErrStoreNil is returned when a nil store is provided to NewEngine.
	ErrStoreNil = errors.New("templates: store cannot be nil")

	// ErrEmptyKey is returned when a template is created without a key.
	ErrEmptyKey = errors.New("templates: template key cannot be empty")
)
