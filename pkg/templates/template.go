package templates

import (
	"context"
	"time"
)

// Variable declares a substitution variable a template expects, together
// with the default injected when the caller does not supply a value.
type Variable struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`
	Default     string `json:"default,omitempty" yaml:"default,omitempty"`
	Required    bool   `json:"required,omitempty" yaml:"required,omitempty"`
	Sample      string `json:"sample,omitempty" yaml:"sample,omitempty"`
}

// EmailTemplate is one version of a notification email template. Multiple
// versions may exist per (Key, Application); at most one is active at a time.
// An empty Application marks the global fallback for the key.
type EmailTemplate struct {
	ID          string            `json:"id" yaml:"-"`
	Key         string            `json:"key" yaml:"key"`
	Application string            `json:"application,omitempty" yaml:"application,omitempty"`
	Subject     string            `json:"subject" yaml:"subject"`
	HTML        string            `json:"html" yaml:"html"`
	Text        string            `json:"text" yaml:"text"`
	Variables   []Variable        `json:"variables,omitempty" yaml:"variables,omitempty"`
	CustomCSS   string            `json:"custom_css,omitempty" yaml:"custom_css,omitempty"`
	Headers     map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`
	Version     int               `json:"version" yaml:"-"`
	Active      bool              `json:"active" yaml:"-"`
	Default     bool              `json:"default" yaml:"default,omitempty"`
	CreatedAt   time.Time         `json:"created_at" yaml:"-"`
}

// Store handles template persistence and version management.
type Store interface {
	// Active returns the active version for (key, application).
	// Returns ErrTemplateNotFound if no active version exists.
	Active(ctx context.Context, key, application string) (*EmailTemplate, error)

	// Get retrieves a template version by id.
	Get(ctx context.Context, id string) (*EmailTemplate, error)

	// Create stores a new version for (Key, Application), assigning the
	// next monotonic version number. The new version starts inactive
	// unless no active version exists for the pair.
	Create(ctx context.Context, t EmailTemplate) (*EmailTemplate, error)

	// Update replaces the bodies, variables, CSS and headers of a version.
	Update(ctx context.Context, t EmailTemplate) error

	// Activate makes the version the single active one for its
	// (Key, Application) pair, deactivating its siblings.
	Activate(ctx context.Context, id string) error

	// Deactivate marks a version inactive.
	Deactivate(ctx context.Context, id string) error

	// List returns all versions for (key, application), newest first.
	List(ctx context.Context, key, application string) ([]EmailTemplate, error)
}
