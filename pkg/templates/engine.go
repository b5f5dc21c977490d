package templates

import (
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"log/slog"
	"regexp"
	"strings"
	texttemplate "text/template"
	"time"

	"github.com/notikit/notikit/pkg/cache"
)

// DefaultCacheTTL bounds how long a resolved template is served from cache.
const DefaultCacheTTL = 5 * time.Minute

// Rendered is the output of rendering a template against a variable context.
type Rendered struct {
	Subject string
	HTML    string
	Text    string
	Headers map[string]string
}

type cacheKey struct {
	application string
	key         string
}

// Engine renders stored email templates. Templates are resolved per
// (application, key) with a fallback to the global template for the key,
// and cached with a short TTL; every write operation invalidates the
// affected cache entry.
type Engine struct {
	store       Store
	cache       *cache.TTLCache[cacheKey, EmailTemplate]
	environment string
	logger      *slog.Logger
	now         func() time.Time
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	cacheTTL    time.Duration
	environment string
	logger      *slog.Logger
	now         func() time.Time
}

// WithCacheTTL overrides the template cache TTL.
func WithCacheTTL(d time.Duration) EngineOption {
	return func(o *engineOptions) {
		if d > 0 {
			o.cacheTTL = d
		}
	}
}

// WithEnvironment sets the value injected as the Environment variable.
func WithEnvironment(env string) EngineOption {
	return func(o *engineOptions) {
		if env != "" {
			o.environment = env
		}
	}
}

// WithEngineLogger sets the logger for the Engine.
func WithEngineLogger(l *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithEngineClock overrides the time source, primarily for tests.
func WithEngineClock(now func() time.Time) EngineOption {
	return func(o *engineOptions) {
		if now != nil {
			o.now = now
		}
	}
}

// NewEngine creates a template engine backed by the given store.
func NewEngine(store Store, opts ...EngineOption) (*Engine, error) {
	if store == nil {
		return nil, ErrStoreNil
	}

	options := &engineOptions{
		cacheTTL:    DefaultCacheTTL,
		environment: "production",
		logger:      slog.Default(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(options)
	}

	return &Engine{
		store:       store,
		cache:       cache.NewTTLCache[cacheKey, EmailTemplate](options.cacheTTL),
		environment: options.environment,
		logger:      options.logger,
		now:         options.now,
	}, nil
}

// Render resolves the template for (key, application), builds the variable
// context and renders subject, HTML and text bodies.
func (e *Engine) Render(ctx context.Context, key, application string, vars map[string]any) (*Rendered, error) {
	tmpl, err := e.resolve(ctx, key, application)
	if err != nil {
		return nil, err
	}

	data := e.buildContext(tmpl, vars)

	subject, err := renderText("subject", tmpl.Subject, data)
	if err != nil {
		return nil, fmt.Errorf("render subject for %q: %w", key, err)
	}

	htmlBody, err := renderHTML("html", injectCSS(tmpl.HTML, tmpl.CustomCSS), data)
	if err != nil {
		return nil, fmt.Errorf("render html for %q: %w", key, err)
	}

	textBody, err := renderText("text", tmpl.Text, data)
	if err != nil {
		return nil, fmt.Errorf("render text for %q: %w", key, err)
	}

	return &Rendered{
		Subject: subject,
		HTML:    htmlBody,
		Text:    textBody,
		Headers: cloneHeaders(tmpl.Headers),
	}, nil
}

// CreateTemplate stores a new template version and invalidates the cache
// entry for its (application, key) pair.
func (e *Engine) CreateTemplate(ctx context.Context, t EmailTemplate) (*EmailTemplate, error) {
	created, err := e.store.Create(ctx, t)
	if err != nil {
		return nil, err
	}
	e.invalidate(created.Application, created.Key)
	return created, nil
}

// UpdateTemplate updates a version's content and invalidates its cache entry.
func (e *Engine) UpdateTemplate(ctx context.Context, t EmailTemplate) error {
	if err := e.store.Update(ctx, t); err != nil {
		return err
	}
	e.invalidate(t.Application, t.Key)
	return nil
}

// ActivateTemplate makes a version active and invalidates its cache entry.
func (e *Engine) ActivateTemplate(ctx context.Context, id string) error {
	t, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := e.store.Activate(ctx, id); err != nil {
		return err
	}
	e.invalidate(t.Application, t.Key)
	return nil
}

// DeactivateTemplate marks a version inactive and invalidates its cache entry.
func (e *Engine) DeactivateTemplate(ctx context.Context, id string) error {
	t, err := e.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if err := e.store.Deactivate(ctx, id); err != nil {
		return err
	}
	e.invalidate(t.Application, t.Key)
	return nil
}

// Store returns the underlying template store.
func (e *Engine) Store() Store {
	return e.store
}

func (e *Engine) resolve(ctx context.Context, key, application string) (*EmailTemplate, error) {
	ck := cacheKey{application, key}
	if cached, ok := e.cache.Get(ck); ok {
		return &cached, nil
	}

	tmpl, err := e.store.Active(ctx, key, application)
	if errors.Is(err, ErrTemplateNotFound) && application != "" {
		// Fall back to the global template for the key
		tmpl, err = e.store.Active(ctx, key, "")
	}
	if err != nil {
		if errors.Is(err, ErrTemplateNotFound) {
			return nil, fmt.Errorf("%w: %q for application %q", ErrTemplateNotFound, key, application)
		}
		return nil, err
	}

	// A global fallback is cached under the requesting application's key;
	// staleness after a global template write is bounded by the TTL.
	e.cache.Put(ck, *tmpl)
	return tmpl, nil
}

func (e *Engine) invalidate(application, key string) {
	e.cache.Remove(cacheKey{application, key})
}

// buildContext merges caller variables over the template's declared
// defaults and guarantees Timestamp and Environment are present.
func (e *Engine) buildContext(tmpl *EmailTemplate, vars map[string]any) map[string]any {
	data := make(map[string]any, len(vars)+len(tmpl.Variables)+2)
	for k, v := range vars {
		data[k] = v
	}
	for _, decl := range tmpl.Variables {
		if _, ok := data[decl.Name]; !ok && decl.Default != "" {
			data[decl.Name] = decl.Default
		}
	}
	if _, ok := data["Timestamp"]; !ok {
		data["Timestamp"] = e.now()
	}
	if _, ok := data["Environment"]; !ok {
		data["Environment"] = e.environment
	}
	return data
}

func renderText(name, body string, data map[string]any) (string, error) {
	t, err := texttemplate.New(name).Funcs(funcMap()).Option("missingkey=zero").Parse(body)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return stripNoValue(sb.String()), nil
}

func renderHTML(name, body string, data map[string]any) (string, error) {
	t, err := htmltemplate.New(name).Funcs(funcMap()).Option("missingkey=zero").Parse(body)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	if err := t.Execute(&sb, data); err != nil {
		return "", err
	}
	return stripNoValue(sb.String()), nil
}

// missingkey=zero renders absent map keys as "<no value>" for untyped nil;
// blank them instead so unresolved variables produce empty output.
func stripNoValue(s string) string {
	return strings.ReplaceAll(s, "<no value>", "")
}

var headCloseRe = regexp.MustCompile(`(?i)</head>`)

// injectCSS places the custom stylesheet into an existing head block when
// one exists, otherwise prepends it to the document.
func injectCSS(html, css string) string {
	if css == "" {
		return html
	}
	style := "<style>\n" + css + "\n</style>"
	if loc := headCloseRe.FindStringIndex(html); loc != nil {
		return html[:loc[0]] + style + html[loc[0]:]
	}
	return style + "\n" + html
}
