package templates_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notikit/notikit/pkg/templates"
)

func newEngine(t *testing.T, store templates.Store, opts ...templates.EngineOption) *templates.Engine {
	t.Helper()
	engine, err := templates.NewEngine(store, opts...)
	require.NoError(t, err)
	return engine
}

func createActive(t *testing.T, store templates.Store, tmpl templates.EmailTemplate) *templates.EmailTemplate {
	t.Helper()
	created, err := store.Create(context.Background(), tmpl)
	require.NoError(t, err)
	return created
}

func TestEngine_Render(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()
	createActive(t, store, templates.EmailTemplate{
		Key:     "alert",
		Subject: "[{{upper .Severity}}] {{.Title}}",
		HTML:    "<p>{{.Content}}</p>",
		Text:    "{{.Title}}: {{.Content}}",
		Headers: map[string]string{"X-Category": "alert"},
	})

	engine := newEngine(t, store)
	out, err := engine.Render(context.Background(), "alert", "", map[string]any{
		"Severity": "warning",
		"Title":    "Disk almost full",
		"Content":  "Volume /data is at 91%",
	})
	require.NoError(t, err)

	assert.Equal(t, "[WARNING] Disk almost full", out.Subject)
	assert.Equal(t, "<p>Volume /data is at 91%</p>", out.HTML)
	assert.Equal(t, "Disk almost full: Volume /data is at 91%", out.Text)
	assert.Equal(t, map[string]string{"X-Category": "alert"}, out.Headers)
}

func TestEngine_RenderInjectsDefaultsAndBuiltins(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()
	createActive(t, store, templates.EmailTemplate{
		Key:     "alert",
		Subject: "{{.Title}}",
		HTML:    "<p>{{.Greeting}} ({{.Environment}})</p>",
		Text:    "{{.Greeting}}",
		Variables: []templates.Variable{
			{Name: "Greeting", Default: "Hello"},
			{Name: "Title", Default: "Notification"},
		},
	})

	engine := newEngine(t, store, templates.WithEnvironment("staging"))
	out, err := engine.Render(context.Background(), "alert", "", map[string]any{
		"Title": "Override",
	})
	require.NoError(t, err)

	assert.Equal(t, "Override", out.Subject, "caller value wins over the default")
	assert.Equal(t, "<p>Hello (staging)</p>", out.HTML, "declared default and Environment injected")
}

func TestEngine_GlobalFallback(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()
	// Only the global template for the key exists
	createActive(t, store, templates.EmailTemplate{
		Key:     "alert",
		Subject: "global: {{.Title}}",
		HTML:    "<p>{{.Title}}</p>",
		Text:    "{{.Title}}",
	})

	engine := newEngine(t, store)
	out, err := engine.Render(context.Background(), "alert", "monitoring", map[string]any{"Title": "x"})
	require.NoError(t, err)
	assert.Equal(t, "global: x", out.Subject)
}

func TestEngine_TemplateNotFound(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, templates.NewMemoryStore())
	_, err := engine.Render(context.Background(), "nope", "monitoring", nil)
	assert.ErrorIs(t, err, templates.ErrTemplateNotFound)
}

func TestEngine_CSSInjection(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()

	t.Run("into existing head", func(t *testing.T) {
		createActive(t, store, templates.EmailTemplate{
			Key:       "with-head",
			Subject:   "s",
			HTML:      "<html><head><title>t</title></head><body>{{.Title}}</body></html>",
			Text:      "t",
			CustomCSS: "body { color: black; }",
		})

		engine := newEngine(t, store)
		out, err := engine.Render(context.Background(), "with-head", "", map[string]any{"Title": "x"})
		require.NoError(t, err)
		assert.Contains(t, out.HTML, "<style>\nbody { color: black; }\n</style></head>")
	})

	t.Run("prepended without head", func(t *testing.T) {
		createActive(t, store, templates.EmailTemplate{
			Key:       "no-head",
			Subject:   "s",
			HTML:      "<p>{{.Title}}</p>",
			Text:      "t",
			CustomCSS: "p { margin: 0; }",
		})

		engine := newEngine(t, store)
		out, err := engine.Render(context.Background(), "no-head", "", map[string]any{"Title": "x"})
		require.NoError(t, err)
		assert.True(t, len(out.HTML) > 0)
		assert.Contains(t, out.HTML, "<style>\np { margin: 0; }\n</style>\n<p>x</p>")
	})
}

func TestEngine_CacheInvalidation(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()
	created := createActive(t, store, templates.EmailTemplate{
		Key:     "alert",
		Subject: "v1",
		HTML:    "<p>v1</p>",
		Text:    "v1",
	})

	engine := newEngine(t, store)

	out, err := engine.Render(context.Background(), "alert", "", nil)
	require.NoError(t, err)
	require.Equal(t, "v1", out.Subject)

	// Update through the engine must invalidate the cached entry
	created.Subject = "v2"
	created.HTML = "<p>v2</p>"
	created.Text = "v2"
	require.NoError(t, engine.UpdateTemplate(context.Background(), *created))

	out, err = engine.Render(context.Background(), "alert", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "v2", out.Subject, "stale cache entry served after update")
}

func TestEngine_CacheServesWithinTTL(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()
	created := createActive(t, store, templates.EmailTemplate{
		Key:     "alert",
		Subject: "v1",
		HTML:    "<p>v1</p>",
		Text:    "v1",
	})

	engine := newEngine(t, store, templates.WithCacheTTL(time.Minute))

	_, err := engine.Render(context.Background(), "alert", "", nil)
	require.NoError(t, err)

	// A write that bypasses the engine is not seen until TTL expiry
	created.Subject = "v2"
	require.NoError(t, store.Update(context.Background(), *created))

	out, err := engine.Render(context.Background(), "alert", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "v1", out.Subject)
}

func TestEngine_Helpers(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()
	createActive(t, store, templates.EmailTemplate{
		Key:     "helpers",
		Subject: "{{title .Name}}",
		HTML:    `<p style="color: {{severityColor .Severity}}">{{formatDate .When "2006-01-02"}}</p>`,
		Text:    "{{lower .Name}} {{upper .Name}}",
	})

	engine := newEngine(t, store)
	out, err := engine.Render(context.Background(), "helpers", "", map[string]any{
		"Name":     "disk monitor",
		"Severity": "critical",
		"When":     time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Equal(t, "Disk Monitor", out.Subject)
	assert.Contains(t, out.HTML, "#dc3545")
	assert.Contains(t, out.HTML, "2025-03-10")
	assert.Equal(t, "disk monitor DISK MONITOR", out.Text)
}
