package templates_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notikit/notikit/pkg/templates"
)

func TestValidate_Valid(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, templates.NewMemoryStore())
	result := engine.Validate(templates.EmailTemplate{
		Key:     "alert",
		Subject: "{{.Title}}",
		HTML:    "<p>{{.Content}}</p>",
		Text:    "{{.Content}}",
		Variables: []templates.Variable{
			{Name: "Title", Sample: "sample title"},
			{Name: "Content", Sample: "sample content"},
		},
	}, map[string]any{"Title": "t", "Content": "c"})

	assert.True(t, result.IsValid)
	assert.Empty(t, result.Errors)
	assert.Empty(t, result.MissingVariables)
	assert.Empty(t, result.UnusedVariables)
}

func TestValidate_MissingVariable(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, templates.NewMemoryStore())
	result := engine.Validate(templates.EmailTemplate{
		Key:     "alert",
		Subject: "{{.Title}}",
		HTML:    "<p>{{.Foo}}</p>",
		Text:    "{{.Title}}",
	}, map[string]any{"Title": "t"})

	// Foo is absent from both supplied variables and declared defaults
	assert.Contains(t, result.MissingVariables, "Foo")
	assert.True(t, result.IsValid, "missing variables are warnings, not failures")
}

func TestValidate_DefaultResolvesReference(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, templates.NewMemoryStore())
	result := engine.Validate(templates.EmailTemplate{
		Key:     "alert",
		Subject: "{{.Title}}",
		HTML:    "<p>{{.Greeting}}</p>",
		Text:    "{{.Title}}",
		Variables: []templates.Variable{
			{Name: "Greeting", Default: "Hello"},
		},
	}, map[string]any{"Title": "t"})

	assert.NotContains(t, result.MissingVariables, "Greeting")
}

func TestValidate_UnusedDeclaration(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, templates.NewMemoryStore())
	result := engine.Validate(templates.EmailTemplate{
		Key:     "alert",
		Subject: "{{.Title}}",
		HTML:    "<p>{{.Title}}</p>",
		Text:    "{{.Title}}",
		Variables: []templates.Variable{
			{Name: "Title", Sample: "t"},
			{Name: "Orphan", Sample: "never referenced"},
		},
	}, map[string]any{"Title": "t"})

	assert.Equal(t, []string{"Orphan"}, result.UnusedVariables)
	assert.True(t, result.IsValid)
}

func TestValidate_EmptyRenderIsError(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, templates.NewMemoryStore())
	result := engine.Validate(templates.EmailTemplate{
		Key:     "alert",
		Subject: "{{.Title}}",
		HTML:    "<p>{{.Title}}</p>",
		Text:    "   ",
	}, map[string]any{"Title": "t"})

	require.False(t, result.IsValid)
	assert.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "text")
}

func TestValidate_CompileErrorIsError(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, templates.NewMemoryStore())
	result := engine.Validate(templates.EmailTemplate{
		Key:     "alert",
		Subject: "{{.Title}}",
		HTML:    "<p>{{.Title</p>",
		Text:    "{{.Title}}",
	}, map[string]any{"Title": "t"})

	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidate_HelperInvocationsNotCountedAsVariables(t *testing.T) {
	t.Parallel()

	engine := newEngine(t, templates.NewMemoryStore())
	result := engine.Validate(templates.EmailTemplate{
		Key:     "alert",
		Subject: "{{.Title}}",
		HTML:    `<p>{{formatDate .Timestamp "2006-01-02"}} {{if .Title}}{{.Title}}{{end}}</p>`,
		Text:    "{{.Title}}",
	}, map[string]any{"Title": "t"})

	assert.Empty(t, result.MissingVariables, "tokens with spaces or parens are not variable references")
}
