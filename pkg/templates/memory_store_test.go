package templates_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notikit/notikit/pkg/templates"
)

func TestMemoryStore_Versioning(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()
	ctx := context.Background()

	v1, err := store.Create(ctx, templates.EmailTemplate{Key: "alert", Subject: "v1", HTML: "h", Text: "t"})
	require.NoError(t, err)
	assert.Equal(t, 1, v1.Version)
	assert.True(t, v1.Active, "first version becomes active")

	v2, err := store.Create(ctx, templates.EmailTemplate{Key: "alert", Subject: "v2", HTML: "h", Text: "t"})
	require.NoError(t, err)
	assert.Equal(t, 2, v2.Version)
	assert.False(t, v2.Active, "later versions start inactive")

	// Versions are scoped per (key, application)
	appV1, err := store.Create(ctx, templates.EmailTemplate{Key: "alert", Application: "monitoring", Subject: "s", HTML: "h", Text: "t"})
	require.NoError(t, err)
	assert.Equal(t, 1, appV1.Version)
}

func TestMemoryStore_ActivateDeactivatesSiblings(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()
	ctx := context.Background()

	v1, err := store.Create(ctx, templates.EmailTemplate{Key: "alert", Subject: "v1", HTML: "h", Text: "t"})
	require.NoError(t, err)
	v2, err := store.Create(ctx, templates.EmailTemplate{Key: "alert", Subject: "v2", HTML: "h", Text: "t"})
	require.NoError(t, err)

	require.NoError(t, store.Activate(ctx, v2.ID))

	active, err := store.Active(ctx, "alert", "")
	require.NoError(t, err)
	assert.Equal(t, v2.ID, active.ID)

	got, err := store.Get(ctx, v1.ID)
	require.NoError(t, err)
	assert.False(t, got.Active, "activating a sibling deactivates the previous version")
}

func TestMemoryStore_Deactivate(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()
	ctx := context.Background()

	v1, err := store.Create(ctx, templates.EmailTemplate{Key: "alert", Subject: "s", HTML: "h", Text: "t"})
	require.NoError(t, err)
	require.NoError(t, store.Deactivate(ctx, v1.ID))

	_, err = store.Active(ctx, "alert", "")
	assert.ErrorIs(t, err, templates.ErrTemplateNotFound)
}

func TestMemoryStore_EmptyKeyRejected(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()
	_, err := store.Create(context.Background(), templates.EmailTemplate{Subject: "s", HTML: "h", Text: "t"})
	assert.ErrorIs(t, err, templates.ErrEmptyKey)
}

func TestMemoryStore_List(t *testing.T) {
	t.Parallel()

	store := templates.NewMemoryStore()
	ctx := context.Background()

	for range 3 {
		_, err := store.Create(ctx, templates.EmailTemplate{Key: "alert", Subject: "s", HTML: "h", Text: "t"})
		require.NoError(t, err)
	}

	versions, err := store.List(ctx, "alert", "")
	require.NoError(t, err)
	require.Len(t, versions, 3)
	assert.Equal(t, 3, versions[0].Version, "newest version first")
	assert.Equal(t, 1, versions[2].Version)
}
