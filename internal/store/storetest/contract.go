// Package storetest holds the behaviour every field configuration store must
// honour, shared by the memory and sqlite test suites.
package storetest

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-seoform/pkg/discovery"
	"github.com/goliatone/go-seoform/pkg/fields"
)

// Store is the surface exercised by the contract.
type Store interface {
	fields.Store
	discovery.FieldMapReader
	DisplayComponent(ctx context.Context, key fields.DisplayKey, fieldName string) (map[string]any, bool, error)
}

// RunContract runs the store contract against stores built by factory.
func RunContract(t *testing.T, factory func(t *testing.T) Store) {
	t.Helper()

	t.Run("storage round trip", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()

		_, found, err := store.LoadStorage(ctx, "node", "field_yoast_seo")
		require.NoError(t, err)
		require.False(t, found)

		want := fields.StorageDescriptor{EntityType: "node", FieldName: "field_yoast_seo", Type: "yoast_seo", Translatable: true}
		require.NoError(t, store.CreateStorage(ctx, want))

		got, found, err := store.LoadStorage(ctx, "node", "field_yoast_seo")
		require.NoError(t, err)
		require.True(t, found)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("storage mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("field round trip and delete", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()

		want := fields.Descriptor{
			FieldName: "field_yoast_seo", EntityType: "node", Bundle: "article",
			StorageType: "yoast_seo", Translatable: true, Label: "Real-time SEO",
		}
		require.NoError(t, store.CreateField(ctx, want))

		got, found, err := store.LoadField(ctx, "node", "article", "field_yoast_seo")
		require.NoError(t, err)
		require.True(t, found)
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("field mismatch (-want +got):\n%s", diff)
		}

		_, found, err = store.LoadField(ctx, "node", "page", "field_yoast_seo")
		require.NoError(t, err)
		require.False(t, found, "fields are bundle scoped")

		require.NoError(t, store.DeleteField(ctx, "node", "article", "field_yoast_seo"))
		_, found, err = store.LoadField(ctx, "node", "article", "field_yoast_seo")
		require.NoError(t, err)
		require.False(t, found)

		require.NoError(t, store.DeleteField(ctx, "node", "article", "field_yoast_seo"), "deleting twice is allowed")
	})

	t.Run("display components", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()
		key := fields.DisplayKey{EntityType: "node", Bundle: "article", Mode: fields.DefaultDisplay, Context: fields.DisplayForm}

		require.NoError(t, store.SetDisplayComponent(ctx, key, "field_yoast_seo", map[string]any{}))
		options, found, err := store.DisplayComponent(ctx, key, "field_yoast_seo")
		require.NoError(t, err)
		require.True(t, found)
		require.Empty(t, options)

		require.NoError(t, store.CreateField(ctx, fields.Descriptor{FieldName: "field_yoast_seo", EntityType: "node", Bundle: "article", StorageType: "yoast_seo"}))
		require.NoError(t, store.DeleteField(ctx, "node", "article", "field_yoast_seo"))
		_, found, err = store.DisplayComponent(ctx, key, "field_yoast_seo")
		require.NoError(t, err)
		require.False(t, found, "deleting a field drops its display components")
	})

	t.Run("display components are returned by value", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()
		key := fields.DisplayKey{EntityType: "node", Bundle: "page", Mode: fields.DefaultDisplay, Context: fields.DisplayView}

		require.NoError(t, store.SetDisplayComponent(ctx, key, "field_yoast_seo", map[string]any{"type": "yoast_seo_formatter"}))
		options, found, err := store.DisplayComponent(ctx, key, "field_yoast_seo")
		require.NoError(t, err)
		require.True(t, found)
		options["type"] = "tampered"
		options["label"] = "hidden"

		again, _, err := store.DisplayComponent(ctx, key, "field_yoast_seo")
		require.NoError(t, err)
		require.Equal(t, map[string]any{"type": "yoast_seo_formatter"}, again)
	})

	t.Run("field map by type", func(t *testing.T) {
		store := factory(t)
		ctx := context.Background()

		seed := []fields.Descriptor{
			{FieldName: "body", EntityType: "node", Bundle: "page", StorageType: discovery.FieldTypeTextWithSummary},
			{FieldName: "body", EntityType: "node", Bundle: "article", StorageType: discovery.FieldTypeTextWithSummary},
			{FieldName: "field_text", EntityType: discovery.ParagraphEntityType, Bundle: "text", StorageType: discovery.FieldTypeTextLong},
			{FieldName: "field_sections", EntityType: "node", Bundle: "article", StorageType: discovery.FieldTypeEntityReferenceRevisions},
		}
		for _, field := range seed {
			require.NoError(t, store.CreateField(ctx, field))
		}

		got, err := store.FieldMapByFieldType(ctx, discovery.FieldTypeTextWithSummary)
		require.NoError(t, err)
		want := discovery.FieldMap{"node": {"body": {"article", "page"}}}
		if diff := cmp.Diff(want, got); diff != "" {
			t.Fatalf("field map mismatch (-want +got):\n%s", diff)
		}

		empty, err := store.FieldMapByFieldType(ctx, discovery.FieldTypeStringLong)
		require.NoError(t, err)
		require.Empty(t, empty)
	})
}
