package badger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/storage"
)

func newTestCatalog(t *testing.T) (storage.CatalogRepository, storage.CacheRepository) {
	t.Helper()
	catalog, cache, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	t.Cleanup(func() {
		catalog.Close()
		backend.Close()
	})
	return catalog, cache
}

func sampleItem(name string) *core.FoodItem {
	return &core.FoodItem{
		Name:             name,
		ReferenceWeightG: 100,
		PH:               6.0,
		Nutrients: map[core.NutrientType]float64{
			core.NutrientProtein: 5,
		},
	}
}

func TestCatalogAddFoodItems(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	items, err := catalog.AddFoodItems(ctx, sampleItem("Apple"), sampleItem("Banana"))
	require.NoError(t, err)
	require.Len(t, items, 2)

	assert.NotZero(t, items[0].Id)
	assert.NotZero(t, items[1].Id)
	assert.NotEqual(t, items[0].Id, items[1].Id)
	assert.False(t, items[0].InsertedAt.IsZero())
	assert.Equal(t, items[0].InsertedAt, items[0].UpdatedAt)

	got, err := catalog.GetFoodItem(ctx, items[0].Id)
	require.NoError(t, err)
	assert.Equal(t, "Apple", got.Name)
}

func TestCatalogGetFoodItemNotFound(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	_, err := catalog.GetFoodItem(context.Background(), 9999)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCatalogUpdateFoodItems(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	items, err := catalog.AddFoodItems(ctx, sampleItem("Apple"))
	require.NoError(t, err)
	item := items[0]
	inserted := item.InsertedAt

	item.Name = "Green Apple"
	item.PH = 3.5
	_, err = catalog.UpdateFoodItems(ctx, item)
	require.NoError(t, err)

	got, err := catalog.GetFoodItem(ctx, item.Id)
	require.NoError(t, err)
	assert.Equal(t, "Green Apple", got.Name)
	assert.Equal(t, 3.5, got.PH)
	assert.Equal(t, inserted, got.InsertedAt)
	assert.True(t, got.UpdatedAt.After(inserted) || got.UpdatedAt.Equal(inserted))
}

func TestCatalogUpdateMissingItem(t *testing.T) {
	catalog, _ := newTestCatalog(t)

	missing := sampleItem("Ghost")
	missing.Id = 4242
	_, err := catalog.UpdateFoodItems(context.Background(), missing)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCatalogDeleteFoodItems(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	items, err := catalog.AddFoodItems(ctx, sampleItem("Apple"))
	require.NoError(t, err)

	require.NoError(t, catalog.DeleteFoodItems(ctx, items[0].Id))

	_, err = catalog.GetFoodItem(ctx, items[0].Id)
	assert.ErrorIs(t, err, storage.ErrNotFound)

	assert.ErrorIs(t, catalog.DeleteFoodItems(ctx, items[0].Id), storage.ErrNotFound)
}

func TestCatalogGetFoodItemsSkipsMissing(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	items, err := catalog.AddFoodItems(ctx, sampleItem("Apple"), sampleItem("Banana"))
	require.NoError(t, err)

	got, err := catalog.GetFoodItems(ctx, items[0].Id, 9999, items[1].Id)
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestCatalogSetFavorite(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	items, err := catalog.AddFoodItems(ctx, sampleItem("Apple"))
	require.NoError(t, err)

	updated, err := catalog.SetFavorite(ctx, items[0].Id, true)
	require.NoError(t, err)
	assert.True(t, updated.IsFavorite)

	got, err := catalog.GetFoodItem(ctx, items[0].Id)
	require.NoError(t, err)
	assert.True(t, got.IsFavorite)

	_, err = catalog.SetFavorite(ctx, 9999, true)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestCatalogCountAndForEach(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	count, err := catalog.CountFoodItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	_, err = catalog.AddFoodItems(ctx, sampleItem("Apple"), sampleItem("Banana"), sampleItem("Cherry"))
	require.NoError(t, err)

	count, err = catalog.CountFoodItems(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	var names []string
	err = catalog.ForEachFoodItem(ctx, func(item *core.FoodItem) error {
		names = append(names, item.Name)
		return nil
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"Apple", "Banana", "Cherry"}, names)
}

func TestCatalogForEachStopsOnError(t *testing.T) {
	catalog, _ := newTestCatalog(t)
	ctx := context.Background()

	_, err := catalog.AddFoodItems(ctx, sampleItem("Apple"), sampleItem("Banana"))
	require.NoError(t, err)

	visited := 0
	err = catalog.ForEachFoodItem(ctx, func(item *core.FoodItem) error {
		visited++
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 1, visited)
}

func TestClosedBackendRejectsOperations(t *testing.T) {
	catalog, cache, backend, err := NewMemoryRepositories()
	require.NoError(t, err)
	ctx := context.Background()

	_, err = catalog.AddFoodItems(ctx, sampleItem("Apple"))
	require.NoError(t, err)

	require.NoError(t, catalog.Close())
	require.NoError(t, backend.Close())
	require.NoError(t, backend.Close(), "closing twice is a no-op")

	_, err = catalog.GetFoodItem(ctx, 1)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = catalog.CountFoodItems(ctx)
	assert.ErrorIs(t, err, storage.ErrStorageClosed)

	_, err = cache.LoadCacheRecord(ctx, "main")
	assert.ErrorIs(t, err, storage.ErrStorageClosed)
}
