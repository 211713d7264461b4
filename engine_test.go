package nutridex

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/knowledge"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	engine, err := NewEngine("", WithInMemory(), WithoutSemantic())
	require.NoError(t, err)
	t.Cleanup(func() { engine.Close() })
	return engine
}

func TestNewEngine(t *testing.T) {
	t.Run("create new engine", func(t *testing.T) {
		tmpDir := filepath.Join(t.TempDir(), "test_db")
		engine, err := NewEngine(tmpDir, WithoutSemantic())
		require.NoError(t, err)
		require.NotNil(t, engine)
		defer engine.Close()

		// Verify components are initialized
		assert.NotNil(t, engine.CatalogRepository())
		assert.NotNil(t, engine.IndexStore())
		assert.NotNil(t, engine.backend)
		assert.NotNil(t, engine.logger)
	})

	t.Run("error with invalid path", func(t *testing.T) {
		// Try to open the backend at a file path instead of a directory
		tmpFile := filepath.Join(t.TempDir(), "not_a_dir")
		err := os.WriteFile(tmpFile, []byte("test"), 0644)
		require.NoError(t, err)

		engine, err := NewEngine(tmpFile, WithoutSemantic())
		assert.Error(t, err)
		assert.Nil(t, engine)
	})
}

func TestEngineLifecycle(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()

	require.NoError(t, engine.EnsureIndexReady(ctx))
	// Idempotent.
	require.NoError(t, engine.EnsureIndexReady(ctx))

	added, err := engine.AddItems(ctx,
		&core.FoodItem{
			Name:             "Lentil Soup",
			ReferenceWeightG: 100,
			Diets:            []string{knowledge.DietVegan},
			Nutrients:        map[core.NutrientType]float64{core.NutrientProtein: 9},
		},
		&core.FoodItem{
			Name:             "Beef Stew",
			ReferenceWeightG: 100,
			Nutrients:        map[core.NutrientType]float64{core.NutrientProtein: 15},
		},
	)
	require.NoError(t, err)
	require.Len(t, added, 2)

	t.Run("search reaches fresh items", func(t *testing.T) {
		results, err := engine.Search(ctx, "protein", core.FilterSet{}, nil, 0)
		require.NoError(t, err)
		require.Len(t, results, 2)
		assert.Equal(t, "Beef Stew", results[0].Name)
	})

	t.Run("materialize loads catalog records", func(t *testing.T) {
		results, err := engine.Search(ctx, "soup", core.FilterSet{}, nil, 0)
		require.NoError(t, err)
		items, skipped, err := engine.Materialize(ctx, results)
		require.NoError(t, err)
		assert.Zero(t, skipped)
		require.Len(t, items, 1)
		assert.Equal(t, "Lentil Soup", items[0].Name)
	})

	t.Run("materialize skips vanished items", func(t *testing.T) {
		ghost := []core.ScoredItem{{Id: 99999, Name: "Gone"}}
		items, skipped, err := engine.Materialize(ctx, ghost)
		require.NoError(t, err)
		assert.Empty(t, items)
		assert.Equal(t, 1, skipped)
	})

	t.Run("update renames index entry", func(t *testing.T) {
		renamed := *added[0]
		renamed.Name = "Chickpea Soup"
		require.NoError(t, engine.UpdateItem(ctx, &renamed))

		results, err := engine.Search(ctx, "chickpea", core.FilterSet{}, nil, 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, renamed.Id, results[0].Id)
	})

	t.Run("set favorite filters through", func(t *testing.T) {
		require.NoError(t, engine.SetFavorite(ctx, added[1].Id, true))
		results, err := engine.Search(ctx, "", core.FilterSet{FavoritesOnly: true}, nil, 0)
		require.NoError(t, err)
		require.Len(t, results, 1)
		assert.Equal(t, added[1].Id, results[0].Id)
	})

	t.Run("remove drops item everywhere", func(t *testing.T) {
		require.NoError(t, engine.RemoveItem(ctx, added[1].Id))
		results, err := engine.Search(ctx, "stew", core.FilterSet{}, nil, 0)
		require.NoError(t, err)
		assert.Empty(t, results)
	})

	t.Run("force rebuild refreshes rankings", func(t *testing.T) {
		require.NoError(t, engine.ForceRebuild(ctx))
		ranking := engine.IndexStore().Ranking(core.NutrientProtein)
		assert.Len(t, ranking, 1)
	})
}

func TestEngineDisplayHelpers(t *testing.T) {
	engine := newTestEngine(t)
	ctx := context.Background()
	require.NoError(t, engine.EnsureIndexReady(ctx))

	added, err := engine.AddItems(ctx, &core.FoodItem{
		Name:             "Sesame Paste",
		ReferenceWeightG: 100,
		Nutrients: map[core.NutrientType]float64{
			// 1200 mg per 100 g scales up to 1.2 g for display.
			core.NutrientCalcium: 1200,
		},
	})
	require.NoError(t, err)

	t.Run("scaled display value", func(t *testing.T) {
		value, unit, ok := engine.NormalizedAndScaledValue(added[0].Id, core.NutrientCalcium)
		require.True(t, ok)
		assert.InDelta(t, 1.2, value, 1e-9)
		assert.Equal(t, core.UnitGram, unit)
	})

	t.Run("missing nutrient reports none", func(t *testing.T) {
		_, _, ok := engine.NormalizedAndScaledValue(added[0].Id, core.NutrientFiber)
		assert.False(t, ok)
	})

	t.Run("display name lookup", func(t *testing.T) {
		assert.Equal(t, "Calcium", engine.DisplayName(core.NutrientCalcium))
	})
}

func TestEngineIngestionPipeline(t *testing.T) {
	engine := newTestEngine(t)
	require.NoError(t, engine.EnsureIndexReady(context.Background()))

	pipeline, err := engine.NewIngestionPipeline()
	require.NoError(t, err)
	defer pipeline.Release()

	added, err := pipeline.Ingest(context.Background(), &core.FoodItem{
		Name:             "Quinoa Bowl",
		ReferenceWeightG: 100,
	})
	require.NoError(t, err)
	require.Len(t, added, 1)
}
