package storage

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/nutridex/core"
)

func TestMarshalID(t *testing.T) {
	ids := []core.ID{0, 1, 127, 128, 1 << 40, 1<<64 - 1}
	for _, id := range ids {
		data := MarshalID(id)
		got, err := UnmarshalID(data)
		require.NoError(t, err)
		assert.Equal(t, id, got)
	}
}

func TestMarshalFoodItem(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	item := &core.FoodItem{
		Id:               42,
		Name:             "Lentil Soup",
		ReferenceWeightG: 250,
		MinAgeMonths:     12,
		PH:               5.9,
		Diets:            []string{"vegan", "glutenFree"},
		Allergens:        []string{"celery"},
		IsRecipe:         true,
		Nutrients: map[core.NutrientType]float64{
			core.NutrientProtein: 9.1,
			core.NutrientIron:    3.3,
		},
		Ingredients: []core.IngredientRef{
			{ItemId: 7, AmountG: 200},
			{ItemId: 9, AmountG: 50},
		},
		TokenCache: []string{"lentil", "soup"},
		InsertedAt: now,
		UpdatedAt:  now,
	}

	data := MarshalFoodItem(item)
	got, err := UnmarshalFoodItem(data)
	require.NoError(t, err)
	assert.Equal(t, item, got)
}

func TestUnmarshalFoodItemCorrupt(t *testing.T) {
	_, err := UnmarshalFoodItem([]byte{0xff})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSerializationFailed)
}

func TestMarshalCacheRecord(t *testing.T) {
	record := &core.CacheRecord{
		Key:       "main",
		Payload:   []byte{1, 2, 3, 4},
		Checksum:  0xdeadbeef,
		ItemCount: 128,
		Version:   3,
		CreatedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}

	data := MarshalCacheRecord(record)
	got, err := UnmarshalCacheRecord(data)
	require.NoError(t, err)
	assert.Equal(t, record, got)
}
