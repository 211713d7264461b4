package core

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleCompactItem() CompactItem {
	return CompactItem{
		Id:   42,
		Name: "Chicken Salad",
		SearchTokens: map[string]struct{}{
			"chicken": {}, "salad": {},
		},
		MinAgeMonths:     12,
		Diets:            map[string]struct{}{"glutenFree": {}},
		Allergens:        map[string]struct{}{"egg": {}},
		PH:               5.8,
		ReferenceWeightG: 250,
		IsRecipe:         true,
		NutrientValues: map[NutrientType]float64{
			NutrientProtein: 31.5,
			NutrientSodium:  480,
		},
	}
}

func TestCompactItemRoundTrip(t *testing.T) {
	item := sampleCompactItem()

	bs := make([]byte, CompactItemMUS.Size(item))
	n := CompactItemMUS.Marshal(item, bs)
	assert.Equal(t, len(bs), n)

	decoded, n, err := CompactItemMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, item, decoded)
}

func TestCompactItemEmptySets(t *testing.T) {
	item := CompactItem{
		Id:               1,
		Name:             "Water",
		SearchTokens:     map[string]struct{}{"water": {}},
		Diets:            map[string]struct{}{},
		Allergens:        map[string]struct{}{},
		ReferenceWeightG: 100,
		NutrientValues:   map[NutrientType]float64{},
	}

	bs := make([]byte, CompactItemMUS.Size(item))
	CompactItemMUS.Marshal(item, bs)

	decoded, _, err := CompactItemMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, item, decoded)
}

func TestStringSetDeterministicEncoding(t *testing.T) {
	// Two maps with the same members must encode identically regardless of
	// insertion order.
	a := map[string]struct{}{"tomato": {}, "basil": {}, "olive": {}}
	b := map[string]struct{}{"olive": {}, "tomato": {}, "basil": {}}

	bsA := make([]byte, StringSetMUS.Size(a))
	StringSetMUS.Marshal(a, bsA)
	bsB := make([]byte, StringSetMUS.Size(b))
	StringSetMUS.Marshal(b, bsB)

	assert.Equal(t, bsA, bsB)
}

func TestIndexSnapshotRoundTrip(t *testing.T) {
	item := sampleCompactItem()
	snapshot := IndexSnapshot{
		Items: map[ID]CompactItem{42: item},
		InvertedIndex: map[string][]ID{
			"chicken": {42},
			"salad":   {42},
		},
		Vocabulary: []string{"chicken", "salad"},
		MaxNutrientValues: map[NutrientType]float64{
			NutrientProtein: 12.6,
			NutrientSodium:  192,
		},
		KnownDiets: []string{"glutenFree"},
		NutrientRankings: map[NutrientType][]ID{
			NutrientProtein: {42},
			NutrientSodium:  {42},
		},
	}

	bs := make([]byte, IndexSnapshotMUS.Size(snapshot))
	n := IndexSnapshotMUS.Marshal(snapshot, bs)
	assert.Equal(t, len(bs), n)

	decoded, n, err := IndexSnapshotMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, snapshot, decoded)
}

func TestIndexSnapshotDecodeCorrupt(t *testing.T) {
	_, _, err := IndexSnapshotMUS.Unmarshal([]byte{0xff, 0xff, 0xff})
	assert.Error(t, err)
}

func TestCacheRecordRoundTrip(t *testing.T) {
	record := CacheRecord{
		Key:       "main",
		Payload:   []byte{1, 2, 3, 4},
		Checksum:  SignatureFromContent("payload"),
		ItemCount: 128,
		Version:   3,
		CreatedAt: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
	}

	bs := make([]byte, CacheRecordMUS.Size(record))
	CacheRecordMUS.Marshal(record, bs)

	decoded, _, err := CacheRecordMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, record.Key, decoded.Key)
	assert.Equal(t, record.Payload, decoded.Payload)
	assert.Equal(t, record.Checksum, decoded.Checksum)
	assert.Equal(t, record.ItemCount, decoded.ItemCount)
	assert.Equal(t, record.Version, decoded.Version)
	assert.True(t, record.CreatedAt.Equal(decoded.CreatedAt))
}

func TestFoodItemRoundTrip(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	item := FoodItem{
		Id:               7,
		Name:             "Tomato Soup",
		ReferenceWeightG: 300,
		MinAgeMonths:     -1,
		PH:               4.6,
		Diets:            []string{"vegan", "glutenFree"},
		Allergens:        []string{},
		IsRecipe:         true,
		Nutrients: map[NutrientType]float64{
			NutrientEnergy: 180,
			NutrientSodium: 960,
		},
		Ingredients: []IngredientRef{
			{ItemId: 3, AmountG: 250},
			{ItemId: 5, AmountG: 50},
		},
		TokenCache: []string{"tomato", "soup"},
		InsertedAt: now,
		UpdatedAt:  now,
	}

	bs := make([]byte, FoodItemMUS.Size(item))
	n := FoodItemMUS.Marshal(item, bs)
	assert.Equal(t, len(bs), n)

	decoded, n, err := FoodItemMUS.Unmarshal(bs)
	require.NoError(t, err)
	assert.Equal(t, len(bs), n)
	assert.Equal(t, item, decoded)
}
