package core

import (
	"sort"

	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// Hand-written MUS serializers for every persisted type. The snapshot
// envelope stores set-valued fields as sorted slices, which the musgen
// generator cannot express, so these are maintained by hand. Field order is
// part of the on-disk format; bump the index version when it changes.

// IDMUS serializes an ID as a Varint uint64.
var IDMUS = idMUS{}

type idMUS struct{}

func (idMUS) Marshal(v ID, bs []byte) (n int) {
	return varint.Uint64.Marshal(uint64(v), bs)
}

func (idMUS) Unmarshal(bs []byte) (v ID, n int, err error) {
	u, n, err := varint.Uint64.Unmarshal(bs)
	return ID(u), n, err
}

func (idMUS) Size(v ID) (size int) {
	return varint.Uint64.Size(uint64(v))
}

func (idMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint64.Skip(bs)
}

// NutrientTypeMUS serializes a NutrientType as a single Varint byte.
var NutrientTypeMUS = nutrientTypeMUS{}

type nutrientTypeMUS struct{}

func (nutrientTypeMUS) Marshal(v NutrientType, bs []byte) (n int) {
	return varint.Uint8.Marshal(uint8(v), bs)
}

func (nutrientTypeMUS) Unmarshal(bs []byte) (v NutrientType, n int, err error) {
	u, n, err := varint.Uint8.Unmarshal(bs)
	return NutrientType(u), n, err
}

func (nutrientTypeMUS) Size(v NutrientType) (size int) {
	return varint.Uint8.Size(uint8(v))
}

func (nutrientTypeMUS) Skip(bs []byte) (n int, err error) {
	return varint.Uint8.Skip(bs)
}

// Composite serializers built from mus-go primitives.
var (
	stringSliceMUS   = ord.NewSliceSer[string](ord.String)
	idSliceMUS       = ord.NewSliceSer[ID](IDMUS)
	nutrientMapMUS   = ord.NewMapSer[NutrientType, float64](NutrientTypeMUS, varint.Float64)
	ingredientsMUS   = ord.NewSliceSer[IngredientRef](IngredientRefMUS)
	rankingsMUS      = ord.NewMapSer[NutrientType, []ID](NutrientTypeMUS, idSliceMUS)
	invertedIndexMUS = ord.NewMapSer[string, []ID](ord.String, idSliceMUS)
)

// StringSetMUS serializes a string set as a sorted string slice, so that the
// encoding of a given set is deterministic.
var StringSetMUS = stringSetMUS{}

type stringSetMUS struct{}

func sortedSetKeys(v map[string]struct{}) []string {
	keys := make([]string, 0, len(v))
	for k := range v {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (stringSetMUS) Marshal(v map[string]struct{}, bs []byte) (n int) {
	return stringSliceMUS.Marshal(sortedSetKeys(v), bs)
}

func (stringSetMUS) Unmarshal(bs []byte) (v map[string]struct{}, n int, err error) {
	keys, n, err := stringSliceMUS.Unmarshal(bs)
	if err != nil {
		return nil, n, err
	}
	v = make(map[string]struct{}, len(keys))
	for _, k := range keys {
		v[k] = struct{}{}
	}
	return v, n, nil
}

func (stringSetMUS) Size(v map[string]struct{}) (size int) {
	return stringSliceMUS.Size(sortedSetKeys(v))
}

func (stringSetMUS) Skip(bs []byte) (n int, err error) {
	return stringSliceMUS.Skip(bs)
}

// IngredientRefMUS serializes an IngredientRef.
var IngredientRefMUS = ingredientRefMUS{}

type ingredientRefMUS struct{}

func (ingredientRefMUS) Marshal(v IngredientRef, bs []byte) (n int) {
	n = IDMUS.Marshal(v.ItemId, bs)
	n += varint.Float64.Marshal(v.AmountG, bs[n:])
	return n
}

func (ingredientRefMUS) Unmarshal(bs []byte) (v IngredientRef, n int, err error) {
	v.ItemId, n, err = IDMUS.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.AmountG, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	return
}

func (ingredientRefMUS) Size(v IngredientRef) (size int) {
	return IDMUS.Size(v.ItemId) + varint.Float64.Size(v.AmountG)
}

func (s ingredientRefMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// CompactItemMUS serializes a CompactItem.
var CompactItemMUS = compactItemMUS{}

type compactItemMUS struct{}

func (compactItemMUS) Marshal(v CompactItem, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += StringSetMUS.Marshal(v.SearchTokens, bs[n:])
	n += varint.Int32.Marshal(v.MinAgeMonths, bs[n:])
	n += StringSetMUS.Marshal(v.Diets, bs[n:])
	n += StringSetMUS.Marshal(v.Allergens, bs[n:])
	n += varint.Float64.Marshal(v.PH, bs[n:])
	n += varint.Float64.Marshal(v.ReferenceWeightG, bs[n:])
	n += ord.Bool.Marshal(v.IsRecipe, bs[n:])
	n += ord.Bool.Marshal(v.IsMenu, bs[n:])
	n += ord.Bool.Marshal(v.IsFavorite, bs[n:])
	n += nutrientMapMUS.Marshal(v.NutrientValues, bs[n:])
	return n
}

func (compactItemMUS) Unmarshal(bs []byte) (v CompactItem, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.SearchTokens, n1, err = StringSetMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.MinAgeMonths, n1, err = varint.Int32.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Diets, n1, err = StringSetMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Allergens, n1, err = StringSetMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.PH, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ReferenceWeightG, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.IsRecipe, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.IsMenu, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.IsFavorite, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.NutrientValues, n1, err = nutrientMapMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (compactItemMUS) Size(v CompactItem) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += StringSetMUS.Size(v.SearchTokens)
	size += varint.Int32.Size(v.MinAgeMonths)
	size += StringSetMUS.Size(v.Diets)
	size += StringSetMUS.Size(v.Allergens)
	size += varint.Float64.Size(v.PH)
	size += varint.Float64.Size(v.ReferenceWeightG)
	size += ord.Bool.Size(v.IsRecipe)
	size += ord.Bool.Size(v.IsMenu)
	size += ord.Bool.Size(v.IsFavorite)
	size += nutrientMapMUS.Size(v.NutrientValues)
	return size
}

func (s compactItemMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

var compactItemsMUS = ord.NewMapSer[ID, CompactItem](IDMUS, CompactItemMUS)

// IndexSnapshotMUS serializes a full IndexSnapshot.
var IndexSnapshotMUS = indexSnapshotMUS{}

type indexSnapshotMUS struct{}

func (indexSnapshotMUS) Marshal(v IndexSnapshot, bs []byte) (n int) {
	n = compactItemsMUS.Marshal(v.Items, bs)
	n += invertedIndexMUS.Marshal(v.InvertedIndex, bs[n:])
	n += stringSliceMUS.Marshal(v.Vocabulary, bs[n:])
	n += nutrientMapMUS.Marshal(v.MaxNutrientValues, bs[n:])
	n += stringSliceMUS.Marshal(v.KnownDiets, bs[n:])
	n += rankingsMUS.Marshal(v.NutrientRankings, bs[n:])
	return n
}

func (indexSnapshotMUS) Unmarshal(bs []byte) (v IndexSnapshot, n int, err error) {
	var n1 int
	if v.Items, n, err = compactItemsMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.InvertedIndex, n1, err = invertedIndexMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Vocabulary, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.MaxNutrientValues, n1, err = nutrientMapMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.KnownDiets, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.NutrientRankings, n1, err = rankingsMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (indexSnapshotMUS) Size(v IndexSnapshot) (size int) {
	size = compactItemsMUS.Size(v.Items)
	size += invertedIndexMUS.Size(v.InvertedIndex)
	size += stringSliceMUS.Size(v.Vocabulary)
	size += nutrientMapMUS.Size(v.MaxNutrientValues)
	size += stringSliceMUS.Size(v.KnownDiets)
	size += rankingsMUS.Size(v.NutrientRankings)
	return size
}

func (s indexSnapshotMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// CacheRecordMUS serializes a CacheRecord. CreatedAt is stored as a Unix
// microsecond timestamp in UTC.
var CacheRecordMUS = cacheRecordMUS{}

type cacheRecordMUS struct{}

func (cacheRecordMUS) Marshal(v CacheRecord, bs []byte) (n int) {
	n = ord.String.Marshal(v.Key, bs)
	n += ord.ByteSlice.Marshal(v.Payload, bs[n:])
	n += varint.Uint64.Marshal(v.Checksum, bs[n:])
	n += varint.Int32.Marshal(v.ItemCount, bs[n:])
	n += varint.Int32.Marshal(v.Version, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(v.CreatedAt, bs[n:])
	return n
}

func (cacheRecordMUS) Unmarshal(bs []byte) (v CacheRecord, n int, err error) {
	var n1 int
	if v.Key, n, err = ord.String.Unmarshal(bs); err != nil {
		return
	}
	if v.Payload, n1, err = ord.ByteSlice.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Checksum, n1, err = varint.Uint64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ItemCount, n1, err = varint.Int32.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Version, n1, err = varint.Int32.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.CreatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (cacheRecordMUS) Size(v CacheRecord) (size int) {
	size = ord.String.Size(v.Key)
	size += ord.ByteSlice.Size(v.Payload)
	size += varint.Uint64.Size(v.Checksum)
	size += varint.Int32.Size(v.ItemCount)
	size += varint.Int32.Size(v.Version)
	size += raw.TimeUnixMicroUTC.Size(v.CreatedAt)
	return size
}

func (s cacheRecordMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}

// FoodItemMUS serializes a FoodItem for catalog storage. Timestamps are
// stored as Unix microsecond values in UTC.
var FoodItemMUS = foodItemMUS{}

type foodItemMUS struct{}

func (foodItemMUS) Marshal(v FoodItem, bs []byte) (n int) {
	n = IDMUS.Marshal(v.Id, bs)
	n += ord.String.Marshal(v.Name, bs[n:])
	n += varint.Float64.Marshal(v.ReferenceWeightG, bs[n:])
	n += varint.Int32.Marshal(v.MinAgeMonths, bs[n:])
	n += varint.Float64.Marshal(v.PH, bs[n:])
	n += stringSliceMUS.Marshal(v.Diets, bs[n:])
	n += stringSliceMUS.Marshal(v.Allergens, bs[n:])
	n += ord.Bool.Marshal(v.IsRecipe, bs[n:])
	n += ord.Bool.Marshal(v.IsMenu, bs[n:])
	n += ord.Bool.Marshal(v.IsFavorite, bs[n:])
	n += nutrientMapMUS.Marshal(v.Nutrients, bs[n:])
	n += ingredientsMUS.Marshal(v.Ingredients, bs[n:])
	n += stringSliceMUS.Marshal(v.TokenCache, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(v.InsertedAt, bs[n:])
	n += raw.TimeUnixMicroUTC.Marshal(v.UpdatedAt, bs[n:])
	return n
}

func (foodItemMUS) Unmarshal(bs []byte) (v FoodItem, n int, err error) {
	var n1 int
	if v.Id, n, err = IDMUS.Unmarshal(bs); err != nil {
		return
	}
	if v.Name, n1, err = ord.String.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.ReferenceWeightG, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.MinAgeMonths, n1, err = varint.Int32.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.PH, n1, err = varint.Float64.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Diets, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Allergens, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.IsRecipe, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.IsMenu, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.IsFavorite, n1, err = ord.Bool.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Nutrients, n1, err = nutrientMapMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.Ingredients, n1, err = ingredientsMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.TokenCache, n1, err = stringSliceMUS.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.InsertedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	if v.UpdatedAt, n1, err = raw.TimeUnixMicroUTC.Unmarshal(bs[n:]); err != nil {
		return v, n + n1, err
	}
	n += n1
	return v, n, nil
}

func (foodItemMUS) Size(v FoodItem) (size int) {
	size = IDMUS.Size(v.Id)
	size += ord.String.Size(v.Name)
	size += varint.Float64.Size(v.ReferenceWeightG)
	size += varint.Int32.Size(v.MinAgeMonths)
	size += varint.Float64.Size(v.PH)
	size += stringSliceMUS.Size(v.Diets)
	size += stringSliceMUS.Size(v.Allergens)
	size += ord.Bool.Size(v.IsRecipe)
	size += ord.Bool.Size(v.IsMenu)
	size += ord.Bool.Size(v.IsFavorite)
	size += nutrientMapMUS.Size(v.Nutrients)
	size += ingredientsMUS.Size(v.Ingredients)
	size += stringSliceMUS.Size(v.TokenCache)
	size += raw.TimeUnixMicroUTC.Size(v.InsertedAt)
	size += raw.TimeUnixMicroUTC.Size(v.UpdatedAt)
	return size
}

func (s foodItemMUS) Skip(bs []byte) (n int, err error) {
	_, n, err = s.Unmarshal(bs)
	return
}
