package core

import (
	"encoding/binary"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for catalog items.
// IDs are assigned by the catalog (database sequence) and are never
// reassigned while an item is referenced by the index.
type ID uint64

// SignatureFromContent generates a deterministic 64-bit signature from text
// using BLAKE2b hashing. Identical content always produces the same signature.
// Used for cache payload checksums and pagination cursor keys.
func SignatureFromContent(text string) uint64 {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// SignatureFromBytes is SignatureFromContent over raw bytes.
func SignatureFromBytes(data []byte) uint64 {
	h, _ := blake2b.New(8, nil)
	h.Write(data)
	sum := h.Sum(nil)
	return binary.LittleEndian.Uint64(sum)
}

// Operator is a comparison operator extracted from a query or applied by a
// structured nutrient filter.
type Operator int

const (
	// OpLess matches values strictly below the threshold.
	OpLess Operator = iota + 1
	// OpLessOrEqual matches values at or below the threshold.
	OpLessOrEqual
	// OpGreater matches values strictly above the threshold.
	OpGreater
	// OpGreaterOrEqual matches values at or above the threshold.
	OpGreaterOrEqual
	// OpEqual matches values equal to the threshold.
	OpEqual
	// OpNotEqual matches values different from the threshold.
	OpNotEqual
)

// Symbol returns the literal symbol form of the operator.
func (o Operator) Symbol() string {
	switch o {
	case OpLess:
		return "<"
	case OpLessOrEqual:
		return "<="
	case OpGreater:
		return ">"
	case OpGreaterOrEqual:
		return ">="
	case OpEqual:
		return "="
	case OpNotEqual:
		return "!="
	}
	return "?"
}

// Compare evaluates the operator against a value and threshold.
func (o Operator) Compare(value, threshold float64) bool {
	switch o {
	case OpLess:
		return value < threshold
	case OpLessOrEqual:
		return value <= threshold
	case OpGreater:
		return value > threshold
	case OpGreaterOrEqual:
		return value >= threshold
	case OpEqual:
		return value == threshold
	case OpNotEqual:
		return value != threshold
	}
	return false
}

// PHClass buckets pH values for quick filtering.
type PHClass int

const (
	// PHAcidic covers pH below 6.5.
	PHAcidic PHClass = iota + 1
	// PHNeutral covers pH from 6.5 to 7.5 inclusive.
	PHNeutral
	// PHAlkaline covers pH above 7.5.
	PHAlkaline
)

// pH class boundaries.
const (
	phAcidicBelow   = 6.5
	phAlkalineAbove = 7.5
)

// ClassifyPH maps a pH value to its class. A pH of 0 means unknown and
// matches no class.
func ClassifyPH(ph float64) (PHClass, bool) {
	if ph <= 0 {
		return 0, false
	}
	switch {
	case ph < phAcidicBelow:
		return PHAcidic, true
	case ph > phAlkalineAbove:
		return PHAlkaline, true
	default:
		return PHNeutral, true
	}
}

// Matches reports whether a pH value falls into the class.
// Items with unknown pH (0) never match.
func (c PHClass) Matches(ph float64) bool {
	got, ok := ClassifyPH(ph)
	return ok && got == c
}

// IngredientRef links a composite item (recipe or menu) to one of its
// resolved ingredients with the gram amount used.
type IngredientRef struct {
	ItemId  ID
	AmountG float64
}

// FoodItem is a catalog entry: an ingredient, recipe or menu with its
// nutrient profile. Nutrient values are absolute amounts per
// ReferenceWeightG grams of the item.
type FoodItem struct {
	Id               ID
	Name             string
	ReferenceWeightG float64
	MinAgeMonths     int32 // -1 or 0 means no restriction
	PH               float64
	Diets            []string
	Allergens        []string
	IsRecipe         bool
	IsMenu           bool
	IsFavorite       bool
	Nutrients        map[NutrientType]float64
	Ingredients      []IngredientRef // only for recipes and menus
	TokenCache       []string        // optional precomputed search tokens
	InsertedAt       time.Time
	UpdatedAt        time.Time
}

// CompactItem is the search-optimized projection of a FoodItem, holding only
// the fields needed for matching and ranking. It is replaced wholesale on
// every update; individual fields are never mutated in place.
type CompactItem struct {
	Id               ID
	Name             string
	SearchTokens     map[string]struct{}
	MinAgeMonths     int32
	Diets            map[string]struct{}
	Allergens        map[string]struct{}
	PH               float64
	ReferenceWeightG float64
	IsRecipe         bool
	IsMenu           bool
	IsFavorite       bool
	NutrientValues   map[NutrientType]float64 // sparse, only nonzero values
}

// Density returns the nutrient amount normalized to per-100 reference units,
// so items with different reference weights are comparable.
// Returns 0 if the item has no such nutrient or no usable reference weight.
func (c *CompactItem) Density(n NutrientType) float64 {
	if c.ReferenceWeightG <= 0 {
		return 0
	}
	v, ok := c.NutrientValues[n]
	if !ok {
		return 0
	}
	return v / c.ReferenceWeightG * 100
}

// HasToken reports whether the token is in the item's search tokens.
func (c *CompactItem) HasToken(token string) bool {
	_, ok := c.SearchTokens[token]
	return ok
}

// PassesAge reports whether the item is safe at the requested age in months.
// Items with sentinel -1 or 0 carry no restriction and always pass.
func (c *CompactItem) PassesAge(ageMonths int32) bool {
	if c.MinAgeMonths <= 0 {
		return true
	}
	return c.MinAgeMonths <= ageMonths
}

// IndexSnapshot is the complete serializable state of the in-memory index.
// Set-valued structures are stored as sorted slices so that encoding is
// deterministic.
type IndexSnapshot struct {
	Items             map[ID]CompactItem
	InvertedIndex     map[string][]ID
	Vocabulary        []string
	MaxNutrientValues map[NutrientType]float64
	KnownDiets        []string
	NutrientRankings  map[NutrientType][]ID
}

// CacheRecord wraps a persisted index snapshot with the metadata used for
// staleness checks. A record is valid only if Version matches the current
// index version and ItemCount is within tolerance of the live catalog count.
type CacheRecord struct {
	Key       string
	Payload   []byte
	Checksum  uint64 // BLAKE2b signature of Payload
	ItemCount int32
	Version   int32
	CreatedAt time.Time
}

// ScoredItem is a single search hit: the matched item's identity plus its
// relevance score and how it matched.
type ScoredItem struct {
	Id       ID
	Name     string
	Score    float64
	Semantic bool // true when the item matched only via embedding fallback
}

// SearchMode narrows a search to one item category.
type SearchMode int

const (
	// SearchModeAll matches every item category.
	SearchModeAll SearchMode = iota
	// SearchModeIngredients matches plain ingredients only.
	SearchModeIngredients
	// SearchModeRecipes matches recipes only.
	SearchModeRecipes
	// SearchModeMenus matches menus only.
	SearchModeMenus
)

// Matches reports whether the item falls into the mode's category.
func (m SearchMode) Matches(item *CompactItem) bool {
	switch m {
	case SearchModeIngredients:
		return !item.IsRecipe && !item.IsMenu
	case SearchModeRecipes:
		return item.IsRecipe
	case SearchModeMenus:
		return item.IsMenu
	default:
		return true
	}
}

// FilterSet carries the structured filter options a caller activates
// alongside the free-text query.
type FilterSet struct {
	// ActiveNutrientFilters requires matched items to carry each listed
	// nutrient. A single active nutrient also drives result ordering by
	// its density.
	ActiveNutrientFilters map[NutrientType]struct{}
	// QuickAgeMonths filters out items restricted above this age.
	// Zero or negative means no age filter.
	QuickAgeMonths int32
	// ForcePhDisplay asks callers to render pH regardless of query intent.
	// It does not affect matching.
	ForcePhDisplay bool
	FavoritesOnly  bool
	RecipesOnly    bool
	MenusOnly      bool
	Mode           SearchMode
}
