package badger

import (
	"fmt"

	"github.com/poiesic/nutridex/core"
)

// Key prefixes for different data types
const (
	foodItemPrefix = "fooditm"
	foodItemIDSeq  = "fooditmseq"
	cachePrefix    = "idxcache"
)

// makeFoodItemKey generates a key for a food item by ID.
func makeFoodItemKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s:%d", foodItemPrefix, id))
}

// foodItemKeyPrefix returns the prefix shared by all food item keys. The
// trailing colon keeps the ID sequence key out of prefix scans.
func foodItemKeyPrefix() []byte {
	return []byte(foodItemPrefix + ":")
}

// makeCacheKey generates a key for an index cache slot.
func makeCacheKey(slot string) []byte {
	return []byte(fmt.Sprintf("%s:%s", cachePrefix, slot))
}
