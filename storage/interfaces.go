package storage

import (
	"context"

	"github.com/poiesic/nutridex/core"
)

// Repository provides common storage operations shared across all repositories.
// Implementations must be thread-safe and support concurrent access.
type Repository interface {
	// WithTransaction executes a function within a transaction.
	// If fn returns an error, the transaction is rolled back.
	// If fn returns nil, the transaction is committed.
	// The context passed to fn may contain transaction state.
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error

	// Close closes the storage backend and releases resources.
	Close() error
}

// CatalogRepository provides operations for managing the food catalog.
// The catalog is the authoritative data source; the search index is always
// a derived view over it.
type CatalogRepository interface {
	Repository
	// AddFoodItems adds one or more food items to storage.
	// Generates new IDs from sequence and sets the InsertedAt timestamp.
	// Returns the items with generated IDs and timestamps populated.
	AddFoodItems(ctx context.Context, items ...*core.FoodItem) ([]*core.FoodItem, error)

	// UpdateFoodItems updates existing food items.
	// Updates the UpdatedAt timestamp automatically.
	// Returns ErrNotFound if any item doesn't exist.
	UpdateFoodItems(ctx context.Context, items ...*core.FoodItem) ([]*core.FoodItem, error)

	// DeleteFoodItems removes food items by their IDs.
	// Returns ErrNotFound if any item doesn't exist.
	DeleteFoodItems(ctx context.Context, ids ...core.ID) error

	// GetFoodItem retrieves a single food item by ID.
	// Returns ErrNotFound if the item doesn't exist.
	GetFoodItem(ctx context.Context, id core.ID) (*core.FoodItem, error)

	// GetFoodItems retrieves multiple food items by their IDs.
	// Returns only the items that exist (no error for missing items).
	GetFoodItems(ctx context.Context, ids ...core.ID) ([]*core.FoodItem, error)

	// SetFavorite toggles the favorite flag on an item and returns the
	// updated item. Returns ErrNotFound if the item doesn't exist.
	SetFavorite(ctx context.Context, id core.ID, favorite bool) (*core.FoodItem, error)

	// CountFoodItems returns the number of items in the catalog.
	CountFoodItems(ctx context.Context) (int, error)

	// ForEachFoodItem invokes fn for every item in the catalog in key
	// order. Iteration stops at the first error from fn. Used by full
	// index rebuilds.
	ForEachFoodItem(ctx context.Context, fn func(item *core.FoodItem) error) error
}

// CacheRepository stores the serialized index snapshot. The cache holds a
// single logical slot per key; saving replaces any previous record under
// the same key.
type CacheRepository interface {
	// SaveCacheRecord persists a cache record, replacing the previous
	// record under the same key.
	SaveCacheRecord(ctx context.Context, record *core.CacheRecord) error

	// LoadCacheRecord retrieves the cache record for a key.
	// Returns nil, nil if no record exists.
	LoadCacheRecord(ctx context.Context, key string) (*core.CacheRecord, error)

	// DeleteCacheRecord removes the cache record for a key.
	// Deleting a missing record is not an error.
	DeleteCacheRecord(ctx context.Context, key string) error
}
