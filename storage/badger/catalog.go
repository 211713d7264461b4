package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/storage"
)

// CatalogRepository implements storage.CatalogRepository for BadgerDB.
type CatalogRepository struct {
	backend *Backend
	idSeq   *badger.Sequence
}

var _ storage.CatalogRepository = (*CatalogRepository)(nil)

// NewCatalogRepository creates a new CatalogRepository.
func NewCatalogRepository(backend *Backend) (*CatalogRepository, error) {
	idSeq, err := backend.GetSequence(foodItemIDSeq)
	if err != nil {
		return nil, err
	}

	return &CatalogRepository{
		backend: backend,
		idSeq:   idSeq,
	}, nil
}

// Close releases the ID sequence.
func (r *CatalogRepository) Close() error {
	return r.idSeq.Release()
}

// WithTransaction delegates to the backend.
func (r *CatalogRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return r.backend.WithTransaction(ctx, fn)
}

// AddFoodItems adds one or more food items to storage.
func (r *CatalogRepository) AddFoodItems(ctx context.Context, items ...*core.FoodItem) ([]*core.FoodItem, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			// Always generate new ID from sequence
			nextID, err := r.idSeq.Next()
			if err != nil {
				return err
			}
			// BadgerDB sequences can return 0 on first call, so we skip it
			if nextID == 0 {
				nextID, err = r.idSeq.Next()
				if err != nil {
					return err
				}
			}
			item.Id = core.ID(nextID)

			item.InsertedAt = time.Now().UTC()
			item.UpdatedAt = item.InsertedAt

			key := makeFoodItemKey(item.Id)
			value := storage.MarshalFoodItem(item)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// UpdateFoodItems updates existing food items.
func (r *CatalogRepository) UpdateFoodItems(ctx context.Context, items ...*core.FoodItem) ([]*core.FoodItem, error) {
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, item := range items {
			key := makeFoodItemKey(item.Id)

			old, err := r.readFoodItem(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			item.InsertedAt = old.InsertedAt
			item.UpdatedAt = time.Now().UTC()

			value := storage.MarshalFoodItem(item)
			if err := tx.Set(key, value); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)

	return items, err
}

// DeleteFoodItems removes food items by their IDs.
func (r *CatalogRepository) DeleteFoodItems(ctx context.Context, ids ...core.ID) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeFoodItemKey(id)

			item, err := r.readFoodItem(tx, key)
			if err != nil {
				return err
			}
			if item == nil {
				return storage.ErrNotFound
			}

			if err := tx.Delete(key); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
}

// GetFoodItem retrieves a single food item by ID.
func (r *CatalogRepository) GetFoodItem(ctx context.Context, id core.ID) (*core.FoodItem, error) {
	var result *core.FoodItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFoodItemKey(id)
		var err error
		result, err = r.readFoodItem(tx, key)
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetFoodItems retrieves multiple food items by their IDs.
func (r *CatalogRepository) GetFoodItems(ctx context.Context, ids ...core.ID) ([]*core.FoodItem, error) {
	var result []*core.FoodItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			key := makeFoodItemKey(id)
			item, err := r.readFoodItem(tx, key)
			if err != nil {
				return err
			}
			if item != nil {
				result = append(result, item)
			}
		}
		return nil
	}, false)
	return result, err
}

// SetFavorite toggles the favorite flag on an item.
func (r *CatalogRepository) SetFavorite(ctx context.Context, id core.ID, favorite bool) (*core.FoodItem, error) {
	var result *core.FoodItem
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeFoodItemKey(id)
		item, err := r.readFoodItem(tx, key)
		if err != nil {
			return err
		}
		if item == nil {
			return storage.ErrNotFound
		}

		item.IsFavorite = favorite
		item.UpdatedAt = time.Now().UTC()

		if err := tx.Set(key, storage.MarshalFoodItem(item)); err != nil {
			return err
		}
		result = item
		return tx.Commit()
	}, true)
	return result, err
}

// CountFoodItems returns the number of items in the catalog.
func (r *CatalogRepository) CountFoodItems(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = foodItemKeyPrefix()
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// ForEachFoodItem invokes fn for every item in the catalog in key order.
func (r *CatalogRepository) ForEachFoodItem(ctx context.Context, fn func(item *core.FoodItem) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = foodItemKeyPrefix()
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}

			var item *core.FoodItem
			err := iter.Item().Value(func(val []byte) error {
				var err error
				item, err = storage.UnmarshalFoodItem(val)
				return err
			})
			if err != nil {
				return err
			}
			if item == nil {
				continue
			}
			if err := fn(item); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// readFoodItem reads and unmarshals an item inside a transaction.
// Returns nil, nil if the key does not exist.
func (r *CatalogRepository) readFoodItem(tx *badger.Txn, key []byte) (*core.FoodItem, error) {
	badgerItem, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var item *core.FoodItem
	err = badgerItem.Value(func(val []byte) error {
		var err error
		item, err = storage.UnmarshalFoodItem(val)
		return err
	})
	if err != nil {
		return nil, err
	}
	return item, nil
}
