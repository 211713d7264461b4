// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/storage"
)

// CacheRepository implements storage.CacheRepository for BadgerDB.
// Each key holds a single record; saving replaces the previous one.
type CacheRepository struct {
	backend *Backend
}

var _ storage.CacheRepository = (*CacheRepository)(nil)

// NewCacheRepository creates a new CacheRepository.
func NewCacheRepository(backend *Backend) *CacheRepository {
	return &CacheRepository{
		backend: backend,
	}
}

// SaveCacheRecord persists a cache record, replacing the previous record
// under the same key.
func (r *CacheRepository) SaveCacheRecord(ctx context.Context, record *core.CacheRecord) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if record.CreatedAt.IsZero() {
			record.CreatedAt = time.Now().UTC()
		}
		key := makeCacheKey(record.Key)
		value := storage.MarshalCacheRecord(record)
		if err := tx.Set(key, value); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// LoadCacheRecord retrieves the cache record for a key.
// Returns nil, nil if no record exists.
func (r *CacheRepository) LoadCacheRecord(ctx context.Context, key string) (*core.CacheRecord, error) {
	var record *core.CacheRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeCacheKey(key))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			record, unmarshalErr = storage.UnmarshalCacheRecord(val)
			return unmarshalErr
		})
	}, false)

	return record, err
}

// DeleteCacheRecord removes the cache record for a key.
func (r *CacheRepository) DeleteCacheRecord(ctx context.Context, key string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		if err := tx.Delete(makeCacheKey(key)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
