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


package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/index"
	"github.com/poiesic/nutridex/storage"
)

// Pipeline orchestrates catalog ingestion: validation, persistence and
// asynchronous index folding.
type Pipeline struct {
	catalog  storage.CatalogRepository
	store    *index.Store
	resolver index.ItemResolver
	pool     *ants.Pool
	logger   *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent index folding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// catalogResolver resolves ingredients straight from the catalog, so
// aggregate pH for recipes and menus sees the freshly persisted rows.
type catalogResolver struct {
	catalog storage.CatalogRepository
}

var _ index.ItemResolver = (*catalogResolver)(nil)

func (r *catalogResolver) ResolveItem(ctx context.Context, id core.ID) (*core.FoodItem, error) {
	items, err := r.catalog.GetFoodItems(ctx, id)
	if err != nil || len(items) == 0 {
		return nil, err
	}
	return items[0], nil
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(catalog storage.CatalogRepository, store *index.Store, opts ...Option) (*Pipeline, error) {
	if catalog == nil {
		return nil, ErrCatalogRepositoryRequired
	}
	if store == nil {
		return nil, ErrIndexStoreRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	p := &Pipeline{
		catalog:  catalog,
		store:    store,
		resolver: &catalogResolver{catalog: catalog},
		pool:     pool,
		logger:   slog.Default(),
	}

	// Apply options
	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// Ingest validates and persists the items, then folds them into the index
// asynchronously. Validation or persistence failures fail the whole call;
// index-fold failures are logged and left for the next full rebuild.
func (p *Pipeline) Ingest(ctx context.Context, items ...*core.FoodItem) ([]*core.FoodItem, error) {
	for _, item := range items {
		if err := core.ValidateFoodItem(item); err != nil {
			return nil, fmt.Errorf("invalid item %q: %w", item.Name, err)
		}
	}

	added, err := p.catalog.AddFoodItems(ctx, items...)
	if err != nil {
		return nil, err
	}
	if len(added) == 0 {
		return added, nil
	}

	for _, item := range added {
		p.submitFold(item)
	}
	return added, nil
}

// Update validates and persists changed items and refreshes their index
// entries asynchronously.
func (p *Pipeline) Update(ctx context.Context, items ...*core.FoodItem) error {
	for _, item := range items {
		if err := core.ValidateFoodItem(item); err != nil {
			return fmt.Errorf("invalid item %q: %w", item.Name, err)
		}
	}

	updated, err := p.catalog.UpdateFoodItems(ctx, items...)
	if err != nil {
		return err
	}
	for _, item := range updated {
		p.submitFold(item)
	}
	return nil
}

// Remove deletes the items from the catalog and from the index.
func (p *Pipeline) Remove(ctx context.Context, ids ...core.ID) error {
	if err := p.catalog.DeleteFoodItems(ctx, ids...); err != nil {
		return err
	}
	for _, id := range ids {
		p.store.RemoveItem(id)
	}
	return nil
}

func (p *Pipeline) submitFold(item *core.FoodItem) {
	submitErr := p.pool.Submit(func() {
		if err := p.store.UpdateItem(context.Background(), item, p.resolver); err != nil {
			p.logger.Error("error folding item into index", "id", item.Id, "err", err)
		}
	})
	if submitErr != nil {
		p.logger.Error("error submitting index fold", "id", item.Id, "err", submitErr)
	}
}

// Release releases resources including the worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
