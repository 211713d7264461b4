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


package nutridex

import (
	"context"
	"log/slog"

	"github.com/poiesic/nutridex/ai"
	"github.com/poiesic/nutridex/ai/openai"
	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/index"
	"github.com/poiesic/nutridex/ingest"
	"github.com/poiesic/nutridex/knowledge"
	"github.com/poiesic/nutridex/lexicon"
	"github.com/poiesic/nutridex/search"
	"github.com/poiesic/nutridex/storage"
	"github.com/poiesic/nutridex/storage/badger"
)

// Engine is the top-level facade: it owns the storage backend, the
// repositories, the semantic lexicon, the index store and the searcher, and
// exposes the operations callers consume.
type Engine struct {
	backend  *badger.Backend
	catalog  storage.CatalogRepository
	cache    storage.CacheRepository
	embedder ai.Embedder
	lexicon  *lexicon.Lexicon
	store    *index.Store
	searcher *search.Searcher
	resolver index.ItemResolver
	logger   *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	aiConfig    *ai.Config
	embedder    ai.Embedder
	inMemory    bool
	semanticOff bool
	logger      *slog.Logger
	storeOpts   []index.StoreOption
	searchOpts  []search.Option
}

// WithAIConfig sets the embedding service configuration.
func WithAIConfig(config *ai.Config) EngineOption {
	return func(o *engineOptions) {
		o.aiConfig = config
	}
}

// WithEmbedder injects an embedder directly, bypassing the AI config.
func WithEmbedder(embedder ai.Embedder) EngineOption {
	return func(o *engineOptions) {
		o.embedder = embedder
	}
}

// WithInMemory opens the storage backend in memory, without files.
func WithInMemory() EngineOption {
	return func(o *engineOptions) {
		o.inMemory = true
	}
}

// WithoutSemantic disables the embedding-backed fallbacks entirely; queries
// resolve through the dictionary paths only.
func WithoutSemantic() EngineOption {
	return func(o *engineOptions) {
		o.semanticOff = true
	}
}

// WithEngineLogger sets a custom logger for the engine and its components.
func WithEngineLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithStoreOptions forwards options to the index store.
func WithStoreOptions(opts ...index.StoreOption) EngineOption {
	return func(o *engineOptions) {
		o.storeOpts = append(o.storeOpts, opts...)
	}
}

// WithSearchOptions forwards options to the searcher.
func WithSearchOptions(opts ...search.Option) EngineOption {
	return func(o *engineOptions) {
		o.searchOpts = append(o.searchOpts, opts...)
	}
}

// catalogResolver resolves recipe and menu ingredients from the catalog for
// aggregate-pH computation.
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

// NewEngine opens the storage backend at filePath and wires every component.
// The index is not loaded yet; call EnsureIndexReady before searching.
func NewEngine(filePath string, opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		aiConfig: ai.DefaultConfig(),
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, options.inMemory)
	if err != nil {
		return nil, err
	}

	catalog, err := badger.NewCatalogRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}
	cache := badger.NewCacheRepository(backend)

	embedder := options.embedder
	if embedder == nil && !options.semanticOff {
		embedder, err = openai.NewEmbedder(options.aiConfig)
		if err != nil {
			catalog.Close()
			backend.Close()
			return nil, err
		}
	}

	storeOpts := append([]index.StoreOption{index.WithLogger(options.logger)}, options.storeOpts...)
	store, err := index.NewStore(catalog, cache, storeOpts...)
	if err != nil {
		catalog.Close()
		backend.Close()
		return nil, err
	}

	var lex *lexicon.Lexicon
	searchOpts := append([]search.Option{search.WithLogger(options.logger)}, options.searchOpts...)
	if embedder != nil {
		lex = lexicon.New(embedder)
		searchOpts = append(searchOpts, search.WithLexicon(lex), search.WithEmbedder(embedder))
	}

	searcher, err := search.NewSearcher(store, searchOpts...)
	if err != nil {
		store.Close()
		catalog.Close()
		backend.Close()
		return nil, err
	}

	return &Engine{
		backend:  backend,
		catalog:  catalog,
		cache:    cache,
		embedder: embedder,
		lexicon:  lex,
		store:    store,
		searcher: searcher,
		resolver: &catalogResolver{catalog: catalog},
		logger:   options.logger,
	}, nil
}

// EnsureIndexReady loads the index from cache or rebuilds it from the
// catalog. Idempotent and safe to call repeatedly. The semantic lexicon is
// built best-effort on the first call; an unreachable embedding service
// degrades queries to the dictionary paths instead of failing.
func (e *Engine) EnsureIndexReady(ctx context.Context) error {
	if e.lexicon != nil && e.lexicon.Len() == 0 {
		if err := e.lexicon.Build(ctx); err != nil {
			e.logger.Error("semantic lexicon unavailable", "err", err)
		}
	}
	return e.store.EnsureLoaded(ctx)
}

// Search runs one query page. See search.Searcher.Search for the paging
// contract.
func (e *Engine) Search(ctx context.Context, query string, filters core.FilterSet, excludedIDs map[core.ID]struct{}, page int) ([]core.ScoredItem, error) {
	return e.searcher.Search(ctx, query, filters, excludedIDs, page)
}

// Materialize loads the full catalog records behind search results. Items
// that vanished from the catalog since the index was built are skipped; the
// second return value is the number of skipped results.
func (e *Engine) Materialize(ctx context.Context, results []core.ScoredItem) ([]*core.FoodItem, int, error) {
	ids := make([]core.ID, len(results))
	for i, r := range results {
		ids[i] = r.Id
	}
	items, err := e.catalog.GetFoodItems(ctx, ids...)
	if err != nil {
		return nil, 0, err
	}
	return items, len(results) - len(items), nil
}

// UpdateItem persists a changed item and refreshes its index entry.
func (e *Engine) UpdateItem(ctx context.Context, item *core.FoodItem) error {
	updated, err := e.catalog.UpdateFoodItems(ctx, item)
	if err != nil {
		return err
	}
	return e.store.UpdateItem(ctx, updated[0], e.resolver)
}

// AddItems persists new items and folds them into the index.
func (e *Engine) AddItems(ctx context.Context, items ...*core.FoodItem) ([]*core.FoodItem, error) {
	added, err := e.catalog.AddFoodItems(ctx, items...)
	if err != nil {
		return nil, err
	}
	for _, item := range added {
		if err := e.store.UpdateItem(ctx, item, e.resolver); err != nil {
			return added, err
		}
	}
	return added, nil
}

// RemoveItem deletes an item from the catalog and the index.
func (e *Engine) RemoveItem(ctx context.Context, id core.ID) error {
	if err := e.catalog.DeleteFoodItems(ctx, id); err != nil {
		return err
	}
	e.store.RemoveItem(id)
	return nil
}

// SetFavorite toggles the favorite flag in the catalog and the index.
func (e *Engine) SetFavorite(ctx context.Context, id core.ID, favorite bool) error {
	if _, err := e.catalog.SetFavorite(ctx, id, favorite); err != nil {
		return err
	}
	e.store.SetFavorite(id, favorite)
	return nil
}

// NormalizedAndScaledValue returns the display value for one nutrient of an
// indexed item: density per 100 reference units, auto-scaled to a readable
// unit. The third return is false when the item is unknown or carries no
// such nutrient.
func (e *Engine) NormalizedAndScaledValue(id core.ID, nutrient core.NutrientType) (float64, core.Unit, bool) {
	item, ok := e.store.Item(id)
	if !ok {
		return 0, 0, false
	}
	density := item.Density(nutrient)
	if density <= 0 {
		return 0, 0, false
	}
	value, unit := knowledge.ScaledValue(density, nutrient.BaseUnit())
	return value, unit, true
}

// DisplayName returns the stable human-readable label for a nutrient.
func (e *Engine) DisplayName(nutrient core.NutrientType) string {
	return knowledge.DisplayName(nutrient)
}

// ForceRebuild rebuilds the index from the catalog unconditionally.
func (e *Engine) ForceRebuild(ctx context.Context) error {
	_, err := e.store.RebuildIfNeeded(ctx, true)
	return err
}

// NewIngestionPipeline creates a bulk ingestion pipeline over the engine's
// catalog and index.
func (e *Engine) NewIngestionPipeline(opts ...ingest.Option) (*ingest.Pipeline, error) {
	return ingest.NewPipeline(e.catalog, e.store, opts...)
}

// CatalogRepository exposes the catalog for callers that need direct reads.
func (e *Engine) CatalogRepository() storage.CatalogRepository {
	return e.catalog
}

// IndexStore exposes the index store.
func (e *Engine) IndexStore() *index.Store {
	return e.store
}

// Close flushes pending index state and releases storage resources.
func (e *Engine) Close() error {
	e.store.Close()

	if err := e.catalog.Close(); err != nil {
		e.logger.Error("error closing catalog repository", "err", err)
		return err
	}
	if err := e.backend.Close(); err != nil {
		e.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}
