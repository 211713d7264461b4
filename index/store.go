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


package index

import (
	"context"
	"log/slog"
	"runtime"
	"slices"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/storage"
)

const (
	// defaultStalenessTolerance is how far the cached item count may drift
	// from the live catalog count before the cache is considered stale.
	defaultStalenessTolerance = 5

	// defaultPersistDelay debounces cache writes after mutations.
	defaultPersistDelay = 3 * time.Second
)

// Store is the in-memory search index. It is loaded once from the persisted
// cache (or rebuilt from the catalog when the cache is missing, corrupt or
// stale) and then maintained incrementally.
//
// The ranking and max-density tables are derived views refreshed only by a
// full rebuild; incremental mutations leave them stale on purpose.
type Store struct {
	catalog storage.CatalogRepository
	cache   storage.CacheRepository
	logger  *slog.Logger

	tolerance    int
	persistDelay time.Duration
	poolSize     int

	mu         sync.RWMutex
	loaded     bool
	items      map[core.ID]core.CompactItem
	inverted   map[string][]core.ID
	maxDensity map[core.NutrientType]float64
	rankings   map[core.NutrientType][]core.ID
	knownDiets map[string]struct{}

	persistMu    sync.Mutex
	persistTimer *time.Timer
	closed       bool
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets a custom logger. Default is slog.Default().
func WithLogger(logger *slog.Logger) StoreOption {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithStalenessTolerance sets the allowed drift between the cached item
// count and the live catalog count.
func WithStalenessTolerance(tolerance int) StoreOption {
	return func(s *Store) {
		if tolerance >= 0 {
			s.tolerance = tolerance
		}
	}
}

// WithPersistDelay sets the debounce delay for background cache writes.
func WithPersistDelay(delay time.Duration) StoreOption {
	return func(s *Store) {
		if delay > 0 {
			s.persistDelay = delay
		}
	}
}

// WithPoolSize sets the worker pool size used during full rebuilds.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) StoreOption {
	return func(s *Store) {
		if size >= 1 {
			s.poolSize = size
		}
	}
}

// NewStore creates a Store over the given repositories. The store is empty
// until EnsureLoaded or Rebuild is called.
func NewStore(catalog storage.CatalogRepository, cache storage.CacheRepository, opts ...StoreOption) (*Store, error) {
	if catalog == nil {
		return nil, ErrCatalogRepositoryRequired
	}
	if cache == nil {
		return nil, ErrCacheRepositoryRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	s := &Store{
		catalog:      catalog,
		cache:        cache,
		logger:       slog.Default().With("component", "index-store"),
		tolerance:    defaultStalenessTolerance,
		persistDelay: defaultPersistDelay,
		poolSize:     poolSize,
		items:        make(map[core.ID]core.CompactItem),
		inverted:     make(map[string][]core.ID),
		maxDensity:   make(map[core.NutrientType]float64),
		rankings:     make(map[core.NutrientType][]core.ID),
		knownDiets:   make(map[string]struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// EnsureLoaded makes the store ready: loads the persisted cache if it is
// usable, otherwise rebuilds from the catalog. Safe to call repeatedly;
// only the first call does work.
func (s *Store) EnsureLoaded(ctx context.Context) error {
	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		return nil
	}

	if s.tryLoadCache(ctx) {
		return nil
	}
	return s.Rebuild(ctx)
}

// tryLoadCache attempts to adopt the persisted snapshot. Any failure means
// the cache is unusable; the caller falls back to a rebuild.
func (s *Store) tryLoadCache(ctx context.Context) bool {
	record, err := s.cache.LoadCacheRecord(ctx, cacheSlotKey)
	if err != nil {
		s.logger.Warn("failed to load index cache", "err", err)
		return false
	}
	if record == nil {
		s.logger.Info("no index cache present")
		return false
	}

	snapshot, err := decodeCacheRecord(record)
	if err != nil {
		s.logger.Warn("discarding unusable index cache", "err", err)
		return false
	}

	liveCount, err := s.catalog.CountFoodItems(ctx)
	if err != nil {
		s.logger.Warn("failed to count catalog items", "err", err)
		return false
	}
	drift := liveCount - int(record.ItemCount)
	if drift < 0 {
		drift = -drift
	}
	if drift > s.tolerance {
		s.logger.Info("index cache is stale",
			"cachedCount", record.ItemCount,
			"liveCount", liveCount,
			"tolerance", s.tolerance,
		)
		return false
	}

	s.installSnapshot(snapshot)
	s.logger.Info("index loaded from cache",
		"items", len(snapshot.Items),
		"tokens", len(snapshot.InvertedIndex),
	)
	return true
}

func (s *Store) installSnapshot(snapshot *core.IndexSnapshot) {
	items := make(map[core.ID]core.CompactItem, len(snapshot.Items))
	for id, item := range snapshot.Items {
		items[id] = item
	}
	inverted := make(map[string][]core.ID, len(snapshot.InvertedIndex))
	for token, ids := range snapshot.InvertedIndex {
		inverted[token] = slices.Clone(ids)
	}
	rankings := make(map[core.NutrientType][]core.ID, len(snapshot.NutrientRankings))
	for n, ids := range snapshot.NutrientRankings {
		rankings[n] = slices.Clone(ids)
	}
	maxDensity := make(map[core.NutrientType]float64, len(snapshot.MaxNutrientValues))
	for n, v := range snapshot.MaxNutrientValues {
		maxDensity[n] = v
	}
	knownDiets := make(map[string]struct{}, len(snapshot.KnownDiets))
	for _, diet := range snapshot.KnownDiets {
		knownDiets[diet] = struct{}{}
	}

	s.mu.Lock()
	s.items = items
	s.inverted = inverted
	s.rankings = rankings
	s.maxDensity = maxDensity
	s.knownDiets = knownDiets
	s.loaded = true
	s.mu.Unlock()
}

// Rebuild reconstructs every index structure from the catalog. Compact item
// construction runs on a worker pool; folding is serial so the derived
// tables come out deterministic.
func (s *Store) Rebuild(ctx context.Context) error {
	start := time.Now()

	var source []*core.FoodItem
	err := s.catalog.ForEachFoodItem(ctx, func(item *core.FoodItem) error {
		source = append(source, item)
		return nil
	})
	if err != nil {
		return err
	}

	resolver := make(mapResolver, len(source))
	for _, item := range source {
		resolver[item.Id] = item
	}

	compact := make([]core.CompactItem, len(source))
	buildErrs := make([]error, len(source))

	pool, err := ants.NewPool(s.poolSize)
	if err != nil {
		return err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i := range source {
		i := i
		wg.Add(1)
		submitErr := pool.Submit(func() {
			defer wg.Done()
			compact[i], buildErrs[i] = BuildCompactItem(ctx, source[i], resolver)
		})
		if submitErr != nil {
			wg.Done()
			buildErrs[i] = submitErr
		}
	}
	wg.Wait()

	for _, buildErr := range buildErrs {
		if buildErr != nil {
			return buildErr
		}
	}

	items := make(map[core.ID]core.CompactItem, len(compact))
	inverted := make(map[string][]core.ID)
	knownDiets := make(map[string]struct{})
	for _, item := range compact {
		items[item.Id] = item
		for token := range item.SearchTokens {
			inverted[token] = insertSorted(inverted[token], item.Id)
		}
		for diet := range item.Diets {
			knownDiets[diet] = struct{}{}
		}
	}

	maxDensity, rankings := deriveNutrientTables(items)

	s.mu.Lock()
	s.items = items
	s.inverted = inverted
	s.maxDensity = maxDensity
	s.rankings = rankings
	s.knownDiets = knownDiets
	s.loaded = true
	s.mu.Unlock()

	s.logger.Info("index rebuilt",
		"items", len(items),
		"tokens", len(inverted),
		"elapsed", time.Since(start),
	)

	s.schedulePersist()
	return nil
}

// RebuildIfNeeded rebuilds when forced, when the store has never loaded, or
// when the in-memory item count has drifted out of tolerance from the live
// catalog. Returns whether a rebuild ran.
func (s *Store) RebuildIfNeeded(ctx context.Context, force bool) (bool, error) {
	if force {
		return true, s.Rebuild(ctx)
	}

	s.mu.RLock()
	loaded := s.loaded
	itemCount := len(s.items)
	s.mu.RUnlock()

	if !loaded {
		if err := s.EnsureLoaded(ctx); err != nil {
			return false, err
		}
		return true, nil
	}

	liveCount, err := s.catalog.CountFoodItems(ctx)
	if err != nil {
		return false, err
	}
	drift := liveCount - itemCount
	if drift < 0 {
		drift = -drift
	}
	if drift <= s.tolerance {
		return false, nil
	}
	return true, s.Rebuild(ctx)
}

// deriveNutrientTables computes the max-density table and the descending
// density rankings from the compact items. Rankings are always a derived
// view; there is no separately maintained nutrient index.
func deriveNutrientTables(items map[core.ID]core.CompactItem) (map[core.NutrientType]float64, map[core.NutrientType][]core.ID) {
	maxDensity := make(map[core.NutrientType]float64)
	rankings := make(map[core.NutrientType][]core.ID)

	for _, n := range core.AllNutrients {
		type entry struct {
			id      core.ID
			density float64
		}
		var entries []entry
		for id, item := range items {
			d := item.Density(n)
			if d <= 0 {
				continue
			}
			entries = append(entries, entry{id: id, density: d})
		}
		if len(entries) == 0 {
			continue
		}

		sort.Slice(entries, func(i, j int) bool {
			if entries[i].density != entries[j].density {
				return entries[i].density > entries[j].density
			}
			return entries[i].id < entries[j].id
		})

		ids := make([]core.ID, len(entries))
		for i, e := range entries {
			ids[i] = e.id
		}
		rankings[n] = ids
		maxDensity[n] = entries[0].density
	}

	return maxDensity, rankings
}

// UpdateItem folds a new or changed catalog item into the index. The
// resolver is used for aggregated recipe/menu pH. Rankings and max-density
// tables are left untouched (stale until the next full rebuild).
func (s *Store) UpdateItem(ctx context.Context, item *core.FoodItem, resolver ItemResolver) error {
	compact, err := BuildCompactItem(ctx, item, resolver)
	if err != nil {
		return err
	}

	s.mu.Lock()
	old, existed := s.items[item.Id]

	if existed {
		// Symmetric token diff: drop postings the item no longer has,
		// add the ones it gained.
		for token := range old.SearchTokens {
			if _, still := compact.SearchTokens[token]; !still {
				s.removePosting(token, item.Id)
			}
		}
	}
	for token := range compact.SearchTokens {
		if existed {
			if _, had := old.SearchTokens[token]; had {
				continue
			}
		}
		s.inverted[token] = insertSorted(s.inverted[token], item.Id)
	}

	for diet := range compact.Diets {
		s.knownDiets[diet] = struct{}{}
	}

	s.items[item.Id] = compact
	s.mu.Unlock()

	s.schedulePersist()
	return nil
}

// RemoveItem drops an item from the compact set and the inverted index.
// Ranking tables keep the dead ID until the next full rebuild; readers must
// skip IDs that no longer resolve.
func (s *Store) RemoveItem(id core.ID) {
	s.mu.Lock()
	item, existed := s.items[id]
	if existed {
		for token := range item.SearchTokens {
			s.removePosting(token, id)
		}
		delete(s.items, id)
	}
	s.mu.Unlock()

	if existed {
		s.schedulePersist()
	}
}

// SetFavorite flips the favorite flag on an indexed item.
func (s *Store) SetFavorite(id core.ID, favorite bool) bool {
	s.mu.Lock()
	item, ok := s.items[id]
	if ok && item.IsFavorite != favorite {
		item.IsFavorite = favorite
		s.items[id] = item
	}
	s.mu.Unlock()

	if ok {
		s.schedulePersist()
	}
	return ok
}

// removePosting deletes id from a token's posting list, pruning the entry
// when it empties. Caller holds the write lock.
func (s *Store) removePosting(token string, id core.ID) {
	ids := s.inverted[token]
	i, found := slices.BinarySearch(ids, id)
	if !found {
		return
	}
	ids = slices.Delete(ids, i, i+1)
	if len(ids) == 0 {
		delete(s.inverted, token)
		return
	}
	s.inverted[token] = ids
}

// insertSorted inserts id into an ascending posting list, ignoring
// duplicates.
func insertSorted(ids []core.ID, id core.ID) []core.ID {
	i, found := slices.BinarySearch(ids, id)
	if found {
		return ids
	}
	return slices.Insert(ids, i, id)
}

// Item returns the compact item for an ID.
func (s *Store) Item(id core.ID) (core.CompactItem, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	return item, ok
}

// Len returns the number of indexed items.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Postings returns a copy of the posting list for a token.
func (s *Store) Postings(token string) []core.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.inverted[token])
}

// Ranking returns a copy of the descending density ranking for a nutrient.
// May contain IDs of since-removed items.
func (s *Store) Ranking(n core.NutrientType) []core.ID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.rankings[n])
}

// MaxDensity returns the global maximum density for a nutrient as of the
// last full rebuild.
func (s *Store) MaxDensity(n core.NutrientType) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.maxDensity[n]
}

// Vocabulary returns the sorted set of tokens currently in the inverted
// index.
func (s *Store) Vocabulary() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	tokens := make([]string, 0, len(s.inverted))
	for token := range s.inverted {
		tokens = append(tokens, token)
	}
	sort.Strings(tokens)
	return tokens
}

// KnownDiets returns the sorted set of diet tags seen across the catalog.
func (s *Store) KnownDiets() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	diets := make([]string, 0, len(s.knownDiets))
	for diet := range s.knownDiets {
		diets = append(diets, diet)
	}
	sort.Strings(diets)
	return diets
}

// ForEachItem invokes fn for every indexed item until fn returns false.
// The iteration order is unspecified.
func (s *Store) ForEachItem(fn func(item core.CompactItem) bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, item := range s.items {
		if !fn(item) {
			return
		}
	}
}

// Snapshot builds a value snapshot of every index structure. The returned
// snapshot shares no mutable state with the store, so it can be serialized
// while mutations continue.
func (s *Store) Snapshot() *core.IndexSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	items := make(map[core.ID]core.CompactItem, len(s.items))
	for id, item := range s.items {
		items[id] = item
	}
	inverted := make(map[string][]core.ID, len(s.inverted))
	vocabulary := make([]string, 0, len(s.inverted))
	for token, ids := range s.inverted {
		inverted[token] = slices.Clone(ids)
		vocabulary = append(vocabulary, token)
	}
	sort.Strings(vocabulary)
	rankings := make(map[core.NutrientType][]core.ID, len(s.rankings))
	for n, ids := range s.rankings {
		rankings[n] = slices.Clone(ids)
	}
	maxDensity := make(map[core.NutrientType]float64, len(s.maxDensity))
	for n, v := range s.maxDensity {
		maxDensity[n] = v
	}
	diets := make([]string, 0, len(s.knownDiets))
	for diet := range s.knownDiets {
		diets = append(diets, diet)
	}
	sort.Strings(diets)

	return &core.IndexSnapshot{
		Items:             items,
		InvertedIndex:     inverted,
		Vocabulary:        vocabulary,
		MaxNutrientValues: maxDensity,
		KnownDiets:        diets,
		NutrientRankings:  rankings,
	}
}

// schedulePersist arms (or re-arms) the debounced background persist.
func (s *Store) schedulePersist() {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()
	if s.closed {
		return
	}
	if s.persistTimer != nil {
		s.persistTimer.Stop()
	}
	s.persistTimer = time.AfterFunc(s.persistDelay, s.persistNow)
}

// persistNow serializes a snapshot and writes it to the cache. Failures are
// logged and dropped; the in-memory index stays authoritative and the next
// mutation reschedules a save.
func (s *Store) persistNow() {
	snapshot := s.Snapshot()

	record, err := encodeCacheRecord(snapshot)
	if err != nil {
		s.logger.Error("failed to encode index snapshot", "err", err)
		return
	}
	if err := s.cache.SaveCacheRecord(context.Background(), record); err != nil {
		s.logger.Error("failed to persist index cache", "err", err)
		return
	}
	s.logger.Debug("index cache persisted",
		"items", record.ItemCount,
		"bytes", len(record.Payload),
	)
}

// Flush persists the current state immediately, canceling any pending
// debounced write.
func (s *Store) Flush() {
	s.persistMu.Lock()
	if s.persistTimer != nil {
		s.persistTimer.Stop()
		s.persistTimer = nil
	}
	s.persistMu.Unlock()

	s.persistNow()
}

// Close flushes pending state and stops background persistence.
func (s *Store) Close() {
	s.persistMu.Lock()
	if s.closed {
		s.persistMu.Unlock()
		return
	}
	s.closed = true
	if s.persistTimer != nil {
		s.persistTimer.Stop()
		s.persistTimer = nil
	}
	s.persistMu.Unlock()

	s.mu.RLock()
	loaded := s.loaded
	s.mu.RUnlock()
	if loaded {
		s.persistNow()
	}
}
