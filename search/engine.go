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


package search

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/poiesic/nutridex/ai"
	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/index"
	"github.com/poiesic/nutridex/lexicon"
)

// DefaultPageSize is the number of results per page.
const DefaultPageSize = 30

// Searcher executes parsed queries against the index store. It combines
// lexical inverted-index lookups with an embedding fallback for query tokens
// the index has never seen, then intersects the candidates with every
// structured constraint.
type Searcher struct {
	store    *index.Store
	lexicon  *lexicon.Lexicon
	embedder ai.Embedder
	logger   *slog.Logger

	pageSize  int
	minCosine float64

	// vocabMu guards the lazily built vocabulary vector table used by the
	// token-level semantic fallback. The table is rebuilt whenever the
	// index vocabulary changes.
	vocabMu        sync.Mutex
	vocabVectors   map[string][]float32
	vocabSignature uint64

	cursorMu  sync.Mutex
	cursor    uint64 // signature of the query+filters the cursor belongs to
	cursorPos int    // next page to serve for that signature
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// WithLexicon enables semantic resolution of query terms that miss the
// ontology tables.
func WithLexicon(lex *lexicon.Lexicon) Option {
	return func(s *Searcher) error {
		s.lexicon = lex
		return nil
	}
}

// WithEmbedder enables the token-level semantic fallback against the index
// vocabulary.
func WithEmbedder(embedder ai.Embedder) Option {
	return func(s *Searcher) error {
		s.embedder = embedder
		return nil
	}
}

// WithPageSize overrides the default page size.
func WithPageSize(size int) Option {
	return func(s *Searcher) error {
		if size <= 0 {
			return ErrInvalidPageSize
		}
		s.pageSize = size
		return nil
	}
}

// WithMinCosine overrides the cosine floor for the token-level fallback.
func WithMinCosine(min float64) Option {
	return func(s *Searcher) error {
		s.minCosine = min
		return nil
	}
}

// NewSearcher creates a new searcher over the index store.
func NewSearcher(store *index.Store, opts ...Option) (*Searcher, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}

	s := &Searcher{
		store:     store,
		logger:    slog.Default(),
		pageSize:  DefaultPageSize,
		minCosine: lexicon.DefaultMinCosine,
	}

	// Apply options
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}

	return s, nil
}

// Search runs the query and returns one page of results. A non-negative
// page selects that page explicitly; a negative page means "load more": the
// page after the one last served for the same query+filter combination, or
// the first page when query or filters changed.
func (s *Searcher) Search(ctx context.Context, query string, filters core.FilterSet, excludedIDs map[core.ID]struct{}, page int) ([]core.ScoredItem, error) {
	return s.SearchWithMonitor(ctx, query, filters, excludedIDs, page, nil)
}

// SearchWithMonitor runs the query with monitoring. The monitor receives
// callbacks at each stage.
func (s *Searcher) SearchWithMonitor(ctx context.Context, query string, filters core.FilterSet, excludedIDs map[core.ID]struct{}, page int, monitor SearchMonitor) ([]core.ScoredItem, error) {
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	monitor.Start(query)

	parsed := Parse(ctx, query, s.lexicon)
	for n := range filters.ActiveNutrientFilters {
		parsed.Constraints = append(parsed.Constraints, NutrientConstraint{
			Nutrient:  n,
			Operator:  core.OpGreater,
			Threshold: 0,
		})
	}
	monitor.AfterParse(&parsed)

	candidates := s.collectCandidates(ctx, &parsed, monitor)

	results := make([]core.ScoredItem, 0, len(candidates))
	for id, hit := range candidates {
		if _, excluded := excludedIDs[id]; excluded {
			continue
		}
		item, ok := s.store.Item(id)
		if !ok {
			continue
		}
		if !s.matchesFilters(&item, &parsed, &filters) {
			monitor.ConstraintRejected(id)
			continue
		}
		results = append(results, core.ScoredItem{
			Id:       id,
			Name:     item.Name,
			Score:    s.scoreItem(&item, &parsed, hit),
			Semantic: hit.semantic,
		})
	}

	s.orderResults(results, &parsed)
	monitor.Finish(results)

	return s.paginate(results, query, &filters, page), nil
}

// candidateHit tracks how an item entered the candidate set.
type candidateHit struct {
	semantic bool
	lexHits  int     // lexical tokens matched
	score    float64 // best fallback cosine, semantic-only hits
}

// collectCandidates derives the candidate ID set. With no lexical tokens the
// whole index is a candidate and structured constraints do the narrowing;
// otherwise candidates are the union of inverted-index postings for each
// token, widened by the embedding fallback for tokens the index has never
// seen.
func (s *Searcher) collectCandidates(ctx context.Context, parsed *ParsedQuery, monitor SearchMonitor) map[core.ID]candidateHit {
	candidates := make(map[core.ID]candidateHit)

	if len(parsed.LexicalTokens) == 0 {
		s.store.ForEachItem(func(item core.CompactItem) bool {
			candidates[item.Id] = candidateHit{}
			return true
		})
		return candidates
	}

	for _, token := range parsed.LexicalTokens {
		postings := s.store.Postings(token)
		for _, id := range postings {
			hit := candidates[id]
			hit.lexHits++
			candidates[id] = hit
		}
		if len(postings) == 0 {
			s.semanticFallback(ctx, token, candidates, monitor)
		}
	}

	ids := make([]core.ID, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	monitor.AfterCandidateSelection(ids)
	return candidates
}

// semanticFallback widens the candidate set with items whose tokens are
// embedding-close to a query token the inverted index has no postings for.
// Best-effort: embedding failures are logged and the token contributes
// nothing.
func (s *Searcher) semanticFallback(ctx context.Context, token string, candidates map[core.ID]candidateHit, monitor SearchMonitor) {
	if s.embedder == nil {
		return
	}
	vectors, err := s.vocabularyVectors(ctx)
	if err != nil {
		s.logger.Error("vocabulary embedding failed", "err", err)
		return
	}
	queryVec, err := s.embedder.EmbedText(ctx, token)
	if err != nil {
		s.logger.Error("query token embedding failed", "token", token, "err", err)
		return
	}
	queryVec = lexicon.NormalizeVector(queryVec)

	for indexToken, vec := range vectors {
		score := lexicon.CosineSimilarity(queryVec, vec)
		if score <= s.minCosine {
			continue
		}
		monitor.SemanticHit(token, indexToken, score)
		for _, id := range s.store.Postings(indexToken) {
			hit, seen := candidates[id]
			if !seen {
				hit.semantic = true
			}
			if score > hit.score {
				hit.score = score
			}
			candidates[id] = hit
		}
	}
}

// vocabularyVectors returns the embedded index vocabulary, rebuilding the
// table when the vocabulary changed since the last build.
func (s *Searcher) vocabularyVectors(ctx context.Context) (map[string][]float32, error) {
	vocab := s.store.Vocabulary()
	signature := core.SignatureFromContent(strings.Join(vocab, "\x00"))

	s.vocabMu.Lock()
	defer s.vocabMu.Unlock()

	if s.vocabVectors != nil && s.vocabSignature == signature {
		return s.vocabVectors, nil
	}

	vectors := make(map[string][]float32, len(vocab))
	if len(vocab) > 0 {
		embedded, err := s.embedder.EmbedTexts(ctx, vocab)
		if err != nil {
			return nil, err
		}
		for i, vec := range embedded {
			if i >= len(vocab) || len(vec) == 0 {
				continue
			}
			vectors[vocab[i]] = lexicon.NormalizeVector(vec)
		}
	}

	s.vocabVectors = vectors
	s.vocabSignature = signature
	return vectors, nil
}

// matchesFilters evaluates every structured condition against one item.
func (s *Searcher) matchesFilters(item *core.CompactItem, parsed *ParsedQuery, filters *core.FilterSet) bool {
	if filters.FavoritesOnly && !item.IsFavorite {
		return false
	}
	if filters.RecipesOnly && !item.IsRecipe {
		return false
	}
	if filters.MenusOnly && !item.IsMenu {
		return false
	}
	if !filters.Mode.Matches(item) {
		return false
	}
	if filters.QuickAgeMonths > 0 && !item.PassesAge(filters.QuickAgeMonths) {
		return false
	}
	if parsed.PHTarget != 0 && !parsed.PHTarget.Matches(item.PH) {
		return false
	}
	for _, diet := range parsed.RequiredDiets {
		if _, ok := item.Diets[diet]; !ok {
			return false
		}
	}
	for _, allergen := range parsed.ExcludedAllergens {
		if _, ok := item.Allergens[allergen.String()]; ok {
			return false
		}
	}
	for _, c := range parsed.Constraints {
		if !c.Operator.Compare(item.Density(c.Nutrient), c.Threshold) {
			return false
		}
	}
	return true
}

// scoreItem assigns the relevance score: the sort nutrient's density when
// one is active, else lexical token hits, else the fallback cosine.
func (s *Searcher) scoreItem(item *core.CompactItem, parsed *ParsedQuery, hit candidateHit) float64 {
	if nutrient, ok := orderNutrient(parsed); ok {
		return item.Density(nutrient)
	}
	if hit.lexHits > 0 {
		return float64(hit.lexHits)
	}
	return hit.score
}

// orderNutrient picks the nutrient driving result order: an explicit sort
// emphasis, or the single nutrient the constraints agree on.
func orderNutrient(parsed *ParsedQuery) (core.NutrientType, bool) {
	if parsed.SortSet {
		return parsed.SortNutrient, true
	}
	var nutrient core.NutrientType
	seen := false
	for _, c := range parsed.Constraints {
		if seen && c.Nutrient != nutrient {
			return 0, false
		}
		nutrient = c.Nutrient
		seen = true
	}
	return nutrient, seen
}

// orderResults sorts deterministically: by the active nutrient's density
// when one is set, else lexical matches before semantic-only ones and
// higher scores first. Ties always break by ID ascending so that repeated
// calls with the same inputs paginate identically.
func (s *Searcher) orderResults(results []core.ScoredItem, parsed *ParsedQuery) {
	_, byNutrient := orderNutrient(parsed)
	sort.Slice(results, func(i, j int) bool {
		a, b := results[i], results[j]
		if byNutrient {
			if a.Score != b.Score {
				if parsed.SortAscending {
					return a.Score < b.Score
				}
				return a.Score > b.Score
			}
			return a.Id < b.Id
		}
		if a.Semantic != b.Semantic {
			return !a.Semantic
		}
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Id < b.Id
	})
}
