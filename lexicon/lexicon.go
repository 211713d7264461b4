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


package lexicon

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/poiesic/nutridex/ai"
	"github.com/poiesic/nutridex/knowledge"
)

const (
	// DefaultMinCosine is the similarity floor below which a candidate is
	// treated as no match.
	DefaultMinCosine = 0.6

	defaultBatchSize      = 64
	defaultMaxRetries     = 3
	defaultRetryBaseDelay = 500 * time.Millisecond
)

// Entry is one embedded ontology phrase.
type Entry struct {
	Phrase  string
	Subject knowledge.Subject
	Vector  []float32
}

// Match is the result of a successful BestMatch lookup.
type Match struct {
	Entry Entry
	Score float64
}

// Lexicon holds embedded ontology phrases and answers nearest-neighbor
// queries over them. Build must be called before BestMatch; after that the
// lexicon is safe for concurrent readers.
type Lexicon struct {
	embedder       ai.Embedder
	minCosine      float64
	batchSize      int
	maxRetries     int
	retryBaseDelay time.Duration
	logger         *slog.Logger

	mu      sync.RWMutex
	entries []Entry
	built   bool
}

// Option configures a Lexicon.
type Option func(*Lexicon)

// WithMinCosine sets the similarity floor used by BestMatch.
func WithMinCosine(min float64) Option {
	return func(l *Lexicon) {
		l.minCosine = min
	}
}

// WithBatchSize sets how many phrases are embedded per API call.
func WithBatchSize(size int) Option {
	return func(l *Lexicon) {
		if size > 0 {
			l.batchSize = size
		}
	}
}

// WithRetry sets the retry budget for embedding API calls during Build.
func WithRetry(maxRetries int, baseDelay time.Duration) Option {
	return func(l *Lexicon) {
		l.maxRetries = maxRetries
		l.retryBaseDelay = baseDelay
	}
}

// New creates a lexicon backed by the given embedder.
func New(embedder ai.Embedder, opts ...Option) *Lexicon {
	l := &Lexicon{
		embedder:       embedder,
		minCosine:      DefaultMinCosine,
		batchSize:      defaultBatchSize,
		maxRetries:     defaultMaxRetries,
		retryBaseDelay: defaultRetryBaseDelay,
		logger:         slog.Default().With("component", "lexicon"),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Build embeds every ontology phrase and stores the resulting entries.
// Phrases the model returns no vector for are skipped silently; the table
// is partial by design. Build replaces any previous contents, so it can be
// called again to re-embed after a model change.
func (l *Lexicon) Build(ctx context.Context) error {
	phrases := knowledge.AllPhrases()
	entries := make([]Entry, 0, len(phrases))

	start := time.Now()
	for offset := 0; offset < len(phrases); offset += l.batchSize {
		end := offset + l.batchSize
		if end > len(phrases) {
			end = len(phrases)
		}
		batch := phrases[offset:end]

		texts := make([]string, len(batch))
		for i, p := range batch {
			texts[i] = p.Text
		}

		var vectors [][]float32
		err := retryWithBackoff(ctx, func() error {
			var err error
			vectors, err = l.embedder.EmbedTexts(ctx, texts)
			return err
		}, l.maxRetries, l.retryBaseDelay)
		if err != nil {
			return fmt.Errorf("failed to embed lexicon batch after %d attempts: %w", l.maxRetries, err)
		}
		if len(vectors) != len(batch) {
			return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(batch), len(vectors))
		}

		for i, p := range batch {
			if len(vectors[i]) == 0 {
				continue
			}
			entries = append(entries, Entry{
				Phrase:  p.Text,
				Subject: p.Subject,
				Vector:  NormalizeVector(vectors[i]),
			})
		}

		l.logger.Debug("embedded lexicon batch",
			"done", end,
			"total", len(phrases),
		)
	}

	l.mu.Lock()
	l.entries = entries
	l.built = true
	l.mu.Unlock()

	l.logger.Info("lexicon built",
		"phrases", len(phrases),
		"entries", len(entries),
		"elapsed", time.Since(start),
	)
	return nil
}

// Len returns the number of stored entries.
func (l *Lexicon) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}

// BestMatch embeds the given phrase and returns the highest-scoring stored
// entry whose cosine similarity exceeds the configured floor. The boolean
// is false when nothing clears the floor. This is a last-resort path: exact
// dictionary lookups are cheaper and must be tried first by the caller.
func (l *Lexicon) BestMatch(ctx context.Context, phrase string) (Match, bool, error) {
	l.mu.RLock()
	built := l.built
	entries := l.entries
	l.mu.RUnlock()

	if !built {
		return Match{}, false, ErrNotBuilt
	}
	if len(entries) == 0 {
		return Match{}, false, nil
	}

	vector, err := l.embedder.EmbedText(ctx, phrase)
	if err != nil {
		return Match{}, false, fmt.Errorf("failed to embed query phrase: %w", err)
	}

	best := Match{Score: -1}
	found := false
	for _, entry := range entries {
		score := CosineSimilarity(vector, entry.Vector)
		if score <= l.minCosine {
			continue
		}
		if !found || score > best.Score {
			best = Match{Entry: entry, Score: score}
			found = true
		}
	}

	if !found {
		return Match{}, false, nil
	}
	return best, true, nil
}
