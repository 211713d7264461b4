package lexicon

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/nutridex/ai/mock"
	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/knowledge"
)

// fixedVectors returns an embedder whose output is looked up per text,
// with a fallback vector for anything not listed.
func fixedVectors(byText map[string][]float32, fallback []float32) *mock.MockEmbedder {
	embedder := mock.NewMockEmbedder()
	embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
		if v, ok := byText[text]; ok {
			return v, nil
		}
		return fallback, nil
	}
	embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
		out := make([][]float32, len(texts))
		for i, text := range texts {
			if v, ok := byText[text]; ok {
				out[i] = v
			} else {
				out[i] = fallback
			}
		}
		return out, nil
	}
	return embedder
}

func TestLexiconBuild(t *testing.T) {
	t.Run("builds entry per ontology phrase", func(t *testing.T) {
		lex := New(mock.NewMockEmbedder())
		require.NoError(t, lex.Build(context.Background()))
		assert.Equal(t, len(knowledge.AllPhrases()), lex.Len())
	})

	t.Run("skips phrases without a vector", func(t *testing.T) {
		phrases := knowledge.AllPhrases()
		skipped := phrases[0].Text
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			out := make([][]float32, len(texts))
			for i, text := range texts {
				if text == skipped {
					out[i] = nil
					continue
				}
				out[i] = []float32{1, 0, 0}
			}
			return out, nil
		}

		lex := New(embedder)
		require.NoError(t, lex.Build(context.Background()))
		assert.Equal(t, len(phrases)-1, lex.Len())
	})

	t.Run("retries transient embedding failures", func(t *testing.T) {
		attempts := 0
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			attempts++
			if attempts == 1 {
				return nil, errors.New("connection reset")
			}
			out := make([][]float32, len(texts))
			for i := range texts {
				out[i] = []float32{1, 0}
			}
			return out, nil
		}

		lex := New(embedder,
			WithBatchSize(1000),
			WithRetry(3, time.Millisecond),
		)
		require.NoError(t, lex.Build(context.Background()))
		assert.Equal(t, 2, attempts)
	})

	t.Run("gives up after retry budget", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return nil, errors.New("service down")
		}

		lex := New(embedder, WithRetry(2, time.Millisecond))
		err := lex.Build(context.Background())
		assert.Error(t, err)
	})

	t.Run("count mismatch is an error", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		embedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
			return [][]float32{{1, 0}}, nil
		}

		lex := New(embedder, WithRetry(1, time.Millisecond))
		assert.Error(t, lex.Build(context.Background()))
	})
}

func TestLexiconBestMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("requires build first", func(t *testing.T) {
		lex := New(mock.NewMockEmbedder())
		_, _, err := lex.BestMatch(ctx, "calcium")
		assert.ErrorIs(t, err, ErrNotBuilt)
	})

	t.Run("matches near phrase above floor", func(t *testing.T) {
		vectors := map[string][]float32{
			"calcium":     {1, 0, 0},
			"iron":        {0, 1, 0},
			"calcium-ish": {0.95, 0.05, 0},
		}
		embedder := fixedVectors(vectors, []float32{0, 0, 1})

		lex := New(embedder)
		require.NoError(t, lex.Build(ctx))

		match, ok, err := lex.BestMatch(ctx, "calcium-ish")
		require.NoError(t, err)
		require.True(t, ok)
		assert.Equal(t, "calcium", match.Entry.Phrase)
		assert.Equal(t, knowledge.SubjectNutrient, match.Entry.Subject.Kind)
		assert.Equal(t, core.NutrientCalcium, match.Entry.Subject.Nutrient)
		assert.Greater(t, match.Score, DefaultMinCosine)
	})

	t.Run("nothing above floor yields no match", func(t *testing.T) {
		vectors := map[string][]float32{
			"unrelated query": {0, 0, 1},
		}
		// Every ontology phrase lands on the fallback vector, orthogonal
		// to the query.
		embedder := fixedVectors(vectors, []float32{1, 0, 0})

		lex := New(embedder)
		require.NoError(t, lex.Build(ctx))

		_, ok, err := lex.BestMatch(ctx, "unrelated query")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("score at or below floor is rejected", func(t *testing.T) {
		vectors := map[string][]float32{
			"query": {1, 0},
		}
		// Cosine against every entry is 0.5, under the 0.6 floor.
		embedder := fixedVectors(vectors, []float32{0.5, 0.866025})

		lex := New(embedder)
		require.NoError(t, lex.Build(ctx))

		_, ok, err := lex.BestMatch(ctx, "query")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("embedding failure surfaces", func(t *testing.T) {
		embedder := mock.NewMockEmbedder()
		lex := New(embedder)
		require.NoError(t, lex.Build(ctx))

		embedder.EmbedTextFunc = func(ctx context.Context, text string) ([]float32, error) {
			return nil, errors.New("service down")
		}
		_, _, err := lex.BestMatch(ctx, "calcium")
		assert.Error(t, err)
	})

	t.Run("custom floor", func(t *testing.T) {
		vectors := map[string][]float32{
			"query": {1, 0},
		}
		embedder := fixedVectors(vectors, []float32{0.8, 0.6})

		strict := New(embedder, WithMinCosine(0.9))
		require.NoError(t, strict.Build(ctx))
		_, ok, err := strict.BestMatch(ctx, "query")
		require.NoError(t, err)
		assert.False(t, ok)

		lenient := New(embedder, WithMinCosine(0.5))
		require.NoError(t, lenient.Build(ctx))
		_, ok, err = lenient.BestMatch(ctx, "query")
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
