package lexicon

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeVector(t *testing.T) {
	t.Run("unit length", func(t *testing.T) {
		v := NormalizeVector([]float32{3, 4})
		assert.InDelta(t, 0.6, v[0], 1e-6)
		assert.InDelta(t, 0.8, v[1], 1e-6)
	})

	t.Run("zero vector stays zero", func(t *testing.T) {
		v := NormalizeVector([]float32{0, 0, 0})
		assert.Equal(t, []float32{0, 0, 0}, v)
	})

	t.Run("empty vector", func(t *testing.T) {
		assert.Empty(t, NormalizeVector(nil))
	})

	t.Run("does not mutate input", func(t *testing.T) {
		in := []float32{3, 4}
		_ = NormalizeVector(in)
		assert.Equal(t, []float32{3, 4}, in)
	})
}

func TestCosineSimilarity(t *testing.T) {
	t.Run("identical vectors score one", func(t *testing.T) {
		v := []float32{0.5, 0.5, 0.7}
		assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
	})

	t.Run("orthogonal vectors score zero", func(t *testing.T) {
		assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
	})

	t.Run("opposite vectors score minus one", func(t *testing.T) {
		assert.InDelta(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	})

	t.Run("zero norm scores minus one", func(t *testing.T) {
		assert.Equal(t, -1.0, CosineSimilarity([]float32{0, 0}, []float32{1, 0}))
		assert.Equal(t, -1.0, CosineSimilarity([]float32{1, 0}, []float32{0, 0}))
	})

	t.Run("mismatched lengths score minus one", func(t *testing.T) {
		assert.Equal(t, -1.0, CosineSimilarity([]float32{1}, []float32{1, 0}))
		assert.Equal(t, -1.0, CosineSimilarity(nil, []float32{1}))
	})

	t.Run("scale invariant", func(t *testing.T) {
		a := []float32{1, 2, 3}
		b := []float32{10, 20, 30}
		assert.InDelta(t, 1.0, CosineSimilarity(a, b), 1e-6)
	})
}

func TestCosineSimilarityRange(t *testing.T) {
	a := []float32{0.1, -0.4, 0.9}
	b := []float32{-0.7, 0.2, 0.1}
	score := CosineSimilarity(a, b)
	assert.False(t, math.IsNaN(score))
	assert.GreaterOrEqual(t, score, -1.0)
	assert.LessOrEqual(t, score, 1.0)
}
