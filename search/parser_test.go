package search

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/knowledge"
	"github.com/poiesic/nutridex/lexicon"
)

func TestParseLexicalTokens(t *testing.T) {
	t.Run("plain food words stay lexical", func(t *testing.T) {
		parsed := Parse(context.Background(), "chicken soup", nil)
		assert.ElementsMatch(t, []string{"chicken", "soup"}, parsed.LexicalTokens)
		assert.False(t, parsed.HasStructure())
	})

	t.Run("stop words and punctuation drop out", func(t *testing.T) {
		parsed := Parse(context.Background(), "a bowl of soup, please!", nil)
		assert.NotContains(t, parsed.LexicalTokens, "of")
		assert.NotContains(t, parsed.LexicalTokens, "a")
		assert.Contains(t, parsed.LexicalTokens, "soup")
	})

	t.Run("empty query parses to nothing", func(t *testing.T) {
		parsed := Parse(context.Background(), "   ", nil)
		assert.Empty(t, parsed.LexicalTokens)
		assert.False(t, parsed.HasStructure())
	})
}

func TestParseNutrientConstraints(t *testing.T) {
	t.Run("operator phrase before value and nutrient", func(t *testing.T) {
		parsed := Parse(context.Background(), "at least 20g protein", nil)
		require.Len(t, parsed.Constraints, 1)
		assert.Equal(t, NutrientConstraint{
			Nutrient:  core.NutrientProtein,
			Operator:  core.OpGreaterOrEqual,
			Threshold: 20,
		}, parsed.Constraints[0])
		assert.Empty(t, parsed.LexicalTokens)
	})

	t.Run("nutrient before symbol and value", func(t *testing.T) {
		parsed := Parse(context.Background(), "protein > 20", nil)
		require.Len(t, parsed.Constraints, 1)
		assert.Equal(t, NutrientConstraint{
			Nutrient:  core.NutrientProtein,
			Operator:  core.OpGreater,
			Threshold: 20,
		}, parsed.Constraints[0])
	})

	t.Run("symbol glued to value and unit", func(t *testing.T) {
		parsed := Parse(context.Background(), ">=5g fiber", nil)
		require.Len(t, parsed.Constraints, 1)
		assert.Equal(t, NutrientConstraint{
			Nutrient:  core.NutrientFiber,
			Operator:  core.OpGreaterOrEqual,
			Threshold: 5,
		}, parsed.Constraints[0])
	})

	t.Run("unit converts to the nutrient base unit", func(t *testing.T) {
		// Calcium's base unit is mg, so 2 grams become 2000.
		parsed := Parse(context.Background(), "more than 2 g calcium", nil)
		require.Len(t, parsed.Constraints, 1)
		assert.Equal(t, core.NutrientCalcium, parsed.Constraints[0].Nutrient)
		assert.Equal(t, core.OpGreater, parsed.Constraints[0].Operator)
		assert.InDelta(t, 2000, parsed.Constraints[0].Threshold, 1e-9)
	})

	t.Run("operator phrase under", func(t *testing.T) {
		parsed := Parse(context.Background(), "under 100 calories", nil)
		require.Len(t, parsed.Constraints, 1)
		assert.Equal(t, NutrientConstraint{
			Nutrient:  core.NutrientEnergy,
			Operator:  core.OpLess,
			Threshold: 100,
		}, parsed.Constraints[0])
	})

	t.Run("multi word nutrient consumes the whole phrase", func(t *testing.T) {
		parsed := Parse(context.Background(), "vitamin c", nil)
		require.True(t, parsed.SortSet)
		assert.Equal(t, core.NutrientVitaminC, parsed.SortNutrient)
		assert.Empty(t, parsed.LexicalTokens)
	})

	t.Run("two constraints on different nutrients", func(t *testing.T) {
		parsed := Parse(context.Background(), "protein > 10 sugar < 5", nil)
		require.Len(t, parsed.Constraints, 2)
		assert.Equal(t, core.NutrientProtein, parsed.Constraints[0].Nutrient)
		assert.Equal(t, core.NutrientSugar, parsed.Constraints[1].Nutrient)
	})
}

func TestParseSortEmphasis(t *testing.T) {
	t.Run("bare nutrient sorts descending and requires presence", func(t *testing.T) {
		parsed := Parse(context.Background(), "calcium", nil)
		require.True(t, parsed.SortSet)
		assert.Equal(t, core.NutrientCalcium, parsed.SortNutrient)
		assert.False(t, parsed.SortAscending)
		require.Len(t, parsed.Constraints, 1)
		assert.Equal(t, core.OpGreater, parsed.Constraints[0].Operator)
		assert.Zero(t, parsed.Constraints[0].Threshold)
	})

	t.Run("high keeps descending order", func(t *testing.T) {
		parsed := Parse(context.Background(), "high protein breakfast", nil)
		require.True(t, parsed.SortSet)
		assert.Equal(t, core.NutrientProtein, parsed.SortNutrient)
		assert.False(t, parsed.SortAscending)
		assert.Contains(t, parsed.LexicalTokens, "breakfast")
	})

	t.Run("low flips to ascending without a presence constraint", func(t *testing.T) {
		parsed := Parse(context.Background(), "low sugar", nil)
		require.True(t, parsed.SortSet)
		assert.Equal(t, core.NutrientSugar, parsed.SortNutrient)
		assert.True(t, parsed.SortAscending)
		assert.Empty(t, parsed.Constraints)
	})
}

func TestParseNegations(t *testing.T) {
	t.Run("negated allergen is excluded and implies its diet", func(t *testing.T) {
		parsed := Parse(context.Background(), "no dairy", nil)
		assert.Equal(t, []core.Allergen{core.AllergenMilk}, parsed.ExcludedAllergens)
		assert.Contains(t, parsed.RequiredDiets, knowledge.DietDairyFree)
		assert.Empty(t, parsed.LexicalTokens)
	})

	t.Run("negated ingredient implies a diet tag", func(t *testing.T) {
		parsed := Parse(context.Background(), "pancakes without eggs", nil)
		assert.Equal(t, []core.Allergen{core.AllergenEgg}, parsed.ExcludedAllergens)
		assert.Contains(t, parsed.RequiredDiets, knowledge.DietEggFree)
		assert.Contains(t, parsed.LexicalTokens, "pancakes")
	})

	t.Run("allergen word without negation is a food word", func(t *testing.T) {
		parsed := Parse(context.Background(), "peanut butter", nil)
		assert.Empty(t, parsed.ExcludedAllergens)
		assert.ElementsMatch(t, []string{"peanut", "butter"}, parsed.LexicalTokens)
	})

	t.Run("hyphenated suffix negation zeroes the nutrient", func(t *testing.T) {
		parsed := Parse(context.Background(), "sugar-free cookies", nil)
		require.Len(t, parsed.Constraints, 1)
		assert.Equal(t, NutrientConstraint{
			Nutrient:  core.NutrientSugar,
			Operator:  core.OpLessOrEqual,
			Threshold: 0,
		}, parsed.Constraints[0])
		assert.Contains(t, parsed.LexicalTokens, "cookie")
	})

	t.Run("spaced suffix negation resolves as the diet phrase", func(t *testing.T) {
		parsed := Parse(context.Background(), "sugar free", nil)
		assert.Contains(t, parsed.RequiredDiets, knowledge.DietSugarFree)
		assert.Empty(t, parsed.Constraints)
	})

	t.Run("standalone free binds to a pending nutrient", func(t *testing.T) {
		parsed := Parse(context.Background(), "caffeine free", nil)
		require.Len(t, parsed.Constraints, 1)
		assert.Equal(t, NutrientConstraint{
			Nutrient:  core.NutrientCaffeine,
			Operator:  core.OpLessOrEqual,
			Threshold: 0,
		}, parsed.Constraints[0])
	})
}

func TestParseDietsAndPH(t *testing.T) {
	t.Run("diet word is a requirement", func(t *testing.T) {
		parsed := Parse(context.Background(), "vegan breakfast", nil)
		assert.Equal(t, []string{knowledge.DietVegan}, parsed.RequiredDiets)
		assert.Contains(t, parsed.LexicalTokens, "breakfast")
	})

	t.Run("gluten free consumes both words", func(t *testing.T) {
		parsed := Parse(context.Background(), "gluten free bread", nil)
		assert.Equal(t, []string{knowledge.DietGlutenFree}, parsed.RequiredDiets)
		assert.ElementsMatch(t, []string{"bread"}, parsed.LexicalTokens)
	})

	t.Run("ph class word sets the target", func(t *testing.T) {
		parsed := Parse(context.Background(), "alkaline", nil)
		assert.True(t, parsed.MentionsPH)
		assert.Equal(t, core.PHAlkaline, parsed.PHTarget)
	})

	t.Run("bare ph mention carries no class", func(t *testing.T) {
		parsed := Parse(context.Background(), "ph", nil)
		assert.True(t, parsed.MentionsPH)
		assert.Zero(t, parsed.PHTarget)
	})
}

func TestParseSemanticFallback(t *testing.T) {
	shared := []float32{1, 0, 0}
	other := []float32{0, 1, 0}
	lex := lexicon.New(fixedVectors(map[string][]float32{
		"calcium":      shared,
		"calciumish":   shared,
		"zzzunrelated": {0, 0, 1},
	}, other))
	require.NoError(t, lex.Build(context.Background()))

	t.Run("near miss resolves through the lexicon", func(t *testing.T) {
		parsed := Parse(context.Background(), "calciumish", lex)
		require.True(t, parsed.SortSet)
		assert.Equal(t, core.NutrientCalcium, parsed.SortNutrient)
		assert.Empty(t, parsed.LexicalTokens)
	})

	t.Run("dictionary hits never reach the lexicon", func(t *testing.T) {
		parsed := Parse(context.Background(), "vegan", lex)
		assert.Equal(t, []string{knowledge.DietVegan}, parsed.RequiredDiets)
	})

	t.Run("below floor degrades to a lexical token", func(t *testing.T) {
		parsed := Parse(context.Background(), "zzzunrelated", lex)
		assert.False(t, parsed.HasStructure())
		assert.Equal(t, []string{"zzzunrelated"}, parsed.LexicalTokens)
	})
}
