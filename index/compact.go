package index

import (
	"context"

	"github.com/poiesic/nutridex/core"
	"github.com/poiesic/nutridex/knowledge"
)

// ItemResolver resolves ingredient references while building compact items.
// Implementations return nil, nil for unknown IDs; a recipe with a missing
// ingredient is degraded, not rejected.
type ItemResolver interface {
	ResolveItem(ctx context.Context, id core.ID) (*core.FoodItem, error)
}

// mapResolver resolves from an in-memory item set, used during full
// rebuilds where every catalog item has already been loaded.
type mapResolver map[core.ID]*core.FoodItem

func (m mapResolver) ResolveItem(_ context.Context, id core.ID) (*core.FoodItem, error) {
	return m[id], nil
}

// BuildCompactItem projects a catalog item into its search-optimized form.
//
// Token derivation prefers the item's precomputed token cache when present,
// falling back to tokenizing the raw name. Either way, tokens that follow an
// exclusion keyword in the name ("without", "no", ...) are stripped, so
// "Chicken Salad without Tomato" never matches a tomato query.
//
// Nutrients are stored sparsely: only strictly positive values survive.
//
// Recipes and menus have no intrinsic pH; theirs is aggregated over the
// resolved ingredient graph, weighted by amount.
func BuildCompactItem(ctx context.Context, item *core.FoodItem, resolver ItemResolver) (core.CompactItem, error) {
	compact := core.CompactItem{
		Id:               item.Id,
		Name:             item.Name,
		MinAgeMonths:     item.MinAgeMonths,
		PH:               item.PH,
		ReferenceWeightG: item.ReferenceWeightG,
		IsRecipe:         item.IsRecipe,
		IsMenu:           item.IsMenu,
		IsFavorite:       item.IsFavorite,
	}

	compact.SearchTokens = deriveTokens(item)
	compact.Diets = make(map[string]struct{}, len(item.Diets))
	for _, diet := range item.Diets {
		compact.Diets[diet] = struct{}{}
	}
	compact.Allergens = make(map[string]struct{}, len(item.Allergens))
	for _, allergen := range item.Allergens {
		compact.Allergens[allergen] = struct{}{}
	}

	compact.NutrientValues = make(map[core.NutrientType]float64)
	for _, n := range core.AllNutrients {
		if v, ok := item.Nutrients[n]; ok && v > 0 {
			compact.NutrientValues[n] = v
		}
	}

	if item.IsRecipe || item.IsMenu {
		visited := map[core.ID]struct{}{item.Id: {}}
		ph, err := aggregatePH(ctx, item, resolver, visited)
		if err != nil {
			return core.CompactItem{}, err
		}
		compact.PH = ph
	}

	if err := core.ValidateCompactItem(&compact); err != nil {
		return core.CompactItem{}, err
	}
	return compact, nil
}

func deriveTokens(item *core.FoodItem) map[string]struct{} {
	if len(item.TokenCache) == 0 {
		return knowledge.MakeNameTokens(item.Name)
	}

	tokens := make(map[string]struct{}, len(item.TokenCache))
	for _, token := range item.TokenCache {
		tokens[token] = struct{}{}
	}
	for token := range knowledge.ExcludedNameTokens(item.Name) {
		delete(tokens, token)
	}
	return tokens
}

// aggregatePH computes the amount-weighted mean pH over the resolved
// ingredient graph. Ingredients without a usable pH contribute nothing;
// nested recipes recurse. Returns 0 when no ingredient has a pH.
func aggregatePH(ctx context.Context, item *core.FoodItem, resolver ItemResolver, visited map[core.ID]struct{}) (float64, error) {
	var weighted, totalWeight float64

	for _, ref := range item.Ingredients {
		if _, seen := visited[ref.ItemId]; seen {
			continue
		}
		if ref.AmountG <= 0 {
			continue
		}
		if resolver == nil {
			continue
		}

		ingredient, err := resolver.ResolveItem(ctx, ref.ItemId)
		if err != nil {
			return 0, err
		}
		if ingredient == nil {
			continue
		}

		ph := ingredient.PH
		if ingredient.IsRecipe || ingredient.IsMenu {
			visited[ref.ItemId] = struct{}{}
			ph, err = aggregatePH(ctx, ingredient, resolver, visited)
			if err != nil {
				return 0, err
			}
		}
		if ph <= 0 {
			continue
		}

		weighted += ph * ref.AmountG
		totalWeight += ref.AmountG
	}

	if totalWeight == 0 {
		return 0, nil
	}
	return weighted / totalWeight, nil
}
