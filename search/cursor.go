package search

import (
	"fmt"
	"sort"
	"strings"

	"github.com/poiesic/nutridex/core"
)

// filterSignature fingerprints a query+filter combination. The "load more"
// cursor is tied to this signature: any change to the query text or the
// filters resets pagination to the first page.
func filterSignature(query string, filters *core.FilterSet) uint64 {
	nutrients := make([]int, 0, len(filters.ActiveNutrientFilters))
	for n := range filters.ActiveNutrientFilters {
		nutrients = append(nutrients, int(n))
	}
	sort.Ints(nutrients)

	var b strings.Builder
	b.WriteString(strings.ToLower(strings.TrimSpace(query)))
	fmt.Fprintf(&b, "|%v|%d|%t|%t|%t|%t|%d",
		nutrients, filters.QuickAgeMonths, filters.FavoritesOnly,
		filters.RecipesOnly, filters.MenusOnly, filters.ForcePhDisplay,
		filters.Mode)
	return core.SignatureFromContent(b.String())
}

// paginate slices one page out of the full ordered result list and advances
// the stored cursor. page >= 0 selects that page explicitly; page < 0 means
// "load more" relative to the last search with the same signature.
func (s *Searcher) paginate(results []core.ScoredItem, query string, filters *core.FilterSet, page int) []core.ScoredItem {
	signature := filterSignature(query, filters)

	s.cursorMu.Lock()
	defer s.cursorMu.Unlock()

	if page < 0 {
		if s.cursor == signature {
			page = s.cursorPos
		} else {
			page = 0
		}
	}
	s.cursor = signature
	s.cursorPos = page + 1

	start := page * s.pageSize
	if start >= len(results) {
		return []core.ScoredItem{}
	}
	end := start + s.pageSize
	if end > len(results) {
		end = len(results)
	}
	return results[start:end]
}
