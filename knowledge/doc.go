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


// Package knowledge holds the static food ontology and all natural-language
// to structured mappings used by the search engine.
//
// It provides:
//
//   - Tokenization and normalization of item names and query strings
//     (MakeTokens, NormalizeKey, NormalizeNutrientKey), including stop-word
//     removal and a small stemming-exception table for irregular plurals.
//   - Phrase dictionaries mapping user and catalog spellings to nutrient
//     types, diet tags and allergens, with alias expansion for allergens
//     ("dairy", "cheese" and "lactose" all resolve to milk).
//   - BestNutrientMatch, the longest-contiguous-key lookup that resolves
//     ambiguous phrases like "beef vitamin c" to vitamin C rather than a
//     false match on "beef".
//   - ClassifySubject, the single authoritative classifier used by the query
//     parser. Precedence is pH, then nutrient, then diet, then allergen;
//     pH goes first because "acid" and "base" are ordinary English words
//     that would otherwise be misparsed.
//   - Operator phrase tables ("at least", "no more than"), comparative
//     adjectives ("less", "high"), negation terms ("no", "without", "free")
//     and suffix negations ("sugar-free").
//   - Ingredient-to-diet inference, so "no eggs" excludes items lacking the
//     egg-free diet tag instead of merely items named "egg".
//   - Display names and unit auto-scaling for rendering nutrient values.
//
// The ontology is static: every map is populated at package init and never
// mutated, so all lookups are safe for concurrent use.
package knowledge
