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


// Package search parses free-text food queries and executes them against
// the index.
//
// A query like "high protein breakfast without nuts" decomposes into a
// structured plan: a nutrient emphasis (protein), an allergen exclusion
// (tree nuts), and plain lexical tokens ("breakfast"). The parser resolves
// each term with a strict precedence: literal operator symbols first, then
// operator phrases ("at least"), comparative adjectives ("high"), the
// knowledge-base subject classifier, the semantic lexicon as a last resort,
// and finally plain lexical tokens for anything unresolved.
//
// The engine intersects lexical and semantic candidates with every
// structured constraint, orders results deterministically, and paginates
// with a cursor keyed to the query+filter signature. Unparseable terms are
// never an error: they degrade to lexical tokens and search returns a
// possibly empty list.
package search
