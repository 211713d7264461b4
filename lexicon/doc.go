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


// Package lexicon implements semantic fallback matching for query terms.
//
// The knowledge package resolves query terms by exact dictionary lookup.
// When a term misses every table ("ascorbate", "sodium chloride"), the
// lexicon offers a last resort: every literal phrase across the nutrient,
// diet, allergen and operator tables is embedded once at startup, and an
// unresolved query phrase is embedded on demand and matched against the
// stored vectors by cosine similarity. A match below the minimum score is
// treated as no match at all, so the fallback never outranks the exact
// paths it backs up.
//
// Building the lexicon is the only expensive step: phrases are embedded in
// batches with exponential-backoff retry, and phrases the model returns no
// vector for are skipped silently. The table is partial by design.
package lexicon
