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


// Package index maintains the in-memory search index over the food catalog.
//
// The index is a derived view: every structure in it can be rebuilt from the
// authoritative catalog at any time. It holds one CompactItem per catalog
// item, an inverted token index for lexical matching, per-nutrient
// descending density rankings, a global max-density table, and the set of
// diet tags seen across the catalog.
//
// # Lifecycle
//
// The Store loads itself once from the persisted cache snapshot. A snapshot
// is usable only if its schema version matches, its checksum verifies, and
// its item count is within a small tolerance of the live catalog count;
// anything else falls back to a full rebuild. Rebuilds parallelize
// compact-item construction across a worker pool and fold the results
// serially.
//
// Incremental mutations (update, remove, favorite toggle) adjust the compact
// items and the inverted index in place. The ranking and max-density tables
// are intentionally NOT refreshed incrementally: they go stale until the
// next full rebuild. Callers must treat rankings as hints, not ground truth.
//
// Every mutation schedules a debounced background persist. Persisting
// serializes a snapshot taken under the read lock, then writes outside the
// lock, so the next round of mutations never waits on disk. A failed persist
// is logged and dropped; the in-memory index stays usable and durability
// catches up on the next successful save.
package index
