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


package index

import "errors"

var (
	// ErrCatalogRepositoryRequired is returned when a catalog repository is not provided.
	ErrCatalogRepositoryRequired = errors.New("catalog repository required")

	// ErrCacheRepositoryRequired is returned when a cache repository is not provided.
	ErrCacheRepositoryRequired = errors.New("cache repository required")

	// ErrSnapshotChecksum indicates a cache payload that fails checksum verification.
	ErrSnapshotChecksum = errors.New("snapshot checksum mismatch")

	// ErrSnapshotVersion indicates a cache record from a different schema version.
	ErrSnapshotVersion = errors.New("snapshot version mismatch")
)
