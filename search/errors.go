package search

import "errors"

var (
	// ErrStoreRequired is returned when a Searcher is constructed without
	// an index store.
	ErrStoreRequired = errors.New("index store is required")

	// ErrInvalidPageSize is returned for non-positive page sizes.
	ErrInvalidPageSize = errors.New("page size must be positive")
)
