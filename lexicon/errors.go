package lexicon

import "errors"

var (
	// ErrNotBuilt is returned when BestMatch is called before Build.
	ErrNotBuilt = errors.New("lexicon has not been built")

	// ErrInvalidMaxAttempts is returned when maxAttempts is <= 0
	ErrInvalidMaxAttempts = errors.New("maxAttempts must be greater than 0")
)
