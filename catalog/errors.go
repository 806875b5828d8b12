package catalog

import "errors"

var (
	// ErrSearcherRequired is returned when a vector searcher is not provided.
	ErrSearcherRequired = errors.New("vector searcher required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrInvalidTopK is returned for a non-positive top-K.
	ErrInvalidTopK = errors.New("top-k must be positive")

	// ErrInvalidFetchK is returned for a non-positive candidate pool size.
	ErrInvalidFetchK = errors.New("fetch-k must be positive")

	// ErrInvalidLambda is returned for a diversity weight outside [0, 1].
	ErrInvalidLambda = errors.New("lambda must be between 0 and 1")
)
