package retrieval

import "errors"

var (
	// ErrInvalidArgument indicates a caller error such as a non-positive limit.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrNotFound indicates the referenced node does not exist in the store.
	ErrNotFound = errors.New("not found")
	// ErrStoreUnavailable indicates the backing store could not be reached.
	// Store reads failing with this error are retried once before giving up.
	ErrStoreUnavailable = errors.New("store unavailable")
	// ErrEmbeddingUnavailable indicates the embedding backend failed.
	// Retrieval cannot proceed without a query vector, so this is fatal.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")
	// ErrDimensionMismatch indicates a vector whose dimension differs from
	// the configured embedding dimension.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
