package storage

import (
	"context"

	"github.com/poiesic/intellicourse/core"
)

// VectorSearcher performs nearest-neighbour search over stored embeddings.
// Implementations must be thread-safe and support concurrent access.
type VectorSearcher interface {
	// FindSimilar returns up to limit passages ordered by cosine similarity
	// to vector, highest first. Returned passages carry their stored vectors
	// so callers can re-rank them.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.ScoredPassage, error)
}

// CatalogRepository stores embedded course catalog passages.
type CatalogRepository interface {
	VectorSearcher

	// AddPassages upserts one or more passages.
	// Passages with ID=0 get a content-derived ID (core.PassageID), so
	// indexing the same chunk twice overwrites rather than duplicates.
	// Every passage is validated with core.ValidatePassage.
	// Returns the passages with IDs populated.
	AddPassages(ctx context.Context, passages ...*core.Passage) ([]*core.Passage, error)

	// GetPassage retrieves a single passage by ID.
	// Returns ErrNotFound if the passage doesn't exist.
	GetPassage(ctx context.Context, id core.ID) (*core.Passage, error)

	// DeleteSource removes every passage whose Source equals source.
	// Returns the number of passages removed.
	DeleteSource(ctx context.Context, source string) (int, error)

	// Count returns the number of stored passages.
	Count(ctx context.Context) (int, error)

	// Close releases resources held by the repository.
	Close() error
}
