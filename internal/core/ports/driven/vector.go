package driven

import (
	"context"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// VectorIndex provides semantic similarity search over embedding records.
type VectorIndex interface {
	// Add appends records. Insertion order is kept for tie-breaking.
	Add(ctx context.Context, records ...domain.EmbeddingRecord) error

	// Search returns at most k records by descending cosine similarity.
	// Equal scores keep insertion order. An empty index yields no hits.
	Search(ctx context.Context, query []float32, k int) ([]VectorHit, error)

	// Len returns the number of records held.
	Len() int

	// Close releases resources.
	Close() error
}

// VectorHit represents a similarity search result.
type VectorHit struct {
	// Record is the matched embedding record.
	Record domain.EmbeddingRecord

	// Similarity is the cosine similarity score (-1 to 1).
	Similarity float64
}

// IndexStore persists embedding records and reopens them for search.
type IndexStore interface {
	// Build replaces any index at path with the given records.
	// A failed build leaves the previous index, if any, untouched.
	Build(ctx context.Context, path string, records []domain.EmbeddingRecord, info domain.IndexInfo) error

	// Load reopens the index at path.
	// Returns domain.ErrIndexNotFound when nothing has been built there.
	Load(ctx context.Context, path string) (VectorIndex, domain.IndexInfo, error)
}
