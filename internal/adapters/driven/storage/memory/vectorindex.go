package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
)

// Ensure VectorIndex implements the interface.
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex is a brute-force cosine similarity index.
// Corpora of a few dozen papers fit comfortably in memory, and an exact
// scan keeps results reproducible across reloads.
type VectorIndex struct {
	mu         sync.RWMutex
	dimensions int
	records    []domain.EmbeddingRecord
	norms      []float64
}

// NewVectorIndex creates an empty index. A dimensions value of zero
// is fixed by the first record added.
func NewVectorIndex(dimensions int) *VectorIndex {
	return &VectorIndex{dimensions: dimensions}
}

// Add appends records in order.
func (v *VectorIndex) Add(ctx context.Context, records ...domain.EmbeddingRecord) error {
	v.mu.Lock()
	defer v.mu.Unlock()

	for _, r := range records {
		if err := ctx.Err(); err != nil {
			return err
		}
		if len(r.Embedding) == 0 {
			return fmt.Errorf("chunk %s has no embedding: %w", r.Chunk.ID, domain.ErrInvalidInput)
		}
		if !domain.FiniteVector(r.Embedding) {
			return fmt.Errorf("chunk %s has a non-finite embedding value: %w", r.Chunk.ID, domain.ErrInvalidInput)
		}
		if v.dimensions == 0 {
			v.dimensions = len(r.Embedding)
		}
		if len(r.Embedding) != v.dimensions {
			return fmt.Errorf("chunk %s has %d dimensions, index has %d: %w",
				r.Chunk.ID, len(r.Embedding), v.dimensions, domain.ErrEmbeddingMismatch)
		}
		v.records = append(v.records, r)
		v.norms = append(v.norms, norm(r.Embedding))
	}
	return nil
}

// Search scores every record against query and returns the best k.
// Equal scores keep insertion order.
func (v *VectorIndex) Search(ctx context.Context, query []float32, k int) ([]driven.VectorHit, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidInput)
	}

	v.mu.RLock()
	defer v.mu.RUnlock()

	if len(v.records) == 0 {
		return nil, nil
	}
	if len(query) != v.dimensions {
		return nil, fmt.Errorf("query has %d dimensions, index has %d: %w",
			len(query), v.dimensions, domain.ErrEmbeddingMismatch)
	}
	if !domain.FiniteVector(query) {
		return nil, fmt.Errorf("query has a non-finite embedding value: %w", domain.ErrInvalidInput)
	}

	qn := norm(query)
	hits := make([]driven.VectorHit, len(v.records))
	for i, r := range v.records {
		if i%1024 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		hits[i] = driven.VectorHit{
			Record:     r,
			Similarity: cosine(query, r.Embedding, qn, v.norms[i]),
		}
	}

	// NaN scores sort last.
	sort.SliceStable(hits, func(i, j int) bool {
		a, b := hits[i].Similarity, hits[j].Similarity
		if math.IsNaN(b) {
			return !math.IsNaN(a)
		}
		return a > b
	})

	if k < len(hits) {
		hits = hits[:k]
	}
	return hits, nil
}

// Len returns the number of records.
func (v *VectorIndex) Len() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return len(v.records)
}

// Dimensions returns the vector size, or zero while empty.
func (v *VectorIndex) Dimensions() int {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.dimensions
}

// Close releases the records.
func (v *VectorIndex) Close() error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.records = nil
	v.norms = nil
	return nil
}

func norm(vec []float32) float64 {
	var sum float64
	for _, x := range vec {
		sum += float64(x) * float64(x)
	}
	return math.Sqrt(sum)
}

func cosine(a, b []float32, na, nb float64) float64 {
	if na == 0 || nb == 0 {
		return 0
	}
	var dot float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
	}
	return dot / (na * nb)
}
