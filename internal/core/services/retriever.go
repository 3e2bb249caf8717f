package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
	"github.com/custodia-labs/paperchat/internal/logger"
)

// Retriever finds the indexed chunks closest to a query.
type Retriever struct {
	embedder      driven.EmbeddingService
	index         driven.VectorIndex
	minSimilarity float64
}

// NewRetriever creates a retriever over index.
// The embedder must be the model the index was built with.
// Hits scoring below minSimilarity are dropped; zero disables the filter.
func NewRetriever(embedder driven.EmbeddingService, index driven.VectorIndex, minSimilarity float64) *Retriever {
	return &Retriever{
		embedder:      embedder,
		index:         index,
		minSimilarity: minSimilarity,
	}
}

// Retrieve returns at most k chunks by descending similarity to text.
// An empty index, or one with nothing above the threshold, yields an
// empty set rather than an error.
func (r *Retriever) Retrieve(ctx context.Context, text string, k int) (domain.RetrievedSet, error) {
	logger.Section("Retrieve")

	if k <= 0 {
		return nil, fmt.Errorf("k must be positive, got %d: %w", k, domain.ErrInvalidInput)
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty query: %w", domain.ErrInvalidInput)
	}
	if r.index.Len() == 0 {
		logger.Debug("index is empty")
		return domain.RetrievedSet{}, nil
	}

	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits, err := r.index.Search(ctx, vec, k)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}

	set := make(domain.RetrievedSet, 0, len(hits))
	for _, h := range hits {
		if r.minSimilarity > 0 && h.Similarity < r.minSimilarity {
			continue
		}
		set = append(set, domain.RetrievedChunk{
			Chunk: h.Record.Chunk,
			Score: h.Similarity,
			Rank:  len(set) + 1,
		})
		logger.Debug("  [%d] %.4f %s p.%d", len(set), h.Similarity, h.Record.Chunk.Metadata.Source, h.Record.Chunk.Metadata.Page)
	}
	logger.Debug("retrieved %d of %d hits", len(set), len(hits))

	return set, nil
}
