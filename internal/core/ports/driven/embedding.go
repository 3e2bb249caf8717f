// Package driven provides interfaces for infrastructure adapters (secondary/outbound ports).
package driven

import "context"

// EmbeddingService turns chunk text and questions into vectors.
// An index is only searchable with the model that built it, so ModelName
// is persisted next to the vectors and compared on load.
type EmbeddingService interface {
	Embed(ctx context.Context, text string) ([]float32, error)

	// EmbedBatch returns one vector per text, in input order.
	EmbedBatch(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions is the vector length. It may be 0 for models missing from
	// domain.EmbeddingDimensions until a response has been seen.
	Dimensions() int

	ModelName() string

	// Ping makes a cheap authenticated request to check the provider is reachable.
	Ping(ctx context.Context) error

	Close() error
}
