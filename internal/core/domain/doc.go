// Package domain defines the core business entities for paperchat.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: A source paper with its extracted pages
//   - Chunk: A bounded text segment, the unit of embedding and retrieval
//   - EmbeddingRecord: A chunk paired with its vector
//   - RetrievedChunk: A chunk matched to a query with its similarity
//   - AnswerResult: The answer and citations returned to callers
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
