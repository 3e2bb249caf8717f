// Package driven defines the interfaces that core calls OUT to infrastructure.
//
// These are the "driven" or "secondary" ports in hexagonal architecture.
// Core services depend on these interfaces, and infrastructure adapters
// implement them.
//
// # Required Interfaces
//
//   - DocumentLoader: Scans the corpus directory and extracts page text
//   - PostProcessor: Transforms documents into chunks
//   - EmbeddingService: Generates vector embeddings
//   - IndexStore: Persists embedding records and reloads them
//   - VectorIndex: Nearest-neighbour search over loaded records
//   - LLMService: Chat completion for answer synthesis
//   - ConfigStore: Application configuration
//   - PromptStore: Editable prompt templates
//
// # Import Rules
//
//   - Can Import: domain package only
//   - Cannot Import: Any adapter or post-processor package
package driven
