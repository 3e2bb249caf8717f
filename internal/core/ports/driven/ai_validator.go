package driven

import "github.com/custodia-labs/paperchat/internal/core/domain"

// AIConfigValidator checks provider settings by contacting the provider.
// Settings that are not configured yet are accepted.
type AIConfigValidator interface {
	// ValidateEmbedding checks that the provider can embed text and answers a ping.
	ValidateEmbedding(config *domain.EmbeddingSettings) error

	// ValidateLLM checks that the chat provider answers a ping.
	ValidateLLM(config *domain.LLMSettings) error
}
