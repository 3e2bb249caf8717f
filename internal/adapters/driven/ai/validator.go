package ai

import (
	"fmt"
	"slices"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
)

var _ driven.AIConfigValidator = (*ConfigValidator)(nil)

// ConfigValidator checks provider settings before the settings command saves them.
type ConfigValidator struct{}

// NewConfigValidator creates a validator.
func NewConfigValidator() *ConfigValidator {
	return &ConfigValidator{}
}

// ValidateEmbedding rejects providers without an embeddings API, then
// pings the configured one.
func (v *ConfigValidator) ValidateEmbedding(config *domain.EmbeddingSettings) error {
	if config != nil && config.Provider.IsValid() &&
		!slices.Contains(domain.AllEmbeddingProviders(), config.Provider) {
		return fmt.Errorf("%s cannot embed text: %w", config.Provider.Description(), domain.ErrInvalidInput)
	}
	return ValidateEmbeddingConfig(config)
}

// ValidateLLM pings the configured chat provider.
func (v *ConfigValidator) ValidateLLM(config *domain.LLMSettings) error {
	return ValidateLLMConfig(config)
}
