package driving

import "github.com/custodia-labs/paperchat/internal/core/domain"

// SettingsService reads and updates the provider and pipeline settings
// stored in the user's config file. Environment API keys are merged in by Get.
type SettingsService interface {
	Get() (*domain.AppSettings, error)
	Save(settings *domain.AppSettings) error

	// SetEmbeddingProvider switches the embedding provider. An empty model
	// selects the provider's default. Existing indexes must be rebuilt afterwards.
	SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error

	// SetLLMProvider switches the chat provider. An empty model selects the
	// provider's default.
	SetLLMProvider(provider domain.AIProvider, model, apiKey string) error

	// Validate reports every missing provider setting and out-of-range pipeline value.
	Validate() error

	// ValidateEmbeddingConfig contacts the embedding provider with the saved settings.
	ValidateEmbeddingConfig() error

	// ValidateLLMConfig contacts the chat provider with the saved settings.
	ValidateLLMConfig() error
}
