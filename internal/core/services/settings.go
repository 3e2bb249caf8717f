package services

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
	"github.com/custodia-labs/paperchat/internal/core/ports/driving"
)

// Ensure SettingsService implements the interface.
var _ driving.SettingsService = (*SettingsService)(nil)

// Config keys for settings storage.
//
//nolint:gosec // G101: These are config key names, not actual credentials.
const (
	keyEmbedProvider = "embedding.provider"
	keyEmbedModel    = "embedding.model"
	keyEmbedBaseURL  = "embedding.base_url"
	keyEmbedAPIKey   = "embedding.api_key"
	keyLLMProvider   = "llm.provider"
	keyLLMModel      = "llm.model"
	keyLLMBaseURL    = "llm.base_url"
	keyLLMAPIKey     = "llm.api_key"

	keyPapersDir       = "pipeline.papers_dir"
	keyIndexDir        = "pipeline.index_dir"
	keyTopK            = "pipeline.top_k"
	keyMinSimilarity   = "pipeline.min_similarity"
	keyMaxHistoryTurns = "pipeline.max_history_turns"
	keyMaxTokens       = "pipeline.max_tokens"
	keyAskTimeout      = "pipeline.ask_timeout"
	keyMaxRetries      = "pipeline.max_retries"
	keyBatchSize       = "pipeline.batch_size"
	keyChunkSize       = "pipeline.chunk_size"
	keyChunkOverlap    = "pipeline.overlap"

	keyProcessors  = "pipeline.processors"
	keySeparators  = "pipeline.separators"
	keyDeriveTitle = "pipeline.derive_title"
)


// SettingsService manages application settings.
type SettingsService struct {
	configStore driven.ConfigStore
	aiValidator driven.AIConfigValidator
}

// NewSettingsService creates a new settings service.
func NewSettingsService(configStore driven.ConfigStore, aiValidator driven.AIConfigValidator) *SettingsService {
	return &SettingsService{
		configStore: configStore,
		aiValidator: aiValidator,
	}
}

// Get retrieves current application settings.
// API keys that are not stored fall back to the provider's environment variable.
func (s *SettingsService) Get() (*domain.AppSettings, error) {
	defaults := domain.DefaultAppSettings()
	p := defaults.Pipeline

	settings := &domain.AppSettings{
		Embedding: domain.EmbeddingSettings{
			Provider: s.getProvider(keyEmbedProvider, defaults.Embedding.Provider),
			BaseURL:  s.configStore.GetString(keyEmbedBaseURL), // No default - empty is valid for cloud providers
			APIKey:   s.configStore.GetString(keyEmbedAPIKey),
		},
		LLM: domain.LLMSettings{
			Provider: s.getProvider(keyLLMProvider, defaults.LLM.Provider),
			BaseURL:  s.configStore.GetString(keyLLMBaseURL),
			APIKey:   s.configStore.GetString(keyLLMAPIKey),
		},
		Pipeline: domain.PipelineSettings{
			PapersDir:       s.getString(keyPapersDir, p.PapersDir),
			IndexDir:        s.getString(keyIndexDir, p.IndexDir),
			TopK:            s.getInt(keyTopK, p.TopK),
			MinSimilarity:   s.configStore.GetFloat(keyMinSimilarity),
			MaxHistoryTurns: s.getInt(keyMaxHistoryTurns, p.MaxHistoryTurns),
			MaxTokens:       s.getNonNegative(keyMaxTokens, p.MaxTokens),
			AskTimeout:      s.getDuration(keyAskTimeout, p.AskTimeout),
			MaxRetries:      s.getNonNegative(keyMaxRetries, p.MaxRetries),
			BatchSize:       s.getInt(keyBatchSize, p.BatchSize),
			ChunkSize:       s.getInt(keyChunkSize, p.ChunkSize),
			ChunkOverlap:    s.getNonNegative(keyChunkOverlap, p.ChunkOverlap),
		},
	}

	settings.Embedding.Model = s.getString(keyEmbedModel, domain.DefaultEmbeddingModels()[settings.Embedding.Provider])
	settings.LLM.Model = s.getString(keyLLMModel, domain.DefaultLLMModels()[settings.LLM.Provider])

	if settings.Embedding.APIKey == "" {
		settings.Embedding.APIKey = envAPIKey(settings.Embedding.Provider)
	}
	if settings.LLM.APIKey == "" {
		settings.LLM.APIKey = envAPIKey(settings.LLM.Provider)
	}

	return settings, nil
}

func envAPIKey(provider domain.AIProvider) string {
	if name := provider.APIKeyEnv(); name != "" {
		return os.Getenv(name)
	}
	return ""
}

// Save persists application settings.
// API keys are only written when set, so environment keys never leak into the file.
func (s *SettingsService) Save(settings *domain.AppSettings) error {
	values := []struct {
		key   string
		value any
	}{
		{keyEmbedProvider, settings.Embedding.Provider.String()},
		{keyEmbedModel, settings.Embedding.Model},
		{keyEmbedBaseURL, settings.Embedding.BaseURL},
		{keyLLMProvider, settings.LLM.Provider.String()},
		{keyLLMModel, settings.LLM.Model},
		{keyLLMBaseURL, settings.LLM.BaseURL},
		{keyPapersDir, settings.Pipeline.PapersDir},
		{keyIndexDir, settings.Pipeline.IndexDir},
		{keyTopK, settings.Pipeline.TopK},
		{keyMinSimilarity, settings.Pipeline.MinSimilarity},
		{keyMaxHistoryTurns, settings.Pipeline.MaxHistoryTurns},
		{keyMaxTokens, settings.Pipeline.MaxTokens},
		{keyAskTimeout, settings.Pipeline.AskTimeout.String()},
		{keyMaxRetries, settings.Pipeline.MaxRetries},
		{keyBatchSize, settings.Pipeline.BatchSize},
		{keyChunkSize, settings.Pipeline.ChunkSize},
		{keyChunkOverlap, settings.Pipeline.ChunkOverlap},
	}
	for _, v := range values {
		if err := s.configStore.Set(v.key, v.value); err != nil {
			return fmt.Errorf("save %s: %w", v.key, err)
		}
	}

	if settings.Embedding.APIKey != "" && settings.Embedding.APIKey != envAPIKey(settings.Embedding.Provider) {
		if err := s.configStore.Set(keyEmbedAPIKey, settings.Embedding.APIKey); err != nil {
			return fmt.Errorf("save embedding api_key: %w", err)
		}
	}
	if settings.LLM.APIKey != "" && settings.LLM.APIKey != envAPIKey(settings.LLM.Provider) {
		if err := s.configStore.Set(keyLLMAPIKey, settings.LLM.APIKey); err != nil {
			return fmt.Errorf("save llm api_key: %w", err)
		}
	}

	return nil
}

// SetEmbeddingProvider configures the embedding provider.
// Changing the embedding model invalidates the existing index.
func (s *SettingsService) SetEmbeddingProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid embedding provider %q: %w", provider, domain.ErrInvalidInput)
	}

	valid := false
	for _, p := range domain.AllEmbeddingProviders() {
		if p == provider {
			valid = true
			break
		}
	}
	if !valid {
		return fmt.Errorf("provider %s does not support embeddings: %w", provider, domain.ErrInvalidInput)
	}

	if apiKey == "" {
		apiKey = envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s: %w", provider, domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.Embedding.Provider = provider
	settings.Embedding.Model = modelOrDefault(model, domain.DefaultEmbeddingModels()[provider])
	settings.Embedding.BaseURL = baseURLFor(provider, settings.Embedding.BaseURL)
	settings.Embedding.APIKey = apiKey

	return s.Save(settings)
}

// SetLLMProvider configures the LLM provider.
func (s *SettingsService) SetLLMProvider(provider domain.AIProvider, model, apiKey string) error {
	if !provider.IsValid() {
		return fmt.Errorf("invalid LLM provider %q: %w", provider, domain.ErrInvalidInput)
	}

	if apiKey == "" {
		apiKey = envAPIKey(provider)
	}
	if provider.RequiresAPIKey() && apiKey == "" {
		return fmt.Errorf("API key required for %s: %w", provider, domain.ErrInvalidInput)
	}

	settings, err := s.Get()
	if err != nil {
		return err
	}

	settings.LLM.Provider = provider
	settings.LLM.Model = modelOrDefault(model, domain.DefaultLLMModels()[provider])
	settings.LLM.BaseURL = baseURLFor(provider, settings.LLM.BaseURL)
	settings.LLM.APIKey = apiKey

	return s.Save(settings)
}

func modelOrDefault(model, def string) string {
	if model != "" {
		return model
	}
	return def
}

// baseURLFor keeps a local provider's URL and clears it for cloud providers.
func baseURLFor(provider domain.AIProvider, current string) string {
	if !provider.IsLocal() {
		return ""
	}
	if current == "" {
		return "http://localhost:11434"
	}
	return current
}

// Validate checks that both providers are configured and the pipeline
// settings are usable.
func (s *SettingsService) Validate() error {
	settings, err := s.Get()
	if err != nil {
		return err
	}

	var errs []error
	if !settings.Embedding.IsConfigured() {
		errs = append(errs, fmt.Errorf("embedding provider %s: %w", settings.Embedding.Provider, domain.ErrNotConfigured))
	}
	if !settings.LLM.IsConfigured() {
		errs = append(errs, fmt.Errorf("llm provider %s: %w", settings.LLM.Provider, domain.ErrNotConfigured))
	}
	p := settings.Pipeline
	if p.TopK < 1 {
		errs = append(errs, fmt.Errorf("top_k must be at least 1: %w", domain.ErrInvalidInput))
	}
	if p.ChunkOverlap >= p.ChunkSize {
		errs = append(errs, fmt.Errorf("overlap %d must be smaller than chunk_size %d: %w",
			p.ChunkOverlap, p.ChunkSize, domain.ErrInvalidInput))
	}
	if p.MinSimilarity < -1 || p.MinSimilarity > 1 {
		errs = append(errs, fmt.Errorf("min_similarity must be within [-1, 1]: %w", domain.ErrInvalidInput))
	}
	return errors.Join(errs...)
}

// ValidateEmbeddingConfig validates the current embedding configuration by pinging the provider.
func (s *SettingsService) ValidateEmbeddingConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateEmbedding(&settings.Embedding)
}

// ValidateLLMConfig validates the current LLM configuration by pinging the provider.
func (s *SettingsService) ValidateLLMConfig() error {
	if s.aiValidator == nil {
		return nil
	}
	settings, err := s.Get()
	if err != nil {
		return err
	}
	return s.aiValidator.ValidateLLM(&settings.LLM)
}

// PostProcessing returns the post-processor chain used at ingestion.
// Chunk size and overlap come from p; the processor list, chunk
// separators and title derivation may be overridden in [pipeline].
func (s *SettingsService) PostProcessing(p domain.PipelineSettings) domain.PipelineConfig {
	cfg := domain.DefaultPipelineConfig()
	if names := s.configStore.GetStringSlice(keyProcessors); len(names) > 0 {
		cfg.Processors = names
	}

	chunker := map[string]any{
		"chunk_size": p.ChunkSize,
		"overlap":    p.ChunkOverlap,
	}
	if seps := s.configStore.GetStringSlice(keySeparators); len(seps) > 0 {
		chunker["separators"] = seps
	}
	cfg.ProcessorConfigs["chunker"] = chunker

	if _, ok := s.configStore.Get(keyDeriveTitle); ok {
		cfg.ProcessorConfigs["metadata"] = map[string]any{
			"derive_title": s.configStore.GetBool(keyDeriveTitle),
		}
	}
	return cfg
}

// Helper methods for reading config with defaults.

func (s *SettingsService) getString(key, defaultVal string) string {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	return val
}

func (s *SettingsService) getInt(key string, defaultVal int) int {
	val := s.configStore.GetInt(key)
	if val <= 0 {
		return defaultVal
	}
	return val
}

// getNonNegative treats an explicit zero as a real value.
func (s *SettingsService) getNonNegative(key string, defaultVal int) int {
	if _, ok := s.configStore.Get(key); !ok {
		return defaultVal
	}
	val := s.configStore.GetInt(key)
	if val < 0 {
		return defaultVal
	}
	return val
}

// getDuration accepts a Go duration string ("45s") or a number of seconds.
func (s *SettingsService) getDuration(key string, defaultVal time.Duration) time.Duration {
	if str := s.configStore.GetString(key); str != "" {
		d, err := time.ParseDuration(str)
		if err != nil || d <= 0 {
			return defaultVal
		}
		return d
	}
	if secs := s.configStore.GetInt(key); secs > 0 {
		return time.Duration(secs) * time.Second
	}
	return defaultVal
}

func (s *SettingsService) getProvider(key string, defaultVal domain.AIProvider) domain.AIProvider {
	val := s.configStore.GetString(key)
	if val == "" {
		return defaultVal
	}
	provider := domain.AIProvider(val)
	if !provider.IsValid() {
		return defaultVal
	}
	return provider
}
