package cli

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// Test helper functions in settings.go

func TestMaskAPIKey(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "Short key",
			input:    "abc123",
			expected: "****",
		},
		{
			name:     "Exactly 8 chars",
			input:    "12345678",
			expected: "****",
		},
		{
			name:     "Long key",
			input:    "sk-1234567890abcdef",
			expected: "sk-1...cdef",
		},
		{
			name:     "Very long key",
			input:    "sk-proj-1234567890abcdefghijklmnop",
			expected: "sk-p...mnop",
		},
		{
			name:     "Empty key",
			input:    "",
			expected: "****",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := maskAPIKey(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParseChoice(t *testing.T) {
	tests := []struct {
		name       string
		input      string
		maxVal     int
		defaultVal int
		expected   int
	}{
		{
			name:       "Empty input returns default",
			input:      "",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Valid choice within range",
			input:      "3",
			maxVal:     5,
			defaultVal: 1,
			expected:   3,
		},
		{
			name:       "Choice below minimum returns default",
			input:      "0",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Choice above maximum returns default",
			input:      "6",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Invalid input returns default",
			input:      "abc",
			maxVal:     5,
			defaultVal: 2,
			expected:   2,
		},
		{
			name:       "Negative number returns default",
			input:      "-1",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Whitespace returns default",
			input:      "   ",
			maxVal:     5,
			defaultVal: 1,
			expected:   1,
		},
		{
			name:       "Maximum value is valid",
			input:      "5",
			maxVal:     5,
			defaultVal: 1,
			expected:   5,
		},
		{
			name:       "Minimum value is valid",
			input:      "1",
			maxVal:     5,
			defaultVal: 3,
			expected:   1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := parseChoice(tt.input, tt.maxVal, tt.defaultVal)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestSettingsShow(t *testing.T) {
	setupTestServices(t)

	out, err := run(t, "", "settings", "show")

	require.NoError(t, err)
	assert.Contains(t, out, "[Embedding]")
	assert.Contains(t, out, "[LLM]")
	assert.Contains(t, out, "[Pipeline]")
	assert.Contains(t, out, "API Key: sk-e...1234")
	assert.Contains(t, out, "Top K: 5")
	assert.Contains(t, out, "Min similarity: off")
	assert.Contains(t, out, "Configuration is valid.")
}

func TestSettingsShow_InvalidWarns(t *testing.T) {
	env := setupTestServices(t)
	env.settings.validateErr = errors.New("LLM provider not configured")

	out, err := run(t, "", "settings")

	require.NoError(t, err)
	assert.Contains(t, out, "Warning: LLM provider not configured")
}

func TestSettingsLLM_Anthropic(t *testing.T) {
	env := setupTestServices(t)
	t.Setenv("ANTHROPIC_API_KEY", "")

	// Third provider, default model, then the key.
	out, err := run(t, "3\n\nsk-ant-test\n", "settings", "llm")

	require.NoError(t, err)
	defaultModel := domain.DefaultLLMModels()[domain.AIProviderAnthropic]
	assert.Equal(t, []string{"anthropic", defaultModel, "sk-ant-test"}, env.settings.llm)
	assert.Contains(t, out, "LLM provider configured: Anthropic (cloud)")
}

func TestSettingsLLM_KeyFromEnvironment(t *testing.T) {
	env := setupTestServices(t)
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	out, err := run(t, "2\ngpt-4o\n\n", "settings", "llm")

	require.NoError(t, err)
	assert.Contains(t, out, "Enter API key [$OPENAI_API_KEY]")
	assert.Equal(t, []string{"openai", "gpt-4o", ""}, env.settings.llm)
}

func TestSettingsEmbedding_MissingKey(t *testing.T) {
	env := setupTestServices(t)
	t.Setenv("OPENAI_API_KEY", "")

	_, err := run(t, "2\n\n\n", "settings", "embedding")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "API key is required")
	assert.Nil(t, env.settings.embedding)
}

func TestSettingsEmbedding_Ollama(t *testing.T) {
	env := setupTestServices(t)

	_, err := run(t, "1\n\n", "settings", "embedding")

	require.NoError(t, err)
	assert.Equal(t, []string{"ollama", "nomic-embed-text", ""}, env.settings.embedding)
}
