package cli

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"ask", "chat", "retrieve", "ingest", "index", "settings", "mcp", "tui", "version"} {
		assert.True(t, names[want], "missing command %s", want)
	}
}

func TestMCPServeCmd_Flags(t *testing.T) {
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("http"))
	assert.NotNil(t, mcpServeCmd.Flags().Lookup("gops"))
}

func TestCommands_WithoutServices(t *testing.T) {
	old := services
	SetServices(nil)
	t.Cleanup(func() { SetServices(old) })

	_, err := loadSettings()
	assert.ErrorIs(t, err, errNotConfigured)

	_, _, err = openSession(t.Context(), 0)
	assert.ErrorIs(t, err, errNotConfigured)
}

func TestOpenSession_SettingsError(t *testing.T) {
	env := setupTestServices(t)
	env.settings.getErr = errors.New("corrupt config")

	_, err := run(t, "", "ask", "question")

	require.Error(t, err)
	assert.Contains(t, err.Error(), "corrupt config")
	assert.Nil(t, env.opened)
}

func TestFriendly(t *testing.T) {
	t.Run("nil", func(t *testing.T) {
		assert.NoError(t, friendly(nil))
	})

	t.Run("domain errors get operator text", func(t *testing.T) {
		for _, cause := range []error{
			fmt.Errorf("wrapped: %w", domain.ErrIndexNotFound),
			fmt.Errorf("wrapped: %w", domain.ErrEmptyCorpus),
			fmt.Errorf("wrapped: %w", domain.ErrEmbeddingMismatch),
			fmt.Errorf("wrapped: %w", domain.ErrNotConfigured),
			&domain.ProviderError{Provider: "openai", Op: "chat", Kind: domain.ErrRateLimited},
		} {
			err := friendly(cause)
			assert.Equal(t, domain.UserMessage(cause), err.Error())
			assert.ErrorIs(t, err, cause)
		}
	})

	t.Run("other errors pass through", func(t *testing.T) {
		cause := errors.New("disk full")
		assert.Same(t, cause, friendly(cause))
	})
}
