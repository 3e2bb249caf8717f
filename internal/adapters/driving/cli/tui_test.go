package cli

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

func TestTUICmd_Flags(t *testing.T) {
	flag := tuiCmd.Flags().ShorthandLookup("k")
	require.NotNil(t, flag)
	assert.Equal(t, "top-k", flag.Name)
}

func TestTUICmd_MissingIndex(t *testing.T) {
	env := setupTestServices(t)
	env.openErr = fmt.Errorf("data/index/index.db: %w", domain.ErrIndexNotFound)

	_, err := run(t, "", "tui", "-k", "7")

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrIndexNotFound)
	assert.Equal(t, 7, env.opened.Pipeline.TopK)
	assert.False(t, env.session.closed)
}

func TestTUICmd_RejectsArgs(t *testing.T) {
	setupTestServices(t)

	_, err := run(t, "", "tui", "extra")

	assert.Error(t, err)
}
