package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

func TestChatCmd_AnswersEachLine(t *testing.T) {
	env := setupTestServices(t)
	env.session.result = domain.AnswerResult{Answer: "An answer.", Citations: []string{"[1] Title: A"}}

	out, err := run(t, "first question\n\n  second question  \n", "chat")

	require.NoError(t, err)
	assert.Equal(t, []string{"first question", "second question"}, env.session.questions)
	assert.Contains(t, out, "An answer.")
	assert.NotContains(t, out, "> ")
	assert.True(t, env.session.closed)
}

func TestChatCmd_ResetAndQuit(t *testing.T) {
	env := setupTestServices(t)
	env.session.result = domain.AnswerResult{Answer: "ok"}

	out, err := run(t, "one\n/reset\ntwo\n/quit\nnever asked\n", "chat")

	require.NoError(t, err)
	assert.Equal(t, 1, env.session.resets)
	assert.Equal(t, []string{"one", "two"}, env.session.questions)
	assert.Contains(t, out, "Conversation cleared.")
}

func TestChatCmd_WritesTranscript(t *testing.T) {
	env := setupTestServices(t)
	env.session.result = domain.AnswerResult{Answer: "ok", Citations: []string{"[1] Title: A"}}
	path := filepath.Join(t.TempDir(), "transcript.json")

	_, err := run(t, "question\n/exit\n", "chat", "--transcript", path)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var messages []domain.Message
	require.NoError(t, json.Unmarshal(data, &messages))
	require.Len(t, messages, 2)
	assert.Equal(t, domain.RoleUser, messages[0].Role)
	assert.Equal(t, "question", messages[0].Content)
	assert.Equal(t, []string{"[1] Title: A"}, messages[1].Citations)
}

func TestWriteTranscript_Empty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "t.json")

	require.NoError(t, writeTranscript(path, nil))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(data))
}
