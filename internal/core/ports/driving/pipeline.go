package driving

import (
	"context"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// Pipeline answers questions over the indexed papers.
// One Pipeline holds one conversation.
type Pipeline interface {
	// Ask answers a question. It never returns an error; failures
	// produce a degraded result with an explanation and no citations.
	Ask(ctx context.Context, question string) domain.AnswerResult

	// Retrieve returns the k most similar chunks without calling the language model.
	Retrieve(ctx context.Context, query string, k int) (domain.RetrievedSet, error)

	// History returns the remembered turns, oldest first.
	History() []domain.Turn

	// Transcript returns the session transcript, oldest first.
	Transcript() []domain.Message

	// Reset forgets the conversation.
	Reset()

	// Info describes the loaded index.
	Info() domain.IndexInfo
}
