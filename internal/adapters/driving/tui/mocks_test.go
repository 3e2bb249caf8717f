package tui

import (
	"context"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driving"
)

var _ driving.Pipeline = (*mockPipeline)(nil)

// mockPipeline answers every question with a fixed result.
type mockPipeline struct {
	result    domain.AnswerResult
	questions []string
	resets    int
}

func (m *mockPipeline) Ask(_ context.Context, question string) domain.AnswerResult {
	m.questions = append(m.questions, question)
	return m.result
}

func (m *mockPipeline) Retrieve(_ context.Context, _ string, _ int) (domain.RetrievedSet, error) {
	return domain.RetrievedSet{}, nil
}

func (m *mockPipeline) History() []domain.Turn { return nil }

func (m *mockPipeline) Transcript() []domain.Message { return nil }

func (m *mockPipeline) Reset() { m.resets++ }

func (m *mockPipeline) Info() domain.IndexInfo {
	return domain.IndexInfo{Records: 42, Documents: 3}
}
