package mcp

import (
	"context"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// mockPipeline is a mock implementation of driving.Pipeline.
type mockPipeline struct {
	result     domain.AnswerResult
	retrieved  domain.RetrievedSet
	err        error
	history    []domain.Turn
	transcript []domain.Message
	info       domain.IndexInfo

	asked  []string
	lastK  int
	resets int
}

func (m *mockPipeline) Ask(_ context.Context, question string) domain.AnswerResult {
	m.asked = append(m.asked, question)
	return m.result
}

func (m *mockPipeline) Retrieve(_ context.Context, _ string, k int) (domain.RetrievedSet, error) {
	m.lastK = k
	return m.retrieved, m.err
}

func (m *mockPipeline) History() []domain.Turn { return m.history }

func (m *mockPipeline) Transcript() []domain.Message { return m.transcript }

func (m *mockPipeline) Reset() {
	m.resets++
	m.history = nil
	m.transcript = nil
}

func (m *mockPipeline) Info() domain.IndexInfo { return m.info }
