package postprocessors

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// mockProcessor is a test processor that returns predefined chunks.
type mockProcessor struct {
	name   string
	chunks []domain.Chunk
	err    error
}

func (m *mockProcessor) Name() string {
	return m.name
}

func (m *mockProcessor) Process(_ context.Context, _ *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if m.err != nil {
		return nil, m.err
	}
	if m.chunks != nil {
		return m.chunks, nil
	}
	return chunks, nil
}

func testDoc() *domain.Document {
	return &domain.Document{
		ID:    "test-doc",
		Path:  "papers/test-doc.pdf",
		Pages: []domain.Page{{Number: 1, Text: "test content"}},
	}
}

func TestNewPipeline(t *testing.T) {
	p := NewPipeline()
	if p == nil {
		t.Fatal("expected non-nil pipeline")
	}
	if p.Len() != 0 {
		t.Errorf("expected 0 processors, got %d", p.Len())
	}

	p.Add(&mockProcessor{name: "test"})
	if p.Len() != 1 {
		t.Errorf("expected 1 processor, got %d", p.Len())
	}
}

func TestPipeline_Process_NilDocument(t *testing.T) {
	_, err := NewPipeline().Process(context.Background(), nil)
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPipeline_Process_EmptyPipeline(t *testing.T) {
	chunks, err := NewPipeline().Process(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if chunks != nil {
		t.Errorf("expected nil chunks from empty pipeline, got %v", chunks)
	}
}

func TestPipeline_Process_MultipleProcessors(t *testing.T) {
	secondChunks := []domain.Chunk{
		{ID: "chunk-1", Content: "modified"},
		{ID: "chunk-2", Content: "added"},
	}

	p := NewPipeline(
		&mockProcessor{name: "first", chunks: []domain.Chunk{{ID: "chunk-1", Content: "first"}}},
		&mockProcessor{name: "second", chunks: secondChunks},
		&mockProcessor{name: "passthrough"},
	)

	chunks, err := p.Process(context.Background(), testDoc())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != len(secondChunks) {
		t.Errorf("expected %d chunks, got %d", len(secondChunks), len(chunks))
	}
}

func TestPipeline_Process_ProcessorError(t *testing.T) {
	expectedErr := errors.New("processor failed")
	p := NewPipeline(&mockProcessor{name: "failing", err: expectedErr})

	_, err := p.Process(context.Background(), testDoc())
	if !errors.Is(err, expectedErr) {
		t.Errorf("expected wrapped error, got: %v", err)
	}
	if err != nil && !strings.Contains(err.Error(), "failing") {
		t.Errorf("expected processor name in error, got: %v", err)
	}
}

func TestPipeline_ProcessAll_NoDocuments(t *testing.T) {
	_, err := NewDefaultPipeline(0, -1).ProcessAll(context.Background(), nil)
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestPipeline_ProcessAll_NoChunks(t *testing.T) {
	docs := []domain.Document{
		{ID: "a", Path: "a.pdf", Pages: []domain.Page{{Number: 1, Text: "   "}}},
		{ID: "b", Path: "b.pdf"},
	}

	_, err := NewDefaultPipeline(0, -1).ProcessAll(context.Background(), docs)
	if !errors.Is(err, domain.ErrEmptyCorpus) {
		t.Errorf("expected ErrEmptyCorpus, got %v", err)
	}
}

func TestPipeline_ProcessAll_DefaultPipeline(t *testing.T) {
	docs := []domain.Document{
		{ID: "a", Path: "papers/uhde-2018.pdf", Pages: []domain.Page{{Number: 1, Text: strings.Repeat("Lipid metabolism shifts during maturation. ", 60)}}},
		{ID: "b", Path: "papers/other_paper.pdf", Pages: []domain.Page{{Number: 4, Text: "One short page."}}},
	}

	chunks, err := NewDefaultPipeline(0, -1).ProcessAll(context.Background(), docs)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 3 {
		t.Fatalf("expected at least 3 chunks, got %d", len(chunks))
	}

	for _, c := range chunks {
		if len([]rune(c.Content)) > domain.DefaultChunkSize {
			t.Errorf("chunk exceeds maximum size: %d", len([]rune(c.Content)))
		}
		switch c.DocumentID {
		case "a":
			if c.Metadata.PaperTitle != "Uhde 2018" || c.Metadata.Source != "papers/uhde-2018.pdf" {
				t.Errorf("unexpected metadata %+v", c.Metadata)
			}
		case "b":
			if c.Metadata.PaperTitle != "Other Paper" || c.Metadata.Page != 4 {
				t.Errorf("unexpected metadata %+v", c.Metadata)
			}
		}
	}
}
