package chunker

import (
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

func TestNew(t *testing.T) {
	t.Run("default values", func(t *testing.T) {
		p := New()
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected chunkSize %d, got %d", DefaultChunkSize, p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected overlap %d, got %d", DefaultChunkOverlap, p.overlap)
		}
	})

	t.Run("custom chunk size", func(t *testing.T) {
		p := New(WithChunkSize(500))
		if p.chunkSize != 500 {
			t.Errorf("expected chunkSize 500, got %d", p.chunkSize)
		}
	})

	t.Run("overlap exceeds chunk size", func(t *testing.T) {
		p := New(WithChunkSize(100), WithOverlap(150))
		if p.overlap >= p.chunkSize {
			t.Error("overlap should be reduced when it exceeds chunk size")
		}
	})

	t.Run("zero values ignored", func(t *testing.T) {
		p := New(WithChunkSize(0), WithOverlap(-1), WithSeparators())
		if p.chunkSize != DefaultChunkSize {
			t.Errorf("expected default chunkSize, got %d", p.chunkSize)
		}
		if p.overlap != DefaultChunkOverlap {
			t.Errorf("expected default overlap, got %d", p.overlap)
		}
		if len(p.separators) != len(DefaultSeparators) {
			t.Errorf("expected default separators, got %d", len(p.separators))
		}
	})
}

func TestProcessor_Name(t *testing.T) {
	if New().Name() != "chunker" {
		t.Errorf("expected name 'chunker', got '%s'", New().Name())
	}
}

func TestProcessor_Process_NoPages(t *testing.T) {
	doc := &domain.Document{ID: "doc", Path: "a.pdf"}

	chunks, err := New().Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 0 {
		t.Errorf("expected 0 chunks, got %d", len(chunks))
	}
}

func TestProcessor_Process_SkipsBlankPages(t *testing.T) {
	doc := &domain.Document{
		ID:   "doc",
		Path: "papers/a.pdf",
		Pages: []domain.Page{
			{Number: 1, Text: "   \n  "},
			{Number: 2, Text: "Short page."},
		},
	}

	chunks, err := New().Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) != 1 {
		t.Fatalf("expected 1 chunk, got %d", len(chunks))
	}
	c := chunks[0]
	if c.Content != "Short page." {
		t.Errorf("unexpected content %q", c.Content)
	}
	if c.Metadata.Source != "papers/a.pdf" || c.Metadata.Page != 2 {
		t.Errorf("unexpected metadata %+v", c.Metadata)
	}
	if c.DocumentID != "doc" || c.ID == "" {
		t.Errorf("unexpected ids: doc=%q id=%q", c.DocumentID, c.ID)
	}
}

func TestProcessor_Process_PositionsAcrossPages(t *testing.T) {
	long := strings.Repeat("Oocytes mature in follicles. ", 80)
	doc := &domain.Document{
		ID:   "doc",
		Path: "p.pdf",
		Pages: []domain.Page{
			{Number: 1, Text: long},
			{Number: 2, Text: long},
		},
	}

	chunks, err := New().Process(context.Background(), doc, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(chunks) < 4 {
		t.Fatalf("expected several chunks, got %d", len(chunks))
	}

	lastPage := 0
	for i, c := range chunks {
		if c.Position != i {
			t.Errorf("chunk %d has position %d", i, c.Position)
		}
		if c.Metadata.Page < lastPage {
			t.Errorf("page order regressed at chunk %d", i)
		}
		lastPage = c.Metadata.Page
	}
}

func TestProcessor_Process_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	doc := &domain.Document{Pages: []domain.Page{{Number: 1, Text: "text"}}}
	if _, err := New().Process(ctx, doc, nil); err == nil {
		t.Error("expected error for cancelled context")
	}
}

// reconstruct joins chunks with the overlapping prefix of each removed.
func reconstruct(t *testing.T, text []rune, spans []Span) string {
	t.Helper()
	var b strings.Builder
	prevEnd := 0
	for i, s := range spans {
		if i > 0 && s.Start > prevEnd {
			t.Fatalf("gap between span %d and %d", i-1, i)
		}
		b.WriteString(string(text[prevEnd:s.End]))
		prevEnd = s.End
	}
	return b.String()
}

func TestSpans_ReconstructsText(t *testing.T) {
	texts := map[string]string{
		"paragraphs": strings.Repeat("Metabolomic profiling of bovine oocytes.\n\nCumulus cells supply pyruvate. ", 60),
		"no spaces":  strings.Repeat("x", 2500),
		"unicode":    strings.Repeat("Zona pellucida – glycoproteins ZP2 and ZP3 bind sperm. ", 70),
		"short":      "A single sentence.",
	}

	p := New()
	for name, text := range texts {
		t.Run(name, func(t *testing.T) {
			runes := []rune(text)
			spans := p.Spans(runes)
			if got := reconstruct(t, runes, spans); got != text {
				t.Errorf("reconstruction mismatch: got %d runes, want %d", utf8.RuneCountInString(got), len(runes))
			}
		})
	}
}

func TestSpans_RespectsSizeAndOverlap(t *testing.T) {
	text := []rune(strings.Repeat("The germinal vesicle breaks down before metaphase II arrest. ", 100))
	p := New(WithChunkSize(300), WithOverlap(60))

	spans := p.Spans(text)
	if len(spans) < 2 {
		t.Fatalf("expected multiple spans, got %d", len(spans))
	}

	for i, s := range spans {
		if s.End-s.Start > 300 {
			t.Errorf("span %d length %d exceeds chunk size", i, s.End-s.Start)
		}
		if i == 0 {
			continue
		}
		shared := spans[i-1].End - s.Start
		if shared > 60 {
			t.Errorf("span %d shares %d runes, more than the overlap", i, shared)
		}
		// Word alignment can only shorten the overlap by one word.
		if shared < 60-20 {
			t.Errorf("span %d shares only %d runes", i, shared)
		}
	}
}

func TestSpans_PrefersParagraphBoundary(t *testing.T) {
	para := strings.Repeat("word ", 30) // 150 runes
	text := []rune(para + "\n\n" + para + "\n\n" + para)
	p := New(WithChunkSize(200), WithOverlap(0))

	spans := p.Spans(text)
	first := string(text[spans[0].Start:spans[0].End])
	if !strings.HasSuffix(first, "\n\n") {
		t.Errorf("expected first chunk to end at paragraph break, got %q", first[len(first)-10:])
	}
}

func TestSpans_PrefersSentenceOverWord(t *testing.T) {
	text := []rune(strings.Repeat("alpha beta gamma delta. ", 20))
	p := New(WithChunkSize(100), WithOverlap(0))

	spans := p.Spans(text)
	for _, s := range spans[:len(spans)-1] {
		chunk := string(text[s.Start:s.End])
		if !strings.HasSuffix(chunk, ". ") {
			t.Errorf("expected sentence boundary, got %q", chunk)
		}
	}
}

func TestSpans_OverlapStartsOnWord(t *testing.T) {
	text := []rune(strings.Repeat("granulosa theca stroma ", 100))
	p := New(WithChunkSize(200), WithOverlap(50))

	spans := p.Spans(text)
	for i, s := range spans[1:] {
		if s.Start > 0 && text[s.Start-1] != ' ' {
			t.Errorf("span %d starts mid-word at %d", i+1, s.Start)
		}
	}
}

func TestSpans_Empty(t *testing.T) {
	if spans := New().Spans(nil); spans != nil {
		t.Errorf("expected nil spans, got %v", spans)
	}
}
