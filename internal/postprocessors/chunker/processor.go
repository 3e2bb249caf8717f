// Package chunker provides a boundary-aware text chunking processor.
package chunker

import (
	"context"
	"strings"
	"unicode"

	"github.com/google/uuid"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// DefaultChunkSize is the default number of characters per chunk.
const DefaultChunkSize = domain.DefaultChunkSize

// DefaultChunkOverlap is the default number of overlapping characters.
const DefaultChunkOverlap = domain.DefaultChunkOverlap

// DefaultSeparators are tried in order: paragraph, line, sentence, word.
// A hard cut is used when none of them fits.
var DefaultSeparators = []string{"\n\n", "\n", ". ", "? ", "! ", " "}

// Processor splits page text into overlapping chunks, preferring
// paragraph, then sentence, then word boundaries.
// It implements the PostProcessor interface.
type Processor struct {
	chunkSize  int
	overlap    int
	separators [][]rune
}

// Option configures the chunker processor.
type Option func(*Processor)

// WithChunkSize sets the chunk size in characters.
func WithChunkSize(size int) Option {
	return func(p *Processor) {
		if size > 0 {
			p.chunkSize = size
		}
	}
}

// WithOverlap sets the overlap between chunks in characters.
func WithOverlap(overlap int) Option {
	return func(p *Processor) {
		if overlap >= 0 {
			p.overlap = overlap
		}
	}
}

// WithSeparators replaces the separator priority list.
func WithSeparators(seps ...string) Option {
	return func(p *Processor) {
		if len(seps) == 0 {
			return
		}
		p.separators = toRunes(seps)
	}
}

// New creates a new chunker processor with the given options.
func New(opts ...Option) *Processor {
	p := &Processor{
		chunkSize:  DefaultChunkSize,
		overlap:    DefaultChunkOverlap,
		separators: toRunes(DefaultSeparators),
	}

	for _, opt := range opts {
		opt(p)
	}

	// Ensure overlap doesn't exceed chunk size
	if p.overlap >= p.chunkSize {
		p.overlap = p.chunkSize / 4
	}

	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "chunker"
}

// Process splits each page of the document into chunks.
// Input chunks are ignored; this processor creates new chunks from page text.
// Positions run across the whole document in reading order.
func (p *Processor) Process(ctx context.Context, doc *domain.Document, _ []domain.Chunk) ([]domain.Chunk, error) {
	var chunks []domain.Chunk
	position := 0

	for _, page := range doc.Pages {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if strings.TrimSpace(page.Text) == "" {
			continue
		}

		text := []rune(page.Text)
		for _, s := range p.Spans(text) {
			chunks = append(chunks, domain.Chunk{
				ID:         uuid.New().String(),
				DocumentID: doc.ID,
				Content:    string(text[s.Start:s.End]),
				Position:   position,
				Start:      s.Start,
				End:        s.End,
				Metadata: domain.ChunkMetadata{
					Source: doc.Path,
					Page:   page.Number,
				},
			})
			position++
		}
	}

	return chunks, nil
}

// Span is a half-open rune range [Start, End).
type Span struct {
	Start int
	End   int
}

// Spans computes chunk boundaries for text.
// Every span is at most chunkSize runes, and each span after the first
// starts no later than the previous span's end.
func (p *Processor) Spans(text []rune) []Span {
	n := len(text)
	if n == 0 {
		return nil
	}

	estimated := n/(p.chunkSize-p.overlap) + 1
	spans := make([]Span, 0, estimated)

	start := 0
	for start < n {
		end := start + p.chunkSize
		if end >= n {
			end = n
		} else {
			end = p.breakPoint(text, start, end)
		}
		spans = append(spans, Span{Start: start, End: end})
		if end == n {
			break
		}

		next := end - p.overlap
		if next <= start {
			next = start + 1
		}
		start = alignToWord(text, next, end)
	}

	return spans
}

// breakPoint returns the best end for a window [start, limit).
// Separators are tried in priority order; a break is only accepted in the
// second half of the window so chunks don't collapse to slivers.
func (p *Processor) breakPoint(text []rune, start, limit int) int {
	floor := start + p.chunkSize/2
	for _, sep := range p.separators {
		if idx := lastIndex(text, sep, floor, limit); idx >= 0 {
			return idx + len(sep)
		}
	}
	return limit
}

// lastIndex finds the last occurrence of sep that starts at or after floor
// and ends at or before limit. Returns -1 if there is none.
func lastIndex(text, sep []rune, floor, limit int) int {
	for i := limit - len(sep); i >= floor; i-- {
		if hasPrefixAt(text, sep, i) {
			return i
		}
	}
	return -1
}

func hasPrefixAt(text, sep []rune, i int) bool {
	if i < 0 || i+len(sep) > len(text) {
		return false
	}
	for j, r := range sep {
		if text[i+j] != r {
			return false
		}
	}
	return true
}

// alignToWord moves pos forward to the start of the next word so overlaps
// don't begin mid-word. It never moves past limit; if no word boundary
// exists before limit, pos is returned unchanged.
func alignToWord(text []rune, pos, limit int) int {
	if pos == 0 || unicode.IsSpace(text[pos-1]) {
		return pos
	}
	for i := pos; i < limit; i++ {
		if unicode.IsSpace(text[i]) {
			return i + 1
		}
	}
	return pos
}

func toRunes(seps []string) [][]rune {
	out := make([][]rune, 0, len(seps))
	for _, s := range seps {
		if s != "" {
			out = append(out, []rune(s))
		}
	}
	return out
}
