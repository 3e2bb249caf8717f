// Package metadata attaches citation provenance to chunks.
package metadata

import (
	"context"
	"strings"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// Processor copies the document's bibliographic fields onto each chunk,
// derives a paper title from the file name when none is known, and drops
// chunks with no visible text. Positions are renumbered afterwards.
// It implements the PostProcessor interface.
type Processor struct {
	deriveTitle bool
}

// Option configures the metadata processor.
type Option func(*Processor)

// WithDerivedTitle controls whether a title is derived from the file name
// when the document carries none. Enabled by default.
func WithDerivedTitle(enabled bool) Option {
	return func(p *Processor) {
		p.deriveTitle = enabled
	}
}

// New creates a new metadata processor.
func New(opts ...Option) *Processor {
	p := &Processor{deriveTitle: true}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name returns the processor name.
func (p *Processor) Name() string {
	return "metadata"
}

// Process enriches chunks produced by an earlier processor.
func (p *Processor) Process(_ context.Context, doc *domain.Document, chunks []domain.Chunk) ([]domain.Chunk, error) {
	if len(chunks) == 0 {
		return chunks, nil
	}

	title := firstNonEmpty(doc.Metadata.Title, doc.Title)
	if title == "" && p.deriveTitle {
		title = domain.TitleFromPath(doc.Path)
	}

	out := make([]domain.Chunk, 0, len(chunks))
	for _, c := range chunks {
		if strings.TrimSpace(c.Content) == "" {
			continue
		}

		md := c.Metadata
		if md.Source == "" {
			md.Source = doc.Path
		}
		md.PaperTitle = firstNonEmpty(md.PaperTitle, title)
		md.Authors = firstNonEmpty(md.Authors, doc.Metadata.Authors)
		md.Journal = firstNonEmpty(md.Journal, doc.Metadata.Journal)
		md.Year = firstNonEmpty(md.Year, doc.Metadata.Year)
		md.Volume = firstNonEmpty(md.Volume, doc.Metadata.Volume)
		md.Pages = firstNonEmpty(md.Pages, doc.Metadata.Pages)
		md.DOI = firstNonEmpty(md.DOI, doc.Metadata.DOI)

		c.Metadata = md
		c.Position = len(out)
		out = append(out, c)
	}

	return out, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}
