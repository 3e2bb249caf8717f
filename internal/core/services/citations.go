package services

import (
	"fmt"
	"strings"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// Citation sentinels. They are returned alone and never numbered.
const (
	NoSourcesFound     = "No relevant sources found"
	IncompleteMetadata = "Sources found but citation metadata is incomplete"
)

// resolver extracts one candidate value for a citation field.
type resolver func(m domain.ChunkMetadata) string

// titleResolvers are tried in order; the first non-empty value wins.
var titleResolvers = []resolver{
	func(m domain.ChunkMetadata) string { return m.PaperTitle },
	func(m domain.ChunkMetadata) string { return domain.TitleFromPath(m.Source) },
}

func resolve(m domain.ChunkMetadata, resolvers []resolver) string {
	for _, r := range resolvers {
		if v := strings.TrimSpace(r(m)); v != "" {
			return v
		}
	}
	return ""
}

// CitationFormatter renders chunk provenance as numbered citation strings.
type CitationFormatter struct{}

// NewCitationFormatter creates a citation formatter.
func NewCitationFormatter() *CitationFormatter {
	return &CitationFormatter{}
}

// Format returns one citation per distinct source, in first-seen order.
// Empty input yields NoSourcesFound; chunks that produce no citation at
// all yield IncompleteMetadata.
func (f *CitationFormatter) Format(chunks []domain.Chunk) []string {
	if len(chunks) == 0 {
		return []string{NoSourcesFound}
	}

	seen := make(map[string]struct{}, len(chunks))
	var entries []string
	for _, c := range chunks {
		text := Citation(c.Metadata)
		if text == "" {
			continue
		}
		key := citationKey(c.Metadata)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		entries = append(entries, text)
	}

	if len(entries) == 0 {
		return []string{IncompleteMetadata}
	}

	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = fmt.Sprintf("[%d] %s", i+1, e)
	}
	return out
}

// Citation renders the metadata of one chunk without numbering.
// Missing fields are left out. Returns "" when nothing is known.
func Citation(m domain.ChunkMetadata) string {
	var parts []string

	if title := resolve(m, titleResolvers); title != "" {
		parts = append(parts, "Title: "+title)
	}
	if authors := strings.TrimSpace(m.Authors); authors != "" {
		parts = append(parts, "Authors: "+authors)
	}

	journal := strings.TrimSpace(m.Journal)
	year := strings.TrimSpace(m.Year)
	switch {
	case journal != "":
		if v := strings.TrimSpace(m.Volume); v != "" {
			journal += " " + v
		}
		if p := strings.TrimSpace(m.Pages); p != "" {
			journal += ", " + p
		}
		if year != "" {
			journal += " (" + year + ")"
		}
		parts = append(parts, "Journal: "+journal)
	case year != "":
		parts = append(parts, "Year: "+year)
	}

	if doi := strings.TrimSpace(m.DOI); doi != "" {
		parts = append(parts, "DOI: "+doi)
	}

	return strings.Join(parts, " | ")
}

// citationKey identifies the paper a chunk came from.
func citationKey(m domain.ChunkMetadata) string {
	if m.Source != "" {
		return "source:" + m.Source
	}
	return "meta:" + strings.Join([]string{
		resolve(m, titleResolvers),
		strings.TrimSpace(m.Authors),
		strings.TrimSpace(m.Journal),
	}, "|")
}
