package domain

import (
	"math"
	"path/filepath"
	"strings"
	"unicode"
)

// Document represents a source paper loaded from the corpus directory.
// Documents are read-only once loaded.
type Document struct {
	// ID is the unique identifier for the document.
	ID string

	// Path is the file path the document was loaded from.
	Path string

	// Title is the human-readable title, if known.
	Title string

	// PageCount is the number of pages in the source file.
	PageCount int

	// Pages holds the extracted text of each page in reading order.
	Pages []Page

	// Metadata holds bibliographic fields supplied alongside the file.
	Metadata PaperMetadata

	// Checksum is a content hash of the source file.
	Checksum string
}

// Page is the extracted text of a single page.
type Page struct {
	// Number is the 1-based page number.
	Number int

	// Text is the plain text content of the page.
	Text string
}

// Text returns the full document text with pages separated by blank lines.
func (d Document) Text() string {
	parts := make([]string, 0, len(d.Pages))
	for _, p := range d.Pages {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n\n")
}

// PaperMetadata holds optional bibliographic fields for a paper.
type PaperMetadata struct {
	Title   string `json:"title,omitempty"`
	Authors string `json:"authors,omitempty"`
	Journal string `json:"journal,omitempty"`
	Year    string `json:"year,omitempty"`
	Volume  string `json:"volume,omitempty"`
	Pages   string `json:"pages,omitempty"`
	DOI     string `json:"doi,omitempty"`
}

// Chunk represents a contiguous text segment of one document.
// Chunks are immutable once created.
type Chunk struct {
	// ID is the unique identifier for the chunk.
	ID string

	// DocumentID links to the parent Document.
	DocumentID string

	// Content is the text content of this chunk.
	Content string

	// Position is the ordinal position within the document.
	Position int

	// Start and End are rune offsets of Content within its page text.
	Start int
	End   int

	// Metadata carries the provenance used for citations.
	Metadata ChunkMetadata
}

// ChunkMetadata is the provenance attached to every chunk.
// Source is always set; every other field is optional.
type ChunkMetadata struct {
	Source     string `json:"source"`
	Page       int    `json:"page,omitempty"`
	PaperTitle string `json:"paper_title,omitempty"`
	Authors    string `json:"authors,omitempty"`
	Journal    string `json:"journal,omitempty"`
	Year       string `json:"year,omitempty"`
	Volume     string `json:"volume,omitempty"`
	Pages      string `json:"pages,omitempty"`
	DOI        string `json:"doi,omitempty"`
}

// EmbeddingRecord pairs a chunk with its vector embedding.
// Records are owned by the index and never mutated after insertion.
type EmbeddingRecord struct {
	Chunk     Chunk
	Embedding []float32
}

// FiniteVector reports whether every component of vec is a finite number.
func FiniteVector(vec []float32) bool {
	for _, x := range vec {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}

// TitleFromPath derives a display title from a file name.
// The extension is dropped, underscores and hyphens become spaces and
// each word is title-cased: "uhde-2018.pdf" becomes "Uhde 2018".
func TitleFromPath(path string) string {
	if path == "" {
		return ""
	}
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	base = strings.NewReplacer("_", " ", "-", " ").Replace(base)

	words := strings.Fields(base)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
