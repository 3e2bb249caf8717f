package pdf

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// ExtractFunc returns the pages of the PDF at path, numbered from 1.
type ExtractFunc func(path string) ([]domain.Page, error)

// ExtractPages reads the text layer of every page.
// Pages whose text cannot be decoded are returned empty rather than failing the file.
func ExtractPages(path string) (pages []domain.Page, err error) {
	f, r, err := pdf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	// The reader panics on some malformed object streams.
	defer func() {
		if rec := recover(); rec != nil {
			pages = nil
			err = fmt.Errorf("reading pdf: %v", rec)
		}
	}()

	n := r.NumPage()
	pages = make([]domain.Page, 0, n)
	for i := 1; i <= n; i++ {
		page := domain.Page{Number: i}
		p := r.Page(i)
		if !p.V.IsNull() {
			if text, err := p.GetPlainText(nil); err == nil {
				page.Text = normaliseText(text)
			}
		}
		pages = append(pages, page)
	}
	return pages, nil
}

// normaliseText trims trailing spaces on each line and removes NUL bytes
// some producers emit between glyphs.
func normaliseText(s string) string {
	s = strings.ReplaceAll(s, "\x00", "")
	lines := strings.Split(s, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimRight(l, " \t\r")
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
