package pdf

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// sidecarExtensions are checked in order; the first file found wins.
var sidecarExtensions = []string{".toml", ".yaml", ".yml"}

// sidecar accepts numbers or strings for the numeric-looking fields.
type sidecar struct {
	Title   string `toml:"title" yaml:"title"`
	Authors any    `toml:"authors" yaml:"authors"`
	Journal string `toml:"journal" yaml:"journal"`
	Year    any    `toml:"year" yaml:"year"`
	Volume  any    `toml:"volume" yaml:"volume"`
	Pages   any    `toml:"pages" yaml:"pages"`
	DOI     string `toml:"doi" yaml:"doi"`
}

func (s sidecar) metadata() domain.PaperMetadata {
	return domain.PaperMetadata{
		Title:   strings.TrimSpace(s.Title),
		Authors: text(s.Authors),
		Journal: strings.TrimSpace(s.Journal),
		Year:    text(s.Year),
		Volume:  text(s.Volume),
		Pages:   text(s.Pages),
		DOI:     strings.TrimSpace(s.DOI),
	}
}

// text renders scalars as strings and author lists joined with commas.
func text(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(t)
	case []any:
		parts := make([]string, 0, len(t))
		for _, item := range t {
			if s := text(item); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, ", ")
	default:
		return fmt.Sprint(t)
	}
}

// readSidecar loads bibliographic metadata stored next to pdfPath.
// A missing sidecar is not an error and yields zero metadata.
func readSidecar(pdfPath string) (domain.PaperMetadata, string, error) {
	stem := strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath))

	for _, ext := range sidecarExtensions {
		path := stem + ext
		data, err := os.ReadFile(path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return domain.PaperMetadata{}, path, fmt.Errorf("reading %s: %w", path, err)
		}

		var sc sidecar
		if ext == ".toml" {
			err = toml.Unmarshal(data, &sc)
		} else {
			err = yaml.Unmarshal(data, &sc)
		}
		if err != nil {
			return domain.PaperMetadata{}, path, fmt.Errorf("parsing %s: %w", path, err)
		}
		return sc.metadata(), path, nil
	}
	return domain.PaperMetadata{}, "", nil
}
