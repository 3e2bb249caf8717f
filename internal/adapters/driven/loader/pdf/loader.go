package pdf

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
	"github.com/custodia-labs/paperchat/internal/logger"
)

// Verify interface compliance.
var _ driven.DocumentLoader = (*Loader)(nil)

// Loader scans a directory tree for *.pdf files.
type Loader struct {
	extract   ExtractFunc
	recursive bool
}

// Option configures the loader.
type Option func(*Loader)

// WithExtractor replaces the page extractor.
func WithExtractor(fn ExtractFunc) Option {
	return func(l *Loader) {
		if fn != nil {
			l.extract = fn
		}
	}
}

// WithRecursive controls whether subdirectories are scanned. Enabled by default.
func WithRecursive(recursive bool) Option {
	return func(l *Loader) {
		l.recursive = recursive
	}
}

// NewLoader creates a PDF loader.
func NewLoader(opts ...Option) *Loader {
	l := &Loader{extract: ExtractPages, recursive: true}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Find lists PDF files under dir in lexical order.
// A missing directory is reported with an error wrapping fs.ErrNotExist.
func (l *Loader) Find(dir string) ([]string, error) {
	st, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("papers directory: %w", err)
	}
	if !st.IsDir() {
		return nil, fmt.Errorf("papers directory %s is not a directory: %w", dir, domain.ErrInvalidInput)
	}

	var paths []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != dir && (!l.recursive || strings.HasPrefix(d.Name(), ".")) {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning %s: %w", dir, err)
	}

	sort.Strings(paths)
	return paths, nil
}

// Load extracts every PDF under dir.
// Files that cannot be read are skipped with a warning so one broken
// paper does not abort ingestion.
func (l *Loader) Load(ctx context.Context, dir string) ([]domain.Document, error) {
	paths, err := l.Find(dir)
	if err != nil {
		return nil, err
	}

	docs := make([]domain.Document, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		doc, err := l.loadOne(path)
		if err != nil {
			logger.Warn("skipping %s: %v", path, err)
			continue
		}
		logger.Debug("loaded %s (%d pages)", path, doc.PageCount)
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (l *Loader) loadOne(path string) (*domain.Document, error) {
	pages, err := l.extract(path)
	if err != nil {
		return nil, err
	}

	checksum, err := Checksum(path)
	if err != nil {
		return nil, fmt.Errorf("hashing: %w", err)
	}

	md, sidecarPath, err := readSidecar(path)
	if err != nil {
		logger.Warn("ignoring metadata for %s: %v", path, err)
	} else if sidecarPath != "" {
		logger.Debug("metadata for %s from %s", path, sidecarPath)
	}

	return &domain.Document{
		ID:        uuid.NewSHA1(uuid.NameSpaceURL, []byte(filepath.ToSlash(path))).String(),
		Path:      path,
		Title:     md.Title,
		PageCount: len(pages),
		Pages:     pages,
		Metadata:  md,
		Checksum:  checksum,
	}, nil
}
