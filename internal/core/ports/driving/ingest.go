package driving

import (
	"context"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// IngestService builds the persisted index from a directory of papers.
type IngestService interface {
	// Ingest loads, chunks and embeds every paper under dir and replaces the index.
	// Returns domain.ErrEmptyCorpus when nothing could be indexed.
	Ingest(ctx context.Context, dir string) (*domain.IngestReport, error)

	// Info describes the current persisted index.
	// Returns domain.ErrIndexNotFound when no index has been built.
	Info(ctx context.Context) (domain.IndexInfo, error)

	// Watch rebuilds the index whenever papers under dir change, until ctx is done.
	// onRebuild receives the outcome of every rebuild.
	// Returns domain.ErrNotConfigured when no watcher is available.
	Watch(ctx context.Context, dir string, onRebuild func(*domain.IngestReport, error)) error
}
