package services

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driven"
	"github.com/custodia-labs/paperchat/internal/core/ports/driving"
	"github.com/custodia-labs/paperchat/internal/logger"
)

// Ensure IngestService implements the interface.
var _ driving.IngestService = (*IngestService)(nil)

// Chunker turns loaded documents into chunks.
type Chunker interface {
	ProcessAll(ctx context.Context, docs []domain.Document) ([]domain.Chunk, error)
}

// IngestConfig holds the collaborators of an IngestService.
type IngestConfig struct {
	Loader    driven.DocumentLoader
	Chunker   Chunker
	Embedder  driven.EmbeddingService
	Store     driven.IndexStore
	IndexPath string

	// BatchSize is the number of chunks sent per embedding call.
	BatchSize int

	// Limiter throttles embedding calls. Nil means unthrottled.
	Limiter *rate.Limiter

	// Fingerprint derives a corpus identifier from document checksums.
	Fingerprint func(checksums []string) string

	// Progress is called after every embedded batch.
	Progress func(done, total int)

	// Watcher reports paper changes for Watch. Nil disables watching.
	Watcher driven.PaperWatcher

	// Debounce is how long changes must settle before a rebuild.
	Debounce time.Duration
}

// IngestService builds the persisted index from a directory of papers.
type IngestService struct {
	cfg IngestConfig
}

// NewIngestService creates an ingest service.
func NewIngestService(cfg IngestConfig) *IngestService {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = domain.DefaultBatchSize
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = domain.DefaultWatchDebounce
	}
	return &IngestService{cfg: cfg}
}

// Ingest loads, chunks and embeds every paper under dir, then replaces the
// index. The previous index is left untouched if any step fails.
func (s *IngestService) Ingest(ctx context.Context, dir string) (*domain.IngestReport, error) {
	start := time.Now()
	logger.Section("Ingest")

	docs, err := s.cfg.Loader.Load(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("load papers: %w", err)
	}
	logger.Debug("loaded %d documents from %s", len(docs), dir)

	chunks, err := s.cfg.Chunker.ProcessAll(ctx, docs)
	if err != nil {
		return nil, err
	}
	logger.Debug("split into %d chunks", len(chunks))
	if len(chunks) == 0 {
		return nil, fmt.Errorf("no text in %d documents under %s: %w", len(docs), dir, domain.ErrEmptyCorpus)
	}

	records, err := s.embed(ctx, chunks)
	if err != nil {
		return nil, err
	}

	info := domain.IndexInfo{
		Path:           s.cfg.IndexPath,
		EmbeddingModel: s.cfg.Embedder.ModelName(),
		Dimensions:     len(records[0].Embedding),
		Records:        len(records),
		Documents:      len(docs),
		BuiltAt:        time.Now().UTC().Truncate(time.Second),
	}
	if s.cfg.Fingerprint != nil {
		checksums := make([]string, len(docs))
		for i, d := range docs {
			checksums[i] = d.Checksum
		}
		info.Fingerprint = s.cfg.Fingerprint(checksums)
	}

	if err := s.cfg.Store.Build(ctx, s.cfg.IndexPath, records, info); err != nil {
		return nil, fmt.Errorf("build index: %w", err)
	}
	logger.Info("indexed %d chunks from %d documents into %s", len(records), len(docs), s.cfg.IndexPath)

	pages := 0
	for _, d := range docs {
		for _, p := range d.Pages {
			if p.Text != "" {
				pages++
			}
		}
	}

	return &domain.IngestReport{
		Documents: len(docs),
		Pages:     pages,
		Chunks:    len(records),
		Index:     info,
		Duration:  time.Since(start),
	}, nil
}

// embed embeds chunks in batches, preserving chunk order.
func (s *IngestService) embed(ctx context.Context, chunks []domain.Chunk) ([]domain.EmbeddingRecord, error) {
	records := make([]domain.EmbeddingRecord, 0, len(chunks))

	for start := 0; start < len(chunks); start += s.cfg.BatchSize {
		end := min(start+s.cfg.BatchSize, len(chunks))
		batch := chunks[start:end]

		if s.cfg.Limiter != nil {
			if err := s.cfg.Limiter.Wait(ctx); err != nil {
				return nil, err
			}
		}

		texts := make([]string, len(batch))
		for i, c := range batch {
			texts[i] = c.Content
		}

		vecs, err := s.cfg.Embedder.EmbedBatch(ctx, texts)
		if err != nil {
			return nil, fmt.Errorf("embed chunks %d-%d: %w", start, end-1, err)
		}
		if len(vecs) != len(batch) {
			return nil, fmt.Errorf("embed chunks %d-%d: got %d vectors: %w",
				start, end-1, len(vecs), domain.ErrMalformedResponse)
		}

		for i, c := range batch {
			records = append(records, domain.EmbeddingRecord{Chunk: c, Embedding: vecs[i]})
		}
		logger.Debug("embedded %d/%d chunks", end, len(chunks))
		if s.cfg.Progress != nil {
			s.cfg.Progress(end, len(chunks))
		}
	}

	return records, nil
}

// Info describes the current persisted index.
func (s *IngestService) Info(ctx context.Context) (domain.IndexInfo, error) {
	idx, info, err := s.cfg.Store.Load(ctx, s.cfg.IndexPath)
	if err != nil {
		return info, err
	}
	idx.Close()
	return info, nil
}

// Watch rebuilds the index each time papers under dir change, until ctx
// is done. A burst of changes produces one rebuild once it has been quiet
// for the configured debounce. A failed rebuild is reported to onRebuild
// and watching continues.
func (s *IngestService) Watch(ctx context.Context, dir string, onRebuild func(*domain.IngestReport, error)) error {
	if s.cfg.Watcher == nil {
		return fmt.Errorf("paper watcher: %w", domain.ErrNotConfigured)
	}

	changes, err := s.cfg.Watcher.Watch(ctx, dir)
	if err != nil {
		return fmt.Errorf("watch papers: %w", err)
	}
	logger.Info("watching %s for changes", dir)

	var (
		timer   *time.Timer
		fire    <-chan time.Time
		pending int
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return nil

		case change, ok := <-changes:
			if !ok {
				return nil
			}
			logger.Debug("%s %s", change.Type, change.Path)
			pending++
			if timer != nil {
				timer.Stop()
			}
			timer = time.NewTimer(s.cfg.Debounce)
			fire = timer.C

		case <-fire:
			fire = nil
			logger.Info("%d paper changes, rebuilding index", pending)
			pending = 0

			report, err := s.Ingest(ctx, dir)
			if err != nil && ctx.Err() != nil {
				return nil
			}
			if onRebuild != nil {
				onRebuild(report, err)
			}
		}
	}
}
