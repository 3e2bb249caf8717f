// Command paperchat answers questions about a directory of research papers.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/time/rate"

	"github.com/custodia-labs/paperchat/internal/adapters/driven/ai"
	"github.com/custodia-labs/paperchat/internal/adapters/driven/config/file"
	"github.com/custodia-labs/paperchat/internal/adapters/driven/loader/pdf"
	"github.com/custodia-labs/paperchat/internal/adapters/driven/metrics"
	"github.com/custodia-labs/paperchat/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/paperchat/internal/adapters/driving/cli"
	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driving"
	"github.com/custodia-labs/paperchat/internal/core/services"
	"github.com/custodia-labs/paperchat/internal/logger"
	"github.com/custodia-labs/paperchat/internal/postprocessors"
)

// Embedding batches per second during ingestion.
const embedRate = 5

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// A missing .env is fine; keys may come from the shell or config.toml.
	_ = godotenv.Load()

	home, err := file.HomeDir()
	if err != nil {
		return fmt.Errorf("locating config directory: %w", err)
	}
	store, err := file.NewConfigStore(home)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	prompts, err := file.NewPromptStore(filepath.Join(home, "prompts"))
	if err != nil {
		return fmt.Errorf("loading prompts: %w", err)
	}

	settingsService := services.NewSettingsService(store, ai.NewConfigValidator())
	prom := metrics.NewPrometheus()
	index := sqlite.NewStore()

	registry := postprocessors.NewRegistry()
	postprocessors.RegisterDefaults(registry)

	cli.SetServices(&cli.Services{
		Settings: settingsService,
		Metrics:  prom.Handler(),

		OpenSession: func(ctx context.Context, s *domain.AppSettings) (cli.Session, error) {
			providers, err := ai.CreateServices(s)
			if err != nil {
				return nil, err
			}
			logger.Debug("embedding %s/%s, llm %s/%s",
				s.Embedding.Provider, s.Embedding.Model, s.LLM.Provider, s.LLM.Model)

			pipeline, err := services.OpenPipeline(ctx, services.PipelineConfig{
				Store:           index,
				IndexPath:       sqlite.DefaultPath(s.Pipeline.IndexDir),
				Embedder:        providers.Embedding,
				LLM:             providers.LLM,
				Prompts:         prompts,
				Metrics:         prom,
				TopK:            s.Pipeline.TopK,
				MinSimilarity:   s.Pipeline.MinSimilarity,
				MaxHistoryTurns: s.Pipeline.MaxHistoryTurns,
				MaxTokens:       s.Pipeline.MaxTokens,
				AskTimeout:      s.Pipeline.AskTimeout,
			})
			if err != nil {
				providers.Close()
				return nil, err
			}
			return &session{PipelineService: pipeline, providers: providers}, nil
		},

		NewIngest: func(s *domain.AppSettings, progress func(done, total int)) (driving.IngestService, error) {
			chunker, err := registry.BuildPipeline(settingsService.PostProcessing(s.Pipeline))
			if err != nil {
				return nil, fmt.Errorf("building post-processors: %w", err)
			}
			embedder, err := ai.CreateEmbeddingService(&s.Embedding, s.Pipeline.MaxRetries)
			if err != nil {
				return nil, err
			}
			return services.NewIngestService(services.IngestConfig{
				Loader:      pdf.NewLoader(pdf.WithRecursive(true)),
				Chunker:     chunker,
				Embedder:    embedder,
				Store:       index,
				IndexPath:   sqlite.DefaultPath(s.Pipeline.IndexDir),
				BatchSize:   s.Pipeline.BatchSize,
				Limiter:     rate.NewLimiter(embedRate, 1),
				Fingerprint: pdf.Fingerprint,
				Progress:    progress,
				Watcher:     pdf.NewWatcher(),
			}), nil
		},

		IndexInfo: func(ctx context.Context, s *domain.AppSettings) (domain.IndexInfo, error) {
			return services.NewIngestService(services.IngestConfig{
				Store:     index,
				IndexPath: sqlite.DefaultPath(s.Pipeline.IndexDir),
			}).Info(ctx)
		},
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return cli.ExecuteContext(ctx)
}

// session closes the provider clients along with the pipeline.
type session struct {
	*services.PipelineService
	providers *ai.Services
}

func (s *session) Close() error {
	err := s.PipelineService.Close()
	s.providers.Close()
	return err
}
