// Package cli provides the paperchat command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperchat/internal/core/domain"
	"github.com/custodia-labs/paperchat/internal/core/ports/driving"
	"github.com/custodia-labs/paperchat/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Session is a conversation over the persisted index.
type Session interface {
	driving.Pipeline
	Close() error
}

// Services holds the collaborators the commands use.
// main builds them; tests replace them with fakes.
type Services struct {
	// Settings reads and writes the configuration.
	Settings driving.SettingsService

	// OpenSession opens a conversation over the persisted index.
	OpenSession func(ctx context.Context, settings *domain.AppSettings) (Session, error)

	// NewIngest builds an ingest service. progress may be nil.
	NewIngest func(settings *domain.AppSettings, progress func(done, total int)) (driving.IngestService, error)

	// IndexInfo describes the persisted index without contacting any provider.
	IndexInfo func(ctx context.Context, settings *domain.AppSettings) (domain.IndexInfo, error)

	// Metrics is served on /metrics by `mcp serve --http`. Optional.
	Metrics http.Handler
}

var (
	services        *Services
	settingsService driving.SettingsService
	verbose         bool
)

// SetServices installs the command collaborators.
func SetServices(s *Services) {
	services = s
	if s != nil {
		settingsService = s.Settings
	} else {
		settingsService = nil
	}
}

var errNotConfigured = errors.New("services not configured")

var rootCmd = &cobra.Command{
	Use:   "paperchat",
	Short: "Ask questions about a collection of research papers",
	Long: `paperchat indexes a directory of PDF papers and answers questions about
them with a language model, citing the papers each answer draws on.

Get started:
  paperchat settings          # check providers and API keys
  paperchat ingest            # index the PDFs in data/papers
  paperchat ask "What metabolomic changes occur during bovine oocyte maturation?"
  paperchat chat              # multi-turn conversation`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "print pipeline details to stderr")
}

// ExecuteContext runs the root command with ctx, which commands observe
// for cancellation.
func ExecuteContext(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

// loadSettings returns the current settings.
func loadSettings() (*domain.AppSettings, error) {
	if services == nil || settingsService == nil {
		return nil, errNotConfigured
	}
	return settingsService.Get()
}

// openSession loads the settings and opens a conversation.
// A zero topK keeps pipeline.top_k.
func openSession(ctx context.Context, topK int) (Session, *domain.AppSettings, error) {
	if topK < 0 {
		return nil, nil, fmt.Errorf("--top-k must be a positive number of passages, got %d: %w", topK, domain.ErrInvalidInput)
	}
	settings, err := loadSettings()
	if err != nil {
		return nil, nil, err
	}
	if services.OpenSession == nil {
		return nil, nil, errNotConfigured
	}
	if topK > 0 {
		settings.Pipeline.TopK = topK
	}

	session, err := services.OpenSession(ctx, settings)
	if err != nil {
		return nil, nil, friendly(err)
	}
	return session, settings, nil
}

// userError shows the operator-facing message while keeping the cause.
type userError struct {
	err error
}

func (e *userError) Error() string { return domain.UserMessage(e.err) }
func (e *userError) Unwrap() error { return e.err }

// friendly wraps errors from the domain taxonomy in operator-facing text.
func friendly(err error) error {
	if err == nil {
		return nil
	}
	for _, target := range []error{
		domain.ErrIndexNotFound,
		domain.ErrEmptyCorpus,
		domain.ErrEmbeddingMismatch,
		domain.ErrNotConfigured,
		domain.ErrProvider,
	} {
		if errors.Is(err, target) {
			return &userError{err: err}
		}
	}
	return err
}
