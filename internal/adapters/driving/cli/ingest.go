package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

var ingestCmd = &cobra.Command{
	Use:   "ingest [dir]",
	Short: "Index the PDF papers in a directory",
	Long: `Reads every PDF under the papers directory (recursively), splits the text
into overlapping chunks, embeds them and replaces the index.

The directory defaults to pipeline.papers_dir (data/papers). Bibliographic
details can be supplied in a sidecar file next to each PDF, for example
uhde-2018.toml or uhde-2018.yaml with title, authors, journal, year,
volume, pages and doi.

With --watch the command keeps running after the first build and rebuilds
the index whenever a PDF or sidecar file is added, changed or removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIngest,
}

var ingestWatch bool

func init() {
	ingestCmd.Flags().BoolVarP(&ingestWatch, "watch", "w", false, "keep running and re-index when papers change")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if services.NewIngest == nil {
		return errNotConfigured
	}

	dir := settings.Pipeline.PapersDir
	if len(args) == 1 {
		dir = args[0]
	}

	created, err := ensureDir(dir)
	if err != nil {
		return err
	}
	if created {
		cmd.Printf("Created %s.\n", dir)
		if !ingestWatch {
			cmd.Println("Add your PDF papers to it and run 'paperchat ingest' again.")
			return fmt.Errorf("no papers in %s: %w", dir, domain.ErrEmptyCorpus)
		}
	}

	var progress func(done, total int)
	if isTerminal(os.Stderr) {
		progress = func(done, total int) {
			fmt.Fprintf(cmd.ErrOrStderr(), "\rEmbedding chunks %d/%d", done, total)
			if done == total {
				fmt.Fprintln(cmd.ErrOrStderr())
			}
		}
	}

	ingest, err := services.NewIngest(settings, progress)
	if err != nil {
		return friendly(err)
	}

	if !created {
		cmd.Printf("Indexing papers in %s...\n", dir)
		report, err := ingest.Ingest(cmd.Context(), dir)
		switch {
		case err == nil:
			cmd.Println()
			printReport(cmd, report)
		case errors.Is(err, domain.ErrEmptyCorpus):
			cmd.Printf("No PDF text could be indexed from %s.\n", dir)
			cmd.Println("Check that the directory holds PDF files with extractable text.")
			if !ingestWatch {
				return friendly(err)
			}
		default:
			return friendly(err)
		}
	}

	if !ingestWatch {
		return nil
	}

	cmd.Printf("Watching %s for changes (Ctrl-C to stop)...\n", dir)
	err = ingest.Watch(cmd.Context(), dir, func(report *domain.IngestReport, err error) {
		if err != nil {
			cmd.Printf("Rebuild failed: %s\n", domain.UserMessage(err))
			return
		}
		printReport(cmd, report)
	})
	return friendly(err)
}

func printReport(cmd *cobra.Command, report *domain.IngestReport) {
	cmd.Printf("Indexed %d papers (%d pages, %d chunks) in %s.\n",
		report.Documents, report.Pages, report.Chunks, report.Duration.Round(time.Millisecond))
	cmd.Printf("Index: %s\n", report.Index.Path)
	cmd.Printf("Embedding model: %s (%d dimensions)\n", report.Index.EmbeddingModel, report.Index.Dimensions)
}

// ensureDir creates dir when it does not exist and reports whether it did.
func ensureDir(dir string) (bool, error) {
	st, err := os.Stat(dir)
	switch {
	case err == nil && st.IsDir():
		return false, nil
	case err == nil:
		return false, fmt.Errorf("%s is not a directory", dir)
	case errors.Is(err, fs.ErrNotExist):
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return false, fmt.Errorf("creating %s: %w", dir, err)
		}
		return true, nil
	default:
		return false, err
	}
}

// isTerminal reports whether f is attached to a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
