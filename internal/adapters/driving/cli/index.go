package cli

import (
	"time"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Inspect the paper index",
}

var indexInfoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show index metadata",
	Args:  cobra.NoArgs,
	RunE:  runIndexInfo,
}

func init() {
	indexCmd.AddCommand(indexInfoCmd)
	rootCmd.AddCommand(indexCmd)
}

func runIndexInfo(cmd *cobra.Command, _ []string) error {
	settings, err := loadSettings()
	if err != nil {
		return err
	}
	if services.IndexInfo == nil {
		return errNotConfigured
	}

	info, err := services.IndexInfo(cmd.Context(), settings)
	if err != nil {
		return friendly(err)
	}

	cmd.Println("Index")
	cmd.Println("=====")
	cmd.Printf("  Path: %s\n", info.Path)
	cmd.Printf("  Papers: %d\n", info.Documents)
	cmd.Printf("  Chunks: %d\n", info.Records)
	cmd.Printf("  Embedding model: %s\n", info.EmbeddingModel)
	cmd.Printf("  Dimensions: %d\n", info.Dimensions)
	if info.Fingerprint != "" {
		cmd.Printf("  Fingerprint: %s\n", info.Fingerprint)
	}
	if !info.BuiltAt.IsZero() {
		cmd.Printf("  Built: %s\n", info.BuiltAt.Local().Format(time.DateTime))
	}

	if settings.Embedding.Model != "" && info.EmbeddingModel != settings.Embedding.Model {
		cmd.Println()
		cmd.Printf("Warning: the configured embedding model is %s. Re-run 'paperchat ingest'.\n", settings.Embedding.Model)
	}
	return nil
}
