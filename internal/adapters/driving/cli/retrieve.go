package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

// snippetLength is the number of characters of each passage shown.
const snippetLength = 240

var (
	retrieveTopK int
	retrieveJSON bool
)

var retrieveCmd = &cobra.Command{
	Use:   "retrieve [query]",
	Short: "Show the passages most similar to a query",
	Long: `Embeds the query and lists the closest indexed passages with their
similarity scores. The language model is not called.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRetrieve,
}

func init() {
	retrieveCmd.Flags().IntVarP(&retrieveTopK, "top-k", "k", 0, "number of passages (default pipeline.top_k)")
	retrieveCmd.Flags().BoolVar(&retrieveJSON, "json", false, "output passages as JSON")
	rootCmd.AddCommand(retrieveCmd)
}

func runRetrieve(cmd *cobra.Command, args []string) error {
	session, settings, err := openSession(cmd.Context(), retrieveTopK)
	if err != nil {
		return err
	}
	defer session.Close()

	set, err := session.Retrieve(cmd.Context(), strings.Join(args, " "), settings.Pipeline.TopK)
	if err != nil {
		return fmt.Errorf("retrieve failed: %w", friendly(err))
	}

	if retrieveJSON {
		return outputRetrievedJSON(cmd, set)
	}
	outputRetrievedTable(cmd, set)
	return nil
}

// passageJSON is the JSON shape of a retrieved passage.
type passageJSON struct {
	Rank     int                  `json:"rank"`
	Score    float64              `json:"score"`
	Content  string               `json:"content"`
	Metadata domain.ChunkMetadata `json:"metadata"`
}

func outputRetrievedJSON(cmd *cobra.Command, set domain.RetrievedSet) error {
	out := make([]passageJSON, len(set))
	for i, rc := range set {
		out[i] = passageJSON{Rank: rc.Rank, Score: rc.Score, Content: rc.Chunk.Content, Metadata: rc.Chunk.Metadata}
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal passages: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputRetrievedTable(cmd *cobra.Command, set domain.RetrievedSet) {
	if len(set) == 0 {
		cmd.Println("No passages found.")
		return
	}

	for _, rc := range set {
		md := rc.Chunk.Metadata
		title := md.PaperTitle
		if title == "" {
			title = domain.TitleFromPath(md.Source)
		}

		// Format: [N] Title, p.P (Score)
		if md.Page > 0 {
			cmd.Printf("  [%d] %s, p.%d (%.3f)\n", rc.Rank, title, md.Page, rc.Score)
		} else {
			cmd.Printf("  [%d] %s (%.3f)\n", rc.Rank, title, rc.Score)
		}
		cmd.Printf("      %s\n", md.Source)
		cmd.Printf("      %s\n\n", snippet(rc.Chunk.Content, snippetLength))
	}
}

// snippet flattens whitespace and truncates s to at most n runes.
func snippet(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n]) + "..."
}
