package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

var (
	askJSON bool
	askTopK int
)

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Answer a question from the indexed papers",
	Long: `Retrieves the passages most similar to the question, asks the language
model to answer from them and prints the answer with numbered sources.

Run 'paperchat ingest' first to build the index.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "output the answer and citations as JSON")
	askCmd.Flags().IntVarP(&askTopK, "top-k", "k", 0, "number of passages to retrieve (default pipeline.top_k)")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	session, _, err := openSession(cmd.Context(), askTopK)
	if err != nil {
		return err
	}
	defer session.Close()

	result := session.Ask(cmd.Context(), strings.Join(args, " "))

	if askJSON {
		if err := outputAnswerJSON(cmd, result); err != nil {
			return err
		}
	} else {
		printAnswer(cmd, result)
	}

	if result.Degraded() {
		return fmt.Errorf("no answer: %w", result.Err)
	}
	return nil
}

func outputAnswerJSON(cmd *cobra.Command, result domain.AnswerResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal answer: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

// printAnswer writes the answer followed by its sources.
func printAnswer(cmd *cobra.Command, result domain.AnswerResult) {
	cmd.Println(result.Answer)
	if len(result.Citations) == 0 {
		return
	}

	cmd.Println()
	cmd.Println("Sources:")
	for _, c := range result.Citations {
		cmd.Printf("  %s\n", c)
	}
}
