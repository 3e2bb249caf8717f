package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/paperchat/internal/core/domain"
)

var (
	chatTranscript string
	chatTopK       int
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start a multi-turn conversation about the papers",
	Long: `Reads questions line by line and answers each one, remembering the
conversation so follow-up questions can refer to earlier answers.

Commands:
  /reset  forget the conversation
  /quit   leave (Ctrl-D also works)`,
	Args: cobra.NoArgs,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVar(&chatTranscript, "transcript", "", "write the session transcript as JSON to this file on exit")
	chatCmd.Flags().IntVarP(&chatTopK, "top-k", "k", 0, "number of passages to retrieve (default pipeline.top_k)")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, _ []string) error {
	session, _, err := openSession(cmd.Context(), chatTopK)
	if err != nil {
		return err
	}
	defer session.Close()

	interactive := cmd.InOrStdin() == os.Stdin && isTerminal(os.Stdin)
	if interactive {
		info := session.Info()
		cmd.Printf("paperchat: %d papers, %d chunks. Type /quit to leave.\n\n", info.Documents, info.Records)
	}

	err = chatLoop(cmd, session, interactive)

	if chatTranscript != "" {
		if werr := writeTranscript(chatTranscript, session.Transcript()); werr != nil {
			return werr
		}
		if interactive {
			cmd.Printf("Transcript written to %s\n", chatTranscript)
		}
	}
	return err
}

func chatLoop(cmd *cobra.Command, session Session, interactive bool) error {
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	for {
		if interactive {
			cmd.Print("> ")
		}
		if !scanner.Scan() {
			if interactive {
				cmd.Println()
			}
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case "/quit", "/exit":
			return nil
		case "/reset":
			session.Reset()
			cmd.Println("Conversation cleared.")
			cmd.Println()
			continue
		}

		if err := cmd.Context().Err(); err != nil {
			return err
		}
		printAnswer(cmd, session.Ask(cmd.Context(), line))
		cmd.Println()
	}
}

// writeTranscript saves messages as indented JSON.
func writeTranscript(path string, messages []domain.Message) error {
	if messages == nil {
		messages = []domain.Message{}
	}
	data, err := json.MarshalIndent(messages, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("writing transcript: %w", err)
	}
	return nil
}
