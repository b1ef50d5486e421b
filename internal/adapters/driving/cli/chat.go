package cli

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/YusuphaJuwara/chatbotgermano/internal/core/domain"
)

var (
	chatJSON    bool
	chatSources bool
)

var chatCmd = &cobra.Command{
	Use:   "chat [message]",
	Short: "Chat with the assistant",
	Long: `Ask the assistant a question grounded in the FAQ corpus.

With a message argument, runs a single turn and prints the answer with
its citations. Without arguments, starts an interactive conversation;
type "exit" or "quit" to leave, "/new" to start over.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runChat,
}

func init() {
	chatCmd.Flags().BoolVar(&chatJSON, "json", false, "output the result as JSON")
	chatCmd.Flags().BoolVar(&chatSources, "sources", false, "also print the retrieved source passages")
	rootCmd.AddCommand(chatCmd)
}

func runChat(cmd *cobra.Command, args []string) error {
	if chatService == nil {
		return errors.New("chat service not configured")
	}

	if len(args) == 1 {
		return runChatOnce(cmd, args[0])
	}
	return runChatLoop(cmd)
}

func runChatOnce(cmd *cobra.Command, message string) error {
	result, err := chatService.Chat(cmd.Context(), message)
	if err != nil {
		return fmt.Errorf("chat failed: %w", err)
	}

	if chatJSON {
		return outputChatJSON(cmd, result)
	}
	outputChatResult(cmd, result)
	return nil
}

func runChatLoop(cmd *cobra.Command) error {
	cmd.Println("Chat with Germano. Type \"exit\" to leave, \"/new\" to start over.")
	cmd.Println()

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		cmd.Print("You: ")
		if !scanner.Scan() {
			cmd.Println()
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		switch {
		case line == "":
			continue
		case line == "exit" || line == "quit":
			return nil
		case line == "/new":
			chatService.NewChat()
			cmd.Println("Started a new conversation.")
			continue
		}

		result, err := chatService.Chat(cmd.Context(), line)
		if err != nil {
			// Keep the conversation alive across failed turns.
			cmd.PrintErrf("Error: %v\n", err)
			continue
		}

		cmd.Println()
		outputChatResult(cmd, result)
	}
}

func outputChatJSON(cmd *cobra.Command, result *domain.ChatResult) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal result: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputChatResult(cmd *cobra.Command, result *domain.ChatResult) {
	cmd.Println(result.Text)

	if len(result.Citations) > 0 {
		cmd.Println()
		cmd.Println("Citations:")
		for i, c := range result.Citations {
			cmd.Printf("  [%d] %q (chars %d-%d, docs %s)\n",
				i+1, c.Text, c.Start, c.End, strings.Join(c.DocumentIDs, ", "))
		}
	}

	if chatSources && len(result.Documents) > 0 {
		cmd.Println()
		cmd.Println("Sources:")
		for _, d := range result.Documents {
			snippet := d.Text
			if len(snippet) > 120 {
				snippet = snippet[:120] + "..."
			}
			cmd.Printf("  [%s] %s: %s\n", d.ID, d.Title, snippet)
		}
	}
	cmd.Println()
}
